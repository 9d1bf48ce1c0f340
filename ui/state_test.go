package ui

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	q, err := url.ParseQuery("view=crosstab&ds=abc&q=+검출+&as=PIE&by=category&keywords=500" +
		"&f.company=A%EC%82%AC&f.company=B%EC%82%AC&f.level=+&f.=x&other=1")
	assert.NoError(t, err)

	s := ParseState(q)
	assert.Equal(t, ViewCrosstab, s.View)
	assert.Equal(t, "abc", s.DatasetID)
	assert.Equal(t, "검출", s.Query)
	assert.Equal(t, PresentPie, s.Presentation)
	assert.Equal(t, "category", s.SeriesRole)
	assert.Equal(t, maxKeywordLimit, s.KeywordLimit)
	assert.Equal(t, map[string][]string{"company": {"A사", "B사"}}, s.Selection)
}

func TestParseStateDefaults(t *testing.T) {
	s := ParseState(url.Values{"view": {"nope"}, "as": {"radar"}, "keywords": {"-3"}})
	assert.Equal(t, ViewOverview, s.View)
	assert.Equal(t, PresentDefault, s.Presentation)
	assert.Zero(t, s.KeywordLimit)
	assert.Empty(t, s.Selection)
}

func TestStateRestricts(t *testing.T) {
	s := State{Selection: map[string][]string{
		"company": {"A사"},
		"level":   {"상", "*"},
	}}
	assert.True(t, s.Restricts("company"))
	assert.False(t, s.Restricts("level"))
	assert.False(t, s.Restricts("topic"))
	assert.True(t, s.Selected("company", "A사"))
	assert.False(t, s.Selected("company", "B사"))
}

func TestStateURLRoundTrip(t *testing.T) {
	s := State{
		View:         ViewKeywords,
		DatasetID:    "ds1",
		Query:        "AI",
		Presentation: PresentTable,
		KeywordLimit: 20,
		Selection:    map[string][]string{"level": {"상"}, "company": {"A사", "C사"}},
	}

	link := s.URL(ViewData)
	u, err := url.Parse(link)
	assert.NoError(t, err)
	assert.Equal(t, "/", u.Path)

	got := ParseState(u.Query())
	assert.Equal(t, ViewData, got.View)
	assert.Equal(t, s.DatasetID, got.DatasetID)
	assert.Equal(t, s.Query, got.Query)
	assert.Equal(t, s.Presentation, got.Presentation)
	assert.Equal(t, s.KeywordLimit, got.KeywordLimit)
	assert.Equal(t, s.Selection, got.Selection)

	// The overview is the default view and is left out of the link.
	assert.Equal(t, "/", State{}.URL(ViewOverview))
}
