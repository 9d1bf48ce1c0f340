package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFiltersEmptyReturnsDataset(t *testing.T) {
	view := fiveRows()

	got, err := ApplyFilters(view, Filters{})
	require.NoError(t, err)
	assert.Same(t, view, got)

	got, err = ApplyFilters(view, NewFilters(map[string][]string{}))
	require.NoError(t, err)
	assert.Same(t, view, got)
}

func TestApplyFiltersSingleValue(t *testing.T) {
	view := fiveRows()

	got, err := ApplyFilters(view, NewFilters(map[string][]string{colCompany: {"A"}}))
	require.NoError(t, err)

	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []string{"A", "A", "A"}, companies(t, got))
	assert.True(t, isSubset(view, got))
}

func TestApplyFiltersOrWithinAndAcross(t *testing.T) {
	view := fiveRows()

	var f Filters
	f.Set(colCompany, "A", "B")
	f.Set(colTopic, "NLP")

	got, err := ApplyFilters(view, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, companies(t, got))
}

func TestApplyFiltersAllSentinelIsNoop(t *testing.T) {
	view := fiveRows()

	var f Filters
	f.Set(colCompany, All)
	f.Set(colTopic)

	assert.True(t, f.IsEmpty())
	assert.False(t, f.HasFilter(colCompany))

	got, err := ApplyFilters(view, f)
	require.NoError(t, err)
	assert.Equal(t, view.Len(), got.Len())
}

func TestApplyFiltersMissingNeverMatches(t *testing.T) {
	view := withMissing()

	got, err := ApplyFilters(view, NewFilters(map[string][]string{colTopic: {"NLP", ""}}))
	require.NoError(t, err)

	// Rows 2 and 3 have NLP; no row has an empty-but-present topic.
	assert.Equal(t, 2, got.Len())
	for i := 0; i < got.Len(); i++ {
		_, ok := got.Value(i, colTopic)
		assert.True(t, ok)
	}
}

func TestApplyFiltersValueAbsentFromData(t *testing.T) {
	view := fiveRows()

	got, err := ApplyFilters(view, NewFilters(map[string][]string{colCompany: {"Z"}}))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	table, err := CountBy(got, colCompany)
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestApplyFiltersIsCaseSensitive(t *testing.T) {
	view := fiveRows()

	got, err := ApplyFilters(view, NewFilters(map[string][]string{colCompany: {"a"}}))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestApplyFiltersInvalidColumn(t *testing.T) {
	view := fiveRows()

	for name, f := range map[string]Filters{
		"restrictive": NewFilters(map[string][]string{"Company": {"A"}}),
		"no-op":       NewFilters(map[string][]string{"Company": {All}}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ApplyFilters(view, f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidColumn))

			var colErr *InvalidColumnError
			require.ErrorAs(t, err, &colErr)
			assert.Equal(t, "Company", colErr.Column)
		})
	}
}

func TestApplyFiltersSubsetProperty(t *testing.T) {
	view := fiveRows()
	selections := []map[string][]string{
		{},
		{colCompany: {"A"}},
		{colCompany: {"B", "C"}},
		{colLevel: {"상"}, colTopic: {"Vision", "Robotics"}},
		{colCompany: {"nope"}},
	}

	for _, sel := range selections {
		got, err := ApplyFilters(view, NewFilters(sel))
		require.NoError(t, err)
		assert.True(t, isSubset(view, got), "selection %v", sel)
		assert.LessOrEqual(t, got.Len(), view.Len())
	}
}

func TestApplySearch(t *testing.T) {
	view := fiveRows()

	got, err := ApplySearch(view, Search{Column: colTitle, Query: "ai"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, companies(t, got))

	same, err := ApplySearch(view, Search{Column: "없는열", Query: "  "})
	require.NoError(t, err)
	assert.Same(t, view, same)

	_, err = ApplySearch(view, Search{Column: "없는열", Query: "AI"})
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestSubViewOfSubView(t *testing.T) {
	view := fiveRows()

	first, err := ApplyFilters(view, NewFilters(map[string][]string{colCompany: {"A"}}))
	require.NoError(t, err)
	second, err := ApplyFilters(first, NewFilters(map[string][]string{colLevel: {"상"}}))
	require.NoError(t, err)

	assert.Equal(t, 2, second.Len())
	topic, ok := second.Value(1, colTopic)
	assert.True(t, ok)
	assert.Equal(t, "Robotics", topic)

	_, ok = second.Value(5, colTopic)
	assert.False(t, ok)
}
