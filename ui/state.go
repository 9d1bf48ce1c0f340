package ui

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/tally/engine"
)

// ActiveView is the dashboard tab being shown.
type ActiveView string

const (
	ViewOverview   ActiveView = "overview"
	ViewCategories ActiveView = "categories"
	ViewCrosstab   ActiveView = "crosstab"
	ViewKeywords   ActiveView = "keywords"
	ViewData       ActiveView = "data"
)

// Views lists the tabs in display order.
var Views = []ActiveView{ViewOverview, ViewCategories, ViewCrosstab, ViewKeywords, ViewData}

var viewLabels = map[ActiveView]string{
	ViewOverview:   "개요",
	ViewCategories: "항목별 건수",
	ViewCrosstab:   "교차 분석",
	ViewKeywords:   "키워드",
	ViewData:       "데이터",
}

// ParseView maps a query value to a view, defaulting to the overview.
func ParseView(s string) ActiveView {
	v := ActiveView(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := viewLabels[v]; ok {
		return v
	}
	return ViewOverview
}

// Label returns the tab caption.
func (v ActiveView) Label() string { return viewLabels[v] }

// Presentation selects how frequency tables are drawn.
type Presentation string

const (
	PresentDefault Presentation = "" // per-column chart from the schema
	PresentTable   Presentation = "table"
	PresentBar     Presentation = "bar"
	PresentPie     Presentation = "pie"
)

// ParsePresentation accepts table, bar or pie; anything else is the default.
func ParsePresentation(s string) Presentation {
	switch p := Presentation(strings.ToLower(strings.TrimSpace(s))); p {
	case PresentTable, PresentBar, PresentPie:
		return p
	}
	return PresentDefault
}

// ============================================================================
// STATE: Everything one render pass needs from the request
// ============================================================================
// State is rebuilt from the query string on every request and fully
// replaces the previous selection. Filter parameters are "f.<role>=<value>"
// and may repeat; "*" or no parameter means the role is unrestricted.
// ============================================================================

// Query parameter names.
const (
	ParamView         = "view"
	ParamDataset      = "ds"
	ParamQuery        = "q"
	ParamPresentation = "as"
	ParamSeries       = "by"
	ParamKeywords     = "keywords"
	filterPrefix      = "f."

	maxKeywordLimit = 200
)

// State is the UI selection for one request.
type State struct {
	View         ActiveView
	Selection    map[string][]string // role → selected values
	Query        string
	Presentation Presentation
	DatasetID    string
	SeriesRole   string // second dimension of the cross tab
	KeywordLimit int
}

// ParseState reads a State from query parameters.
func ParseState(q url.Values) State {
	s := State{
		View:         ParseView(q.Get(ParamView)),
		Selection:    make(map[string][]string),
		Query:        strings.TrimSpace(q.Get(ParamQuery)),
		Presentation: ParsePresentation(q.Get(ParamPresentation)),
		DatasetID:    q.Get(ParamDataset),
		SeriesRole:   q.Get(ParamSeries),
	}
	if n, ok := parsePositive(q.Get(ParamKeywords)); ok {
		s.KeywordLimit = n
	}

	for key, values := range q {
		if !strings.HasPrefix(key, filterPrefix) {
			continue
		}
		role := strings.TrimPrefix(key, filterPrefix)
		if role == "" {
			continue
		}
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				s.Selection[role] = append(s.Selection[role], v)
			}
		}
	}
	return s
}

// Selected reports whether value is selected for role.
func (s State) Selected(role, value string) bool {
	for _, v := range s.Selection[role] {
		if v == value {
			return true
		}
	}
	return false
}

// Restricts reports whether role has an active, non-sentinel selection.
func (s State) Restricts(role string) bool {
	vals := s.Selection[role]
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if v == engine.All {
			return false
		}
	}
	return true
}

// Encode writes the state back to query parameters in a stable order.
func (s State) Encode() url.Values {
	q := url.Values{}
	if s.View != "" && s.View != ViewOverview {
		q.Set(ParamView, string(s.View))
	}
	if s.DatasetID != "" {
		q.Set(ParamDataset, s.DatasetID)
	}
	if s.Query != "" {
		q.Set(ParamQuery, s.Query)
	}
	if s.Presentation != PresentDefault {
		q.Set(ParamPresentation, string(s.Presentation))
	}
	if s.SeriesRole != "" {
		q.Set(ParamSeries, s.SeriesRole)
	}
	if s.KeywordLimit > 0 {
		q.Set(ParamKeywords, strconv.Itoa(s.KeywordLimit))
	}
	roles := make([]string, 0, len(s.Selection))
	for role := range s.Selection {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		for _, v := range s.Selection[role] {
			q.Add(filterPrefix+role, v)
		}
	}
	return q
}

// URL returns the dashboard link for this state switched to view.
func (s State) URL(view ActiveView) string {
	s.View = view
	if enc := s.Encode().Encode(); enc != "" {
		return "/?" + enc
	}
	return "/"
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxKeywordLimit {
		n = maxKeywordLimit
	}
	return n, true
}
