package ui

import (
	"html/template"
	"sort"

	"github.com/spektr-org/tally/engine"
	"github.com/spektr-org/tally/schema"
)

// ============================================================================
// RENDER: Turns a State and a dataset into a page model
// ============================================================================
// Render calls engine.Execute exactly once and arranges its output for the
// active view. Templates only display the Page; they make no decisions.
// ============================================================================

// Page is the model behind the dashboard template.
type Page struct {
	Title     string
	State     State
	Tabs      []Tab
	Filters   []FilterWidget
	Dataset   *DatasetInfo
	Datasets  []DatasetInfo
	Banner    string // load or request error shown above the dashboard
	About     template.HTML
	TextLabel string // caption of the keyword column, "" if none

	Result  *engine.Result
	Empty   bool
	Message string

	Panels    []Panel          // frequency charts/tables
	Cross     *Panel           // crosstab view
	Keywords  *engine.TableData // keywords view
	WordCloud []engine.WordCloudItem
	Data      *engine.TableData // data view
}

// Tab is one view switcher link.
type Tab struct {
	Label  string
	URL    string
	Active bool
}

// FilterWidget is one sidebar selector.
type FilterWidget struct {
	Role    string
	Label   string
	Param   string
	Options []FilterOption
	Active  bool
}

// FilterOption is one selectable value.
type FilterOption struct {
	Value    string
	Selected bool
}

// Panel is a frequency table drawn as a chart or a table.
type Panel struct {
	Role  string
	Title string
	Chart *engine.ChartConfig
	Table *engine.TableData
}

// Request builds the engine request for state against mapping. Filter
// roles that the mapping does not bind are passed through unchanged so the
// engine rejects them as invalid columns. Selections naming the same header
// (a role and its header, say) are merged.
func Request(state State, m *schema.Mapping) engine.Request {
	header := func(role string) string {
		if h, ok := m.Column(role); ok {
			return h
		}
		return role
	}

	req := engine.Request{
		Filters:      engine.NewFilters(nil),
		KeywordLimit: state.KeywordLimit,
	}
	roles := make([]string, 0, len(state.Selection))
	for role := range state.Selection {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		h := header(role)
		req.Filters.Set(h, mergeValues(req.Filters.Columns[h], state.Selection[role])...)
	}

	req.CountColumns = m.Headers(m.Roles(schema.KindCategorical)...)

	if role, ok := m.KeywordRole(); ok {
		col := header(role)
		req.KeywordColumn = col
		if state.Query != "" {
			req.Search = &engine.Search{Column: col, Query: state.Query}
		}
	}

	if series, ok := crossRole(state, m); ok {
		req.Cross = &engine.CrossSpec{
			RowColumn:    header(schema.RoleCompany),
			SeriesColumn: header(series),
		}
	}
	return req
}

func mergeValues(have, add []string) []string {
	out := append([]string(nil), have...)
	for _, v := range add {
		dup := false
		for _, h := range out {
			if h == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// crossRole picks the series role of the crosstab. An explicit "by" role is
// used even when unbound so the engine can reject it.
func crossRole(state State, m *schema.Mapping) (string, bool) {
	if state.View != ViewCrosstab || !m.Has(schema.RoleCompany) {
		return "", false
	}
	if state.SeriesRole != "" {
		return state.SeriesRole, state.SeriesRole != schema.RoleCompany
	}
	return schema.RoleLevel, m.Has(schema.RoleLevel)
}

// Render executes state against view and builds the page for the active
// view. The only error is *engine.InvalidColumnError.
func Render(state State, view engine.RecordView, m *schema.Mapping, opts ...engine.Option) (*Page, error) {
	req := Request(state, m)
	result, err := engine.Execute(view, req, opts...)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title:   m.Config().Name,
		State:   state,
		Result:  result,
		Empty:   result.Empty,
		Tabs:    buildTabs(state),
		Filters: buildFilters(state, view, m),
	}
	if result.Summary != nil {
		page.Message = result.Summary.Message
	}
	if role, ok := m.KeywordRole(); ok {
		page.TextLabel = m.Label(role)
	}

	switch state.View {
	case ViewOverview:
		if m.Has(schema.RoleCompany) {
			page.Panels = []Panel{frequencyPanel(state, m, result, schema.RoleCompany)}
		}
		page.WordCloud = engine.BuildWordCloud(result.Keywords)

	case ViewCategories:
		for _, role := range m.Roles(schema.KindCategorical) {
			page.Panels = append(page.Panels, frequencyPanel(state, m, result, role))
		}

	case ViewCrosstab:
		if series, ok := crossRole(state, m); ok {
			title := m.Label(schema.RoleCompany) + " × " + m.Label(series)
			page.Cross = &Panel{
				Title: title,
				Chart: engine.BuildStackedChart(title, *req.Cross, result.Cross),
				Table: engine.BuildCrossTable(title, *req.Cross, result.Cross),
			}
		}

	case ViewKeywords:
		page.Keywords = engine.BuildKeywordTable(page.TextLabel+" 키워드", result.Keywords)
		page.WordCloud = engine.BuildWordCloud(result.Keywords)

	case ViewData:
		columns := m.Headers(m.All()...)
		page.Data = engine.BuildSubsetTable("제출 목록", result.Subset, columns,
			m.Headers(m.Roles(schema.KindLink)...)...)
	}

	return page, nil
}

func buildTabs(state State) []Tab {
	tabs := make([]Tab, 0, len(Views))
	for _, v := range Views {
		tabs = append(tabs, Tab{
			Label:  v.Label(),
			URL:    state.URL(v),
			Active: v == state.View,
		})
	}
	return tabs
}

// buildFilters lists options from the full dataset so a selection never
// hides its own alternatives.
func buildFilters(state State, view engine.RecordView, m *schema.Mapping) []FilterWidget {
	var widgets []FilterWidget
	for _, role := range m.Filterable() {
		h, _ := m.Column(role)
		w := FilterWidget{
			Role:   role,
			Label:  m.Label(role),
			Param:  filterPrefix + role,
			Active: state.Restricts(role),
		}
		for _, v := range engine.UniqueValues(view, h) {
			w.Options = append(w.Options, FilterOption{
				Value:    v,
				Selected: state.Selected(role, v),
			})
		}
		widgets = append(widgets, w)
	}
	return widgets
}

func frequencyPanel(state State, m *schema.Mapping, result *engine.Result, role string) Panel {
	h, _ := m.Column(role)
	table := result.Counts(h)
	title := m.Label(role) + "별 건수"

	presentation := state.Presentation
	if presentation == PresentDefault {
		presentation = Presentation(m.Meta(role).Chart)
	}

	p := Panel{Role: role, Title: title}
	switch presentation {
	case PresentPie:
		p.Chart = engine.BuildPieChart(title, h, table)
	case PresentTable:
		p.Table = engine.BuildFrequencyTable(title, h, table)
	default:
		p.Chart = engine.BuildBarChart(title, h, table)
	}
	return p
}
