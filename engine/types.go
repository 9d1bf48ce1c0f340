package engine

// ============================================================================
// TALLY ENGINE TYPES: Filter-and-Aggregate Pipeline
// ============================================================================
// Record (column → value, absent key = missing)
// Filters (column → allowed values, OR within, AND across)
// FrequencyTable / KeywordTable (ranked pairs)
// Result (one render pass worth of output)
// ============================================================================

// All is the filter sentinel meaning "no restriction" for a column.
// A filter whose allowed values contain All is ignored.
const All = "*"

// DefaultKeywordLimit is the number of keywords returned when no limit is set.
const DefaultKeywordLimit = 10

// ============================================================================
// RECORD
// ============================================================================

// Record is a single data row. A column that is absent from Values is
// missing; an empty string is a present, empty value.
type Record struct {
	Values map[string]string `json:"values"`
}

// Get returns the value of a column and whether it is present.
func (r Record) Get(column string) (string, bool) {
	if r.Values == nil {
		return "", false
	}
	v, ok := r.Values[column]
	return v, ok
}

// ============================================================================
// FILTERS
// ============================================================================

// Filters define which rows to include.
// Keys are column names. Values are allowed values.
// OR within a column, AND across columns. Empty or All = no restriction.
type Filters struct {
	Columns map[string][]string `json:"columns"`
}

// NewFilters builds Filters from a column → values map.
func NewFilters(columns map[string][]string) Filters {
	return Filters{Columns: columns}
}

// Set replaces the allowed values for a column.
func (f *Filters) Set(column string, values ...string) {
	if f.Columns == nil {
		f.Columns = make(map[string][]string)
	}
	f.Columns[column] = values
}

// HasFilter returns true if a column filter actually restricts rows.
func (f Filters) HasFilter(column string) bool {
	if f.Columns == nil {
		return false
	}
	return isRestrictive(f.Columns[column])
}

// IsEmpty returns true if no filter restricts rows.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Columns {
		if isRestrictive(vals) {
			return false
		}
	}
	return true
}

func isRestrictive(vals []string) bool {
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if v == All {
			return false
		}
	}
	return true
}

// ============================================================================
// FREQUENCY TABLES
// ============================================================================

// Frequency is one (category value, count) pair.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyTable is a ranked list of category counts for one column.
type FrequencyTable []Frequency

// Total returns the sum of all counts.
func (t FrequencyTable) Total() int {
	n := 0
	for _, f := range t {
		n += f.Count
	}
	return n
}

// Keyword is one (token, count) pair.
type Keyword struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// KeywordTable is a ranked list of token counts.
type KeywordTable []Keyword

// ============================================================================
// GROUP: Intermediate computation result
// ============================================================================

// Group represents a grouped count with optional second-level groups.
// Used for cross tabulation (e.g. company × level).
type Group struct {
	Key       string     `json:"key"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"`
}

// ============================================================================
// REQUEST / RESULT
// ============================================================================

// Search is a free-text substring predicate on one column.
type Search struct {
	Column string `json:"column"`
	Query  string `json:"query"`
}

// CrossSpec requests a two-level count.
type CrossSpec struct {
	RowColumn    string `json:"rowColumn"`
	SeriesColumn string `json:"seriesColumn"`
}

// Request describes one render pass worth of aggregation.
type Request struct {
	Filters       Filters    `json:"filters"`
	Search        *Search    `json:"search,omitempty"`
	CountColumns  []string   `json:"countColumns"`
	Cross         *CrossSpec `json:"cross,omitempty"`
	KeywordColumn string     `json:"keywordColumn,omitempty"`
	KeywordLimit  int        `json:"keywordLimit,omitempty"`
}

// ColumnCounts pairs a column with its frequency table.
type ColumnCounts struct {
	Column string         `json:"column"`
	Table  FrequencyTable `json:"table"`
}

// Result is the engine's output for one render pass.
type Result struct {
	Subset      RecordView     `json:"-"`
	Rows        int            `json:"rows"`
	TotalRows   int            `json:"totalRows"`
	Empty       bool           `json:"empty"`
	Frequencies []ColumnCounts `json:"frequencies"`
	Cross       []Group        `json:"cross,omitempty"`
	Keywords    KeywordTable   `json:"keywords,omitempty"`
	Summary     *Summary       `json:"summary,omitempty"`
}

// Counts returns the frequency table for a column, or nil.
func (r *Result) Counts(column string) FrequencyTable {
	for _, c := range r.Frequencies {
		if c.Column == column {
			return c.Table
		}
	}
	return nil
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "bar", "pie", "stacked_bar"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Percent is the share of the
// series total (0–100) and is filled for every chart type.
type ChartPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *TableFoot `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "link"
	Align string `json:"align"` // "left", "center", "right"
}

// TableFoot provides totals for a table.
type TableFoot struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// WORD CLOUD
// ============================================================================

// WordCloudItem is one positioned-by-renderer word with a computed size.
type WordCloudItem struct {
	Text     string  `json:"text"`
	Count    int     `json:"count"`
	Weight   float64 `json:"weight"`   // 0–1, relative to the most frequent token
	FontSize int     `json:"fontSize"` // px
	Color    string  `json:"color"`
}
