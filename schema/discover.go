package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	apperr "github.com/spektr-org/tally/internal/errors"
)

// ============================================================================
// AUTO-DISCOVERY: Heuristic column classification
// ============================================================================
// Inspects raw rows and generates a schema.Config for a dataset nobody wrote
// a schema for.
//
// Classification pipeline per column:
//   1. Drop null tokens → detect link / numeric / date / string
//   2. Type + cardinality + word count → kind (categorical, text, link, skip)
//   3. Header matched against the built-in aliases → role
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverFromCSV generates a schema.Config by inspecting CSV data.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff")))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, apperr.WithCode(apperr.CodeInvalidInput, fmt.Errorf("failed to read CSV headers: %w", err))
	}

	limit := opt.SampleSize
	if limit <= 0 {
		limit = 100000 // safety cap
	}

	var rows [][]string
	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	config, err := DiscoverFromRows(headers, rows, opt)
	if err != nil {
		return nil, err
	}
	config.DiscoveredFrom = "CSV"
	return config, nil
}

// DiscoverFromRows classifies already-parsed rows. Rows shorter than the
// header are treated as missing the trailing cells.
func DiscoverFromRows(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if len(headers) == 0 {
		return nil, apperr.InvalidInput("dataset has no columns")
	}
	if opt.SampleSize > 0 && len(rows) > opt.SampleSize {
		rows = rows[:opt.SampleSize]
	}
	totalRows := len(rows)
	if totalRows == 0 {
		return nil, apperr.InvalidInput("dataset has no data rows")
	}

	recoverSet := make(map[string]bool)
	for _, col := range opt.RecoverColumns {
		recoverSet[NormalizeLabel(col)] = true
	}

	config := &Config{
		Name:           opt.Name,
		Version:        "1.0",
		DiscoveredFrom: "rows",
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	usedRoles := make(map[string]bool)
	for i, header := range headers {
		col := analyzeColumn(header, i, rows, totalRows)

		if col.skipped {
			recovered := recoverSet[NormalizeLabel(col.header)] || recoverSet[col.key]
			if !recovered || col.uniqueCount == 0 {
				config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
					Column:      col.header,
					Reason:      col.skipReason,
					Recoverable: col.recoverable,
				})
				continue
			}
			col.kind = KindCategorical
		}

		meta := col.toColumnMeta()
		if usedRoles[meta.Role] {
			meta.Role = fmt.Sprintf("%s_%d", meta.Role, i+1)
		}
		usedRoles[meta.Role] = true
		config.Columns = append(config.Columns, meta)
	}

	if len(config.Columns) == 0 {
		return nil, apperr.InvalidInput("no usable columns found")
	}
	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeLink
)

type columnAnalysis struct {
	header      string
	key         string
	index       int
	colType     columnType
	kind        Kind
	skipped     bool
	skipReason  string
	recoverable bool

	// Stats
	uniqueCount     int
	totalCount      int
	nullCount       int
	avgWords        float64
	sampleVals      []string
	cardinalityHint string
}

// IsNullToken reports whether a cell value stands for "no value".
func IsNullToken(s string) bool {
	return nullTokens[strings.TrimSpace(s)]
}

// nullTokens are the spreadsheet and dataframe spellings of a missing cell.
var nullTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

func analyzeColumn(header string, index int, rows [][]string, totalRows int) columnAnalysis {
	col := columnAnalysis{
		header:     strings.TrimSpace(header),
		key:        toSnakeCase(header),
		index:      index,
		totalCount: totalRows,
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)
	words := 0

	for _, row := range rows {
		if index >= len(row) || IsNullToken(row[index]) {
			col.nullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		values = append(values, val)
		uniqueSet[val] = true
		words += len(strings.Fields(val))
	}

	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.skipped = true
		col.skipReason = "All values are empty/null"
		return col
	}

	col.avgWords = float64(words) / float64(len(values))
	col.sampleVals = collectSamples(uniqueSet, 10)
	col.colType = detectType(values)
	col.classify(totalRows)

	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	return col
}

// classify determines the column kind or marks it skipped.
func (col *columnAnalysis) classify(totalRows int) {
	switch col.colType {

	case typeLink:
		col.kind = KindLink

	case typeNumeric:
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.skipped = true
			col.skipReason = "Unique per row; likely an ID column"
			return
		}
		// Coded values (scores 1-5, years) are still useful to count
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.uniqueCount < 20 && uniqueRatio < 0.5 {
			col.kind = KindCategorical
			return
		}
		col.skipped = true
		col.skipReason = "Continuous numeric values; not useful for counting"
		col.recoverable = true

	case typeDate:
		col.kind = KindCategorical

	case typeString:
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.avgWords >= 2 && uniqueRatio > 0.5 {
			// Mostly distinct phrases → free text for keyword extraction
			col.kind = KindText
			return
		}
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.skipped = true
			col.skipReason = "Unique per row; likely an identifier"
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			col.skipped = true
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values); not useful for grouping", col.uniqueCount)
			col.recoverable = true
			return
		}
		col.kind = KindCategorical
	}
}

// toColumnMeta converts an analysis into ColumnMeta. Headers that match a
// built-in alias take that role; the header itself is always kept as an
// alias so the config resolves against the dataset it came from.
func (col *columnAnalysis) toColumnMeta() ColumnMeta {
	meta := ColumnMeta{
		Role:            col.key,
		DisplayName:     toDisplayName(col.header),
		Aliases:         []string{col.header},
		Kind:            col.kind,
		Filterable:      col.kind == KindCategorical,
		SampleValues:    col.sampleVals,
		CardinalityHint: col.cardinalityHint,
	}
	if meta.Role == "" {
		meta.Role = fmt.Sprintf("column_%d", col.index+1)
	}

	if known, ok := matchBuiltin(col.header); ok {
		meta.Role = known.Role
		meta.DisplayName = known.DisplayName
		meta.Chart = known.Chart
		// A known header outranks the value heuristics.
		meta.Kind = known.Kind
		meta.Filterable = known.Filterable
	}

	if meta.Kind == KindCategorical && meta.Chart == "" {
		meta.Chart = "bar"
		if col.uniqueCount <= 6 {
			meta.Chart = "pie"
		}
	}
	if meta.Kind != KindCategorical {
		meta.Chart = ""
	}
	return meta
}

// matchBuiltin finds the default role whose labels include header.
func matchBuiltin(header string) (ColumnMeta, bool) {
	h := NormalizeLabel(header)
	for _, col := range Default().Columns {
		if NormalizeLabel(col.Role) == h || NormalizeLabel(col.DisplayName) == h {
			return col, true
		}
		for _, a := range col.Aliases {
			if NormalizeLabel(a) == h {
				return col, true
			}
		}
	}
	return ColumnMeta{}, false
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

var linkPattern = regexp.MustCompile(`^(https?://|www\.)\S+$`)

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for link/numeric/date.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	linkCount := 0
	numCount := 0
	dateCount := 0

	for _, v := range values {
		if linkPattern.MatchString(v) {
			linkCount++
		}
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}

	if linkCount >= threshold {
		return typeLink
	}
	if dateCount >= threshold {
		return typeDate
	}
	if numCount >= threshold {
		return typeNumeric
	}
	return typeString
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "-")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006.01.02",
	"2006. 1. 2.",
	"2006/01/02",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
// Non-Latin headers pass through with spaces replaced.
func toSnakeCase(s string) string {
	var result strings.Builder
	var prev rune
	for i, r := range strings.TrimSpace(s) {
		if unicode.IsUpper(r) && i > 0 {
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
		prev = r
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "story_points" → "Story Points", "회사" → "회사"
func toDisplayName(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, " ") {
		return s
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples values in sorted order.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
