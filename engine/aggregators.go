package engine

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================================
// AGGREGATORS: Grouping, Counting, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView; zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view) and keeps the
// order in which keys were first encountered; every ranking sort below is
// stable, so ties stay in first-seen order.
// ============================================================================

// Sort modes for frequency tables.
const (
	SortCountDesc = "count_desc"
	SortCountAsc  = "count_asc"
	SortLabelAsc  = "label_asc"
	SortLabelDesc = "label_desc"
)

// CountBy counts rows per distinct value of column, skipping missing values.
// The table is ordered by count descending; ties keep the order in which the
// values first appear in the view.
func CountBy(view RecordView, column string) (FrequencyTable, error) {
	if err := checkColumns("count by", view, column); err != nil {
		return nil, err
	}

	groups := groupBySingle(view, column)
	table := make(FrequencyTable, 0, len(groups))
	for _, g := range groups {
		table = append(table, Frequency{Value: g.Key, Count: g.Count})
	}
	SortFrequencies(table, SortCountDesc)
	return table, nil
}

// CrossCount groups by rowColumn and, within each group, by seriesColumn.
// Rows missing either value are dropped. Primary groups are ranked like
// CountBy; sub-groups keep first-seen order.
func CrossCount(view RecordView, rowColumn, seriesColumn string) ([]Group, error) {
	if err := checkColumns("cross count", view, rowColumn, seriesColumn); err != nil {
		return nil, err
	}

	// Drop rows missing the series value before grouping so that primary
	// counts equal the sum of their sub-groups.
	indices := make([]int, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if _, ok := view.Value(i, seriesColumn); ok {
			indices = append(indices, i)
		}
	}
	complete := newSubView(view, indices)

	groups := groupByMulti(complete, []string{rowColumn, seriesColumn})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	return groups, nil
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, column string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key, ok := view.Value(i, column)
		if !ok {
			continue
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Count: len(grouped[key]),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, columns []string) []Group {
	primaryGroups := groupBySingle(view, columns[0])
	if len(columns) < 2 {
		return primaryGroups
	}
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = groupBySingle(primaryGroups[i].View, columns[1])
	}
	return primaryGroups
}

// ============================================================================
// SORTING
// ============================================================================

// SortFrequencies re-orders a table in place. Unknown modes leave the
// order unchanged. All sorts are stable.
func SortFrequencies(table FrequencyTable, mode string) {
	switch mode {
	case SortCountDesc, "":
		sort.SliceStable(table, func(i, j int) bool { return table[i].Count > table[j].Count })
	case SortCountAsc:
		sort.SliceStable(table, func(i, j int) bool { return table[i].Count < table[j].Count })
	case SortLabelAsc:
		sort.SliceStable(table, func(i, j int) bool { return table[i].Value < table[j].Value })
	case SortLabelDesc:
		sort.SliceStable(table, func(i, j int) bool { return table[i].Value > table[j].Value })
	default:
		// preserve order
	}
}

// Limit returns at most n leading entries. n <= 0 returns the table as is.
func Limit(table FrequencyTable, n int) FrequencyTable {
	if n > 0 && len(table) > n {
		return table[:n]
	}
	return table
}

// ============================================================================
// UTILITIES
// ============================================================================

// UniqueValues returns distinct non-missing, non-empty values of a column in
// first-seen order. Used to populate selector widgets.
func UniqueValues(view RecordView, column string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val, ok := view.Value(i, column)
		if ok && val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// CountPresent returns how many rows have a non-missing value in column.
func CountPresent(view RecordView, column string) int {
	n := 0
	for i := 0; i < view.Len(); i++ {
		if _, ok := view.Value(i, column); ok {
			n++
		}
	}
	return n
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// LabelForColumn returns a display label for a column key.
// "company_name" → "Company Name"; non-Latin labels are returned as is.
func LabelForColumn(column string) string {
	if column == "" {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(column, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
