package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// FILTERS: Column-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL column constraints per record in one loop.
// Returns a SubView (index list into parent); zero data copy.
// ============================================================================

// ApplyFilters returns a view of rows matching all column filters.
// Columns are AND-combined; values within a column are OR-combined and
// compared exactly. A filter with no values or containing All is a no-op.
// Missing values never match a restrictive filter.
// Every referenced column must exist in the view's schema.
func ApplyFilters(view RecordView, filters Filters) (RecordView, error) {
	referenced := make([]string, 0, len(filters.Columns))
	for col := range filters.Columns {
		referenced = append(referenced, col)
	}
	sort.Strings(referenced)
	if err := checkColumns("apply filters", view, referenced...); err != nil {
		return nil, err
	}

	// Pre-build lookup sets for each restrictive filter
	type constraint struct {
		column string
		set    map[string]bool
	}
	constraints := make([]constraint, 0, len(referenced))
	for _, col := range referenced {
		allowed := filters.Columns[col]
		if !isRestrictive(allowed) {
			continue
		}
		constraints = append(constraints, constraint{column: col, set: toSet(allowed)})
	}

	if len(constraints) == 0 {
		return view, nil
	}

	// Single pass; row passes if it matches ALL constraints
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, c := range constraints {
			val, ok := view.Value(i, c.column)
			if !ok || !c.set[val] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices), nil
}

// ApplySearch keeps rows whose value in column contains query,
// case-insensitively. A blank query returns the view unchanged.
func ApplySearch(view RecordView, search Search) (RecordView, error) {
	query := strings.ToLower(strings.TrimSpace(search.Query))
	if query == "" {
		return view, nil
	}
	if err := checkColumns("search", view, search.Column); err != nil {
		return nil, err
	}

	indices := make([]int, 0)
	for i := 0; i < view.Len(); i++ {
		val, ok := view.Value(i, search.Column)
		if ok && strings.Contains(strings.ToLower(val), query) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices), nil
}

// toSet converts a string slice to a lookup set.
func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
