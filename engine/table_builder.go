package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TABLE BUILDER: Produces TableData from subsets and ranked tables
// ============================================================================
// Column discovery uses view.Columns() so row tables follow the schema order.
// ============================================================================

// BuildSubsetTable renders one row per record. columns selects and orders
// the displayed columns; nil means the whole schema. Missing values render
// as "". linkColumns are typed "link" so the display layer can anchor them.
func BuildSubsetTable(title string, view RecordView, columns []string, linkColumns ...string) *TableData {
	if columns == nil {
		columns = view.Columns()
	}
	links := toSet(linkColumns)

	cols := make([]Column, 0, len(columns))
	for _, key := range columns {
		typ := "text"
		if links[key] {
			typ = "link"
		}
		cols = append(cols, Column{
			Key:   key,
			Label: LabelForColumn(key),
			Type:  typ,
			Align: "left",
		})
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, key := range columns {
			val, _ := view.Value(i, key)
			row = append(row, val)
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: cols,
		Rows:    rows,
		Summary: &TableFoot{
			Label:  fmt.Sprintf("Total (%s records)", FormatInt(view.Len())),
			Values: map[string]string{},
		},
	}
}

// BuildFrequencyTable renders a ranked (value, count, share) table.
func BuildFrequencyTable(title, column string, table FrequencyTable) *TableData {
	columns := []Column{
		{Key: "value", Label: LabelForColumn(column), Type: "text", Align: "left"},
		{Key: "count", Label: "Count", Type: "number", Align: "right"},
		{Key: "share", Label: "Share", Type: "number", Align: "right"},
	}

	total := table.Total()
	rows := make([][]string, 0, len(table))
	for _, f := range table {
		share := 0.0
		if total > 0 {
			share = float64(f.Count) / float64(total) * 100
		}
		rows = append(rows, []string{
			f.Value,
			fmt.Sprintf("%d", f.Count),
			fmt.Sprintf("%.1f%%", share),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &TableFoot{
			Label: "Total",
			Values: map[string]string{
				"count": FormatInt(total),
			},
		},
	}
}

// BuildKeywordTable renders a ranked keyword table with 1-based ranks.
func BuildKeywordTable(title string, keywords KeywordTable) *TableData {
	columns := []Column{
		{Key: "rank", Label: "Rank", Type: "number", Align: "center"},
		{Key: "token", Label: "Keyword", Type: "text", Align: "left"},
		{Key: "count", Label: "Count", Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(keywords))
	for i, k := range keywords {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			k.Token,
			fmt.Sprintf("%d", k.Count),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
	}
}

// BuildCrossTable renders CrossCount groups as a matrix with one column per
// series key and a row total.
func BuildCrossTable(title string, spec CrossSpec, groups []Group) *TableData {
	var keys []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			if !seen[sg.Key] {
				seen[sg.Key] = true
				keys = append(keys, sg.Key)
			}
		}
	}

	columns := []Column{{Key: "group", Label: LabelForColumn(spec.RowColumn), Type: "text", Align: "left"}}
	for _, k := range keys {
		columns = append(columns, Column{Key: k, Label: k, Type: "number", Align: "right"})
	}
	columns = append(columns, Column{Key: "total", Label: "Total", Type: "number", Align: "right"})

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		counts := make(map[string]int, len(g.SubGroups))
		for _, sg := range g.SubGroups {
			counts[sg.Key] = sg.Count
		}
		row := []string{g.Key}
		for _, k := range keys {
			row = append(row, fmt.Sprintf("%d", counts[k]))
		}
		row = append(row, fmt.Sprintf("%d", g.Count))
		rows = append(rows, row)
	}

	return &TableData{
		Title:   strings.TrimSpace(title),
		Columns: columns,
		Rows:    rows,
	}
}
