package engine

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// ============================================================================
// SUMMARY BUILDER: Headline numbers for the overview cards
// ============================================================================

// Summary describes a filtered subset at a glance.
type Summary struct {
	Rows      int             `json:"rows"`
	TotalRows int             `json:"totalRows"`
	Share     float64         `json:"share"` // percent of the dataset kept by the filters
	Columns   []ColumnSummary `json:"columns"`
	Message   string          `json:"message"`
}

// ColumnSummary holds group-size statistics for one counted column.
type ColumnSummary struct {
	Column     string  `json:"column"`
	Distinct   int     `json:"distinct"`
	Present    int     `json:"present"`
	Top        string  `json:"top,omitempty"`
	TopCount   int     `json:"topCount"`
	MeanSize   float64 `json:"meanSize"`
	MedianSize float64 `json:"medianSize"`
}

// BuildSummary computes the overview for a subset and its frequency tables.
func BuildSummary(subset RecordView, totalRows int, frequencies []ColumnCounts) *Summary {
	s := &Summary{
		Rows:      subset.Len(),
		TotalRows: totalRows,
		Columns:   make([]ColumnSummary, 0, len(frequencies)),
	}
	if totalRows > 0 {
		s.Share = RoundTo1(float64(s.Rows) / float64(totalRows) * 100)
	}

	if s.Rows == 0 {
		s.Message = "No data matches the current filters."
		return s
	}
	s.Message = fmt.Sprintf("Showing %s of %s submissions.", FormatInt(s.Rows), FormatInt(totalRows))

	for _, f := range frequencies {
		cs := ColumnSummary{
			Column:   f.Column,
			Distinct: len(f.Table),
			Present:  f.Table.Total(),
		}
		if len(f.Table) > 0 {
			top := f.Table[0]
			for _, e := range f.Table[1:] {
				if e.Count > top.Count {
					top = e
				}
			}
			cs.Top = top.Value
			cs.TopCount = top.Count

			sizes := make(stats.Float64Data, len(f.Table))
			for i, e := range f.Table {
				sizes[i] = float64(e.Count)
			}
			if mean, err := stats.Mean(sizes); err == nil {
				cs.MeanSize = RoundTo1(mean)
			}
			if median, err := stats.Median(sizes); err == nil {
				cs.MedianSize = RoundTo1(median)
			}
		}
		s.Columns = append(s.Columns, cs)
	}
	return s
}

// RoundTo1 rounds to 1 decimal place.
func RoundTo1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil {
		return v
	}
	return r
}
