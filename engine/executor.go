package engine

import (
	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR: One render pass
// ============================================================================
// Entry point: Execute(view, req, opts...)
//
// Pipeline:
//   1. Search (optional) → SubView
//   2. Apply filters → SubView
//   3. CountBy for each requested column
//   4. CrossCount (optional)
//   5. ExtractKeywords (optional)
//   6. Summary
//
// The engine performs no I/O and never mutates the view. An empty subset is
// not an error: Result.Empty is set and every table is empty.
// ============================================================================

// Execute runs a Request against a RecordView.
// The only error it returns is *InvalidColumnError.
//
// Options:
//   - WithLogger(l): debug logging of pipeline sizes
//   - WithKeywordLimit(n): keyword limit when the request leaves it at 0
//   - WithSort(mode), WithTopN(n): frequency table presentation
func Execute(view RecordView, req Request, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	log := cfg.Logger

	// Validate every referenced column up front so a bad request fails
	// before any work is done.
	referenced := append([]string{}, req.CountColumns...)
	if req.KeywordColumn != "" {
		referenced = append(referenced, req.KeywordColumn)
	}
	if req.Cross != nil {
		referenced = append(referenced, req.Cross.RowColumn, req.Cross.SeriesColumn)
	}
	if err := checkColumns("execute", view, referenced...); err != nil {
		log.Warn("rejected request", zap.Error(err))
		return nil, err
	}

	// 1. Search
	subset := view
	if req.Search != nil {
		var err error
		if subset, err = ApplySearch(subset, *req.Search); err != nil {
			return nil, err
		}
	}

	// 2. Filters
	subset, err := ApplyFilters(subset, req.Filters)
	if err != nil {
		return nil, err
	}

	log.Debug("filtered dataset",
		zap.Int("rows", subset.Len()),
		zap.Int("total", view.Len()))

	result := &Result{
		Subset:      subset,
		Rows:        subset.Len(),
		TotalRows:   view.Len(),
		Empty:       subset.Len() == 0,
		Frequencies: make([]ColumnCounts, 0, len(req.CountColumns)),
	}

	// 3. Frequency tables
	for _, col := range req.CountColumns {
		table, err := CountBy(subset, col)
		if err != nil {
			return nil, err
		}
		result.Frequencies = append(result.Frequencies, ColumnCounts{Column: col, Table: table})
	}

	// 6 runs before presentation so statistics see complete tables.
	result.Summary = BuildSummary(subset, view.Len(), result.Frequencies)

	for i := range result.Frequencies {
		table := result.Frequencies[i].Table
		if cfg.SortMode != SortCountDesc {
			SortFrequencies(table, cfg.SortMode)
		}
		result.Frequencies[i].Table = Limit(table, cfg.TopN)
	}

	// 4. Cross tabulation
	if req.Cross != nil {
		groups, err := CrossCount(subset, req.Cross.RowColumn, req.Cross.SeriesColumn)
		if err != nil {
			return nil, err
		}
		if cfg.TopN > 0 && len(groups) > cfg.TopN {
			groups = groups[:cfg.TopN]
		}
		result.Cross = groups
	}

	// 5. Keywords
	if req.KeywordColumn != "" {
		limit := req.KeywordLimit
		if limit <= 0 {
			limit = cfg.KeywordLimit
		}
		keywords, err := ExtractKeywords(subset, req.KeywordColumn, limit)
		if err != nil {
			return nil, err
		}
		result.Keywords = keywords
	}

	log.Debug("aggregated",
		zap.Int("tables", len(result.Frequencies)),
		zap.Int("keywords", len(result.Keywords)),
		zap.Bool("empty", result.Empty))

	return result, nil
}
