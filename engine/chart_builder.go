package engine

// ============================================================================
// CHART BUILDER: Produces ChartConfig from frequency tables and groups
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildBarChart produces a single-series bar chart. Returns nil for an empty
// table so callers render their "no data" state.
func BuildBarChart(title, column string, table FrequencyTable) *ChartConfig {
	if len(table) == 0 {
		return nil
	}
	config := &ChartConfig{
		ChartType:  "bar",
		Title:      title,
		XAxis:      LabelForColumn(column),
		YAxis:      "Count",
		ShowLegend: false,
		ShowGrid:   true,
	}
	config.Series = buildSingleSeries(table, title, false)
	config.Colors = assignColors(1)
	return config
}

// BuildPieChart produces a pie chart whose slices carry their own colors.
func BuildPieChart(title, column string, table FrequencyTable) *ChartConfig {
	if len(table) == 0 {
		return nil
	}
	config := &ChartConfig{
		ChartType:  "pie",
		Title:      title,
		XAxis:      LabelForColumn(column),
		ShowLegend: true,
		ShowGrid:   false,
	}
	config.Series = buildSingleSeries(table, title, true)
	config.Colors = assignColors(len(table))
	return config
}

// BuildStackedChart produces one series per sub-group key across the
// primary groups from CrossCount.
func BuildStackedChart(title string, spec CrossSpec, groups []Group) *ChartConfig {
	if len(groups) == 0 || !hasSubGroups(groups) {
		return nil
	}
	config := &ChartConfig{
		ChartType:  "stacked_bar",
		Title:      title,
		XAxis:      LabelForColumn(spec.RowColumn),
		YAxis:      "Count",
		ShowLegend: true,
		ShowGrid:   true,
	}
	config.Series = buildMultiSeries(groups)
	config.Colors = assignColors(len(config.Series))
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(table FrequencyTable, seriesName string, colorPoints bool) []ChartSeries {
	if seriesName == "" {
		seriesName = "Count"
	}

	total := table.Total()
	points := make([]ChartPoint, 0, len(table))
	for i, f := range table {
		p := ChartPoint{
			Label: f.Value,
			Value: float64(f.Count),
		}
		if total > 0 {
			p.Percent = RoundTo1(float64(f.Count) / float64(total) * 100)
		}
		if colorPoints {
			p.Color = defaultColors[i%len(defaultColors)]
		}
		points = append(points, p)
	}

	return []ChartSeries{{
		Name:  seriesName,
		Data:  points,
		Color: defaultColors[0],
	}}
}

func buildMultiSeries(groups []Group) []ChartSeries {
	// Series keys in first-seen order across groups
	var subKeys []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			if !seen[sg.Key] {
				seen[sg.Key] = true
				subKeys = append(subKeys, sg.Key)
			}
		}
	}

	series := make([]ChartSeries, 0, len(subKeys))
	for i, key := range subKeys {
		series = append(series, ChartSeries{
			Name:  key,
			Data:  make([]ChartPoint, 0, len(groups)),
			Color: defaultColors[i%len(defaultColors)],
		})
	}

	for _, g := range groups {
		sgLookup := make(map[string]int)
		for _, sg := range g.SubGroups {
			sgLookup[sg.Key] = sg.Count
		}
		for i, key := range subKeys {
			p := ChartPoint{
				Label: g.Key,
				Value: float64(sgLookup[key]),
			}
			if g.Count > 0 {
				p.Percent = RoundTo1(float64(sgLookup[key]) / float64(g.Count) * 100)
			}
			series[i].Data = append(series[i].Data, p)
		}
	}

	return series
}

func hasSubGroups(groups []Group) bool {
	for _, g := range groups {
		if len(g.SubGroups) > 0 {
			return true
		}
	}
	return false
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// ColorAt returns the palette color for index i.
func ColorAt(i int) string {
	if i < 0 {
		i = -i
	}
	return defaultColors[i%len(defaultColors)]
}
