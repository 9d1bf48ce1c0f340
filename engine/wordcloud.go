package engine

import "math"

// Font size bounds for word clouds, in px.
const (
	MinFontSize = 14
	MaxFontSize = 56
)

// BuildWordCloud scales keyword counts linearly onto [MinFontSize,
// MaxFontSize]. When every token has the same count all words get the
// maximum size. Order follows the keyword table.
func BuildWordCloud(keywords KeywordTable) []WordCloudItem {
	if len(keywords) == 0 {
		return nil
	}

	lo, hi := keywords[0].Count, keywords[0].Count
	for _, k := range keywords[1:] {
		if k.Count < lo {
			lo = k.Count
		}
		if k.Count > hi {
			hi = k.Count
		}
	}

	items := make([]WordCloudItem, 0, len(keywords))
	for i, k := range keywords {
		scale := 1.0
		if hi > lo {
			scale = float64(k.Count-lo) / float64(hi-lo)
		}
		items = append(items, WordCloudItem{
			Text:     k.Token,
			Count:    k.Count,
			Weight:   RoundTo1(float64(k.Count) / float64(hi)),
			FontSize: MinFontSize + int(math.Round(scale*float64(MaxFontSize-MinFontSize))),
			Color:    ColorAt(i),
		})
	}
	return items
}
