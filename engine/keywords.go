package engine

import (
	"sort"

	"github.com/dlclark/regexp2"
)

// ============================================================================
// KEYWORDS: Token Frequency over a Free-Text Column
// ============================================================================
// Tokens are maximal runs of word characters matched by \b\w+\b. regexp2's
// default (non-ECMAScript) mode treats \w as Unicode letters, marks, digits
// and connector punctuation, so Hangul syllables form tokens the same way
// Latin letters do. Counting is case-sensitive.
// ============================================================================

var tokenPattern = regexp2.MustCompile(`\b\w+\b`, regexp2.None)

// Tokenize splits text into word tokens in order of appearance.
func Tokenize(text string) []string {
	var tokens []string
	m, err := tokenPattern.FindStringMatch(text)
	for err == nil && m != nil {
		tokens = append(tokens, m.String())
		m, err = tokenPattern.FindNextMatch(m)
	}
	return tokens
}

// ExtractKeywords counts tokens across all non-missing values of column and
// returns the limit most frequent, ordered by count descending then token
// ascending. Each value is tokenized on its own, so tokens never join across
// rows. limit <= 0 uses DefaultKeywordLimit.
func ExtractKeywords(view RecordView, column string, limit int) (KeywordTable, error) {
	if err := checkColumns("extract keywords", view, column); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	counts := make(map[string]int)
	for i := 0; i < view.Len(); i++ {
		val, ok := view.Value(i, column)
		if !ok {
			continue
		}
		for _, tok := range Tokenize(val) {
			counts[tok]++
		}
	}

	table := make(KeywordTable, 0, len(counts))
	for tok, n := range counts {
		table = append(table, Keyword{Token: tok, Count: n})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return table[i].Token < table[j].Token
	})

	if len(table) > limit {
		table = table[:limit]
	}
	return table, nil
}
