package engine

import (
	"testing"
)

// ============================================================================
// FIXTURES
// ============================================================================

const (
	colCompany = "회사"
	colTopic   = "주제"
	colLevel   = "난이도"
	colTitle   = "제목"
)

var submissionColumns = []string{colCompany, colTopic, colLevel, colTitle}

func rec(values map[string]string) Record {
	return Record{Values: values}
}

// fiveRows is the canonical 회사 = [A, B, A, C, A] dataset.
func fiveRows() *SliceView {
	return NewSliceView([]Record{
		rec(map[string]string{colCompany: "A", colTopic: "Vision", colLevel: "상", colTitle: "AI 우승작"}),
		rec(map[string]string{colCompany: "B", colTopic: "NLP", colLevel: "중", colTitle: "AI 차점작"}),
		rec(map[string]string{colCompany: "A", colTopic: "NLP", colLevel: "하", colTitle: "챗봇 서비스"}),
		rec(map[string]string{colCompany: "C", colTopic: "Vision", colLevel: "중"}),
		rec(map[string]string{colCompany: "A", colTopic: "Robotics", colLevel: "상", colTitle: "로봇 AI 팔"}),
	}, submissionColumns...)
}

// withMissing has gaps in every column.
func withMissing() *SliceView {
	return NewSliceView([]Record{
		rec(map[string]string{colCompany: "A", colLevel: "상"}),
		rec(map[string]string{colTopic: "NLP", colLevel: "상"}),
		rec(map[string]string{colCompany: "B", colTopic: "NLP"}),
		rec(map[string]string{colCompany: "A", colTopic: "Vision", colTitle: "AI"}),
		rec(map[string]string{}),
	}, submissionColumns...)
}

func companies(t *testing.T, view RecordView) []string {
	t.Helper()
	out := make([]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		v, _ := view.Value(i, colCompany)
		out = append(out, v)
	}
	return out
}

// isSubset reports whether every row of sub is a row of full (by identity of
// all column values, respecting multiplicity).
func isSubset(full, sub RecordView) bool {
	key := func(v RecordView, i int) string {
		k := ""
		for _, c := range v.Columns() {
			val, ok := v.Value(i, c)
			if !ok {
				val = "\x00missing"
			}
			k += c + "=" + val + "\x1f"
		}
		return k
	}
	remaining := make(map[string]int)
	for i := 0; i < full.Len(); i++ {
		remaining[key(full, i)]++
	}
	for i := 0; i < sub.Len(); i++ {
		k := key(sub, i)
		if remaining[k] == 0 {
			return false
		}
		remaining[k]--
	}
	return true
}
