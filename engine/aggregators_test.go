package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountByScenario(t *testing.T) {
	table, err := CountBy(fiveRows(), colCompany)
	require.NoError(t, err)

	want := FrequencyTable{{"A", 3}, {"B", 1}, {"C", 1}}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Errorf("CountBy mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByTiesKeepFirstSeenOrder(t *testing.T) {
	// C appears before B, so C must rank first among the ties even though
	// B sorts before C alphabetically.
	view := NewSliceView([]Record{
		rec(map[string]string{colCompany: "C"}),
		rec(map[string]string{colCompany: "A"}),
		rec(map[string]string{colCompany: "B"}),
		rec(map[string]string{colCompany: "A"}),
		rec(map[string]string{colCompany: "B"}),
		rec(map[string]string{colCompany: "D"}),
		rec(map[string]string{colCompany: "C"}),
	}, colCompany)

	table, err := CountBy(view, colCompany)
	require.NoError(t, err)

	want := FrequencyTable{{"C", 2}, {"A", 2}, {"B", 2}, {"D", 1}}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Errorf("tie-break mismatch (-want +got):\n%s", diff)
	}
}

func TestCountBySumsToPresentRows(t *testing.T) {
	view := withMissing()

	for _, col := range submissionColumns {
		table, err := CountBy(view, col)
		require.NoError(t, err)
		assert.Equal(t, CountPresent(view, col), table.Total(), "column %s", col)
	}

	levels, err := CountBy(view, colLevel)
	require.NoError(t, err)
	assert.Equal(t, FrequencyTable{{"상", 2}}, levels)
}

func TestCountByIsDeterministic(t *testing.T) {
	view := fiveRows()

	first, err := CountBy(view, colTopic)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := CountBy(view, colTopic)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
	assert.Equal(t, FrequencyTable{{"Vision", 2}, {"NLP", 2}, {"Robotics", 1}}, first)
}

func TestCountByEmptyAndInvalid(t *testing.T) {
	empty := NewSliceView(nil, submissionColumns...)

	table, err := CountBy(empty, colCompany)
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Len(t, table, 0)

	_, err = CountBy(empty, "Company")
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestCountByDoesNotMutateView(t *testing.T) {
	view := fiveRows()
	before := companies(t, view)

	_, err := CountBy(view, colCompany)
	require.NoError(t, err)
	assert.Equal(t, before, companies(t, view))
}

func TestCrossCount(t *testing.T) {
	groups, err := CrossCount(fiveRows(), colCompany, colLevel)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "A", groups[0].Key)
	assert.Equal(t, 3, groups[0].Count)
	require.Len(t, groups[0].SubGroups, 2)
	assert.Equal(t, "상", groups[0].SubGroups[0].Key)
	assert.Equal(t, 2, groups[0].SubGroups[0].Count)
	assert.Equal(t, "하", groups[0].SubGroups[1].Key)

	for _, g := range groups {
		sum := 0
		for _, sg := range g.SubGroups {
			sum += sg.Count
		}
		assert.Equal(t, g.Count, sum, "group %s", g.Key)
	}
}

func TestCrossCountDropsIncompleteRows(t *testing.T) {
	groups, err := CrossCount(withMissing(), colCompany, colTopic)
	require.NoError(t, err)

	// Only (B, NLP) and (A, Vision) are complete.
	require.Len(t, groups, 2)
	assert.Equal(t, "B", groups[0].Key)
	assert.Equal(t, "A", groups[1].Key)
	assert.Equal(t, 1, groups[1].Count)
}

func TestSortFrequencies(t *testing.T) {
	base := FrequencyTable{{"나", 1}, {"가", 3}, {"다", 1}}

	tests := []struct {
		mode string
		want FrequencyTable
	}{
		{SortCountDesc, FrequencyTable{{"가", 3}, {"나", 1}, {"다", 1}}},
		{SortCountAsc, FrequencyTable{{"나", 1}, {"다", 1}, {"가", 3}}},
		{SortLabelAsc, FrequencyTable{{"가", 3}, {"나", 1}, {"다", 1}}},
		{SortLabelDesc, FrequencyTable{{"다", 1}, {"나", 1}, {"가", 3}}},
		{"unknown", FrequencyTable{{"나", 1}, {"가", 3}, {"다", 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			table := append(FrequencyTable{}, base...)
			SortFrequencies(table, tt.mode)
			assert.Equal(t, tt.want, table)
		})
	}
}

func TestLimitAndUniqueValues(t *testing.T) {
	table := FrequencyTable{{"A", 3}, {"B", 1}, {"C", 1}}
	assert.Len(t, Limit(table, 2), 2)
	assert.Len(t, Limit(table, 0), 3)
	assert.Len(t, Limit(table, 10), 3)

	assert.Equal(t, []string{"A", "B", "C"}, UniqueValues(fiveRows(), colCompany))
}

func TestLabelForColumn(t *testing.T) {
	assert.Equal(t, "Company Name", LabelForColumn("company_name"))
	assert.Equal(t, "회사", LabelForColumn("회사"))
	assert.Equal(t, "", LabelForColumn(""))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "999", FormatInt(999))
	assert.Equal(t, "1,000", FormatInt(1000))
	assert.Equal(t, "-12,345", FormatInt(-12345))
}
