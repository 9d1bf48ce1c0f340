package schema

import (
	"testing"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

// Sample contest export with an ID column and an empty notes column
var contestCSV = []byte(`회사,주제,카테고리,난이도,제목,심사위원,링크,점수,제출번호,비고
A사,Vision,AI,상,AI 기반 불량 검출 시스템,김심사,https://github.com/a/p1,4,S-001,
B사,NLP,AI,중,고객 문의 자동 분류기,이심사,https://github.com/b/p2,3,S-002,
A사,Vision,AI,상,AI 품질 검사 로봇,김심사,https://github.com/a/p3,5,S-003,
C사,Robotics,HW,하,물류 로봇 경로 최적화,박심사,https://github.com/c/p4,2,S-004,
A사,IoT,HW,중,스마트 공장 센서 대시보드,이심사,https://github.com/a/p5,3,S-005,
B사,NLP,AI,상,회의록 요약 서비스,김심사,https://github.com/b/p6,4,S-006,
C사,Vision,AI,중,안전모 착용 감지,박심사,https://github.com/c/p7,4,S-007,
A사,Robotics,HW,하,협동 로봇 팔 제어,이심사,https://github.com/a/p8,1,S-008,
B사,IoT,HW,중,에너지 사용량 예측 모델,김심사,https://github.com/b/p9,3,S-009,
C사,NLP,AI,상,사내 문서 검색 챗봇,박심사,https://github.com/c/p10,5,S-010,
A사,Vision,AI,중,제품 외관 결함 분류,이심사,https://github.com/a/p11,2,S-011,
B사,Robotics,HW,하,자율 주행 카트 시범,김심사,https://github.com/b/p12,3,S-012,
`)

func TestDiscoverContestCSV(t *testing.T) {
	config, err := DiscoverFromCSV(contestCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	// Built-in headers take their roles
	for _, role := range []string{RoleCompany, RoleTopic, RoleCategory, RoleLevel, RoleEvaluator} {
		col, ok := config.Column(role)
		if !ok {
			t.Errorf("role %q not discovered", role)
			continue
		}
		if col.Kind != KindCategorical || !col.Filterable {
			t.Errorf("role %q should be a filterable categorical column, got %+v", role, col)
		}
	}

	if col, ok := config.Column(RoleTitle); !ok || col.Kind != KindText {
		t.Errorf("제목 should be discovered as text, got %+v", col)
	}
	if col, ok := config.Column(RoleLink); !ok || col.Kind != KindLink {
		t.Errorf("링크 should be discovered as a link, got %+v", col)
	}

	// Coded numeric scores are counted
	if col, ok := config.Column("점수"); !ok || col.Kind != KindCategorical {
		t.Errorf("점수 should be categorical, got %+v", col)
	}

	skippedNames := make([]string, len(config.SkippedColumns))
	for i, s := range config.SkippedColumns {
		skippedNames[i] = s.Column
	}
	assertContains(t, skippedNames, "제출번호", "제출번호 should be skipped (unique ID)")
	assertContains(t, skippedNames, "비고", "비고 should be skipped (empty)")

	for _, s := range config.SkippedColumns {
		if s.Column == "제출번호" && s.Recoverable {
			t.Error("제출번호 should NOT be recoverable; it's a unique ID")
		}
	}

	if err := config.Validate(); err != nil {
		t.Errorf("discovered config should validate: %v", err)
	}
}

func TestDiscoveredConfigResolvesAgainstSource(t *testing.T) {
	config, err := DiscoverFromCSV(contestCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	m, err := Resolve(config, []string{"회사", "주제", "카테고리", "난이도", "제목", "심사위원", "링크", "점수", "제출번호", "비고"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if h, _ := m.Column("점수"); h != "점수" {
		t.Errorf("점수 should resolve to its own header, got %q", h)
	}
	if got := m.Roles(KindText); len(got) != 1 || got[0] != RoleTitle {
		t.Errorf("text roles = %v, want [title]", got)
	}
}

func TestDiscoverWithRecovery(t *testing.T) {
	rows := make([][]string, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{"A사", string(rune('가' + i))})
	}
	headers := []string{"회사", "팀명"}

	config, err := DiscoverFromRows(headers, rows)
	if err != nil {
		t.Fatalf("DiscoverFromRows failed: %v", err)
	}
	if _, ok := config.Column("팀명"); ok {
		t.Fatal("팀명 should be skipped before recovery")
	}

	config, err = DiscoverFromRows(headers, rows, DiscoverOptions{RecoverColumns: []string{"팀명"}})
	if err != nil {
		t.Fatalf("DiscoverFromRows with recovery failed: %v", err)
	}
	if col, ok := config.Column("팀명"); !ok || col.Kind != KindCategorical {
		t.Errorf("팀명 should be recovered as categorical, got %+v", col)
	}
	for _, s := range config.SkippedColumns {
		if s.Column == "팀명" {
			t.Error("팀명 should not be in skipped columns after recovery")
		}
	}
}

func TestDiscoverRejectsEmptyInput(t *testing.T) {
	if _, err := DiscoverFromCSV([]byte("회사,주제\n")); err == nil {
		t.Error("header-only CSV should fail discovery")
	}
	if _, err := DiscoverFromRows(nil, [][]string{{"x"}}); err == nil {
		t.Error("headerless rows should fail discovery")
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		values   []string
		expected columnType
	}{
		{[]string{"https://a.io/x", "http://b.io", "www.c.io/y"}, typeLink},
		{[]string{"1", "2", "3.5", "-4"}, typeNumeric},
		{[]string{"2025-01-02", "2025-03-04"}, typeDate},
		{[]string{"A사", "B사"}, typeString},
		{[]string{"1", "A사", "B사", "C사"}, typeString},
	}

	for _, tt := range tests {
		if got := detectType(tt.values); got != tt.expected {
			t.Errorf("detectType(%v) = %v, want %v", tt.values, got, tt.expected)
		}
	}
}

func TestIsNullToken(t *testing.T) {
	for _, s := range []string{"", "  ", "NaN", "N/A", "null", "None", "#N/A", "<NA>"} {
		if !IsNullToken(s) {
			t.Errorf("IsNullToken(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"0", "-", "A사", "없음"} {
		if IsNullToken(s) {
			t.Errorf("IsNullToken(%q) = true, want false", s)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Story Points", "story_points"},
		{"issueType", "issue_type"},
		{"StoryPoints", "story_points"},
		{"ID", "id"},
		{"created_at", "created_at"},
		{"제출 번호", "제출_번호"},
		{" 회사 ", "회사"},
	}

	for _, tt := range tests {
		got := toSnakeCase(tt.input)
		if got != tt.expected {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"story_points", "Story Points"},
		{"Sprint", "Sprint"},
		{"Issue Type", "Issue Type"},
		{"점수", "점수"},
	}

	for _, tt := range tests {
		got := toDisplayName(tt.input)
		if got != tt.expected {
			t.Errorf("toDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func assertContains(t *testing.T, slice []string, item string, msg string) {
	t.Helper()
	for _, s := range slice {
		if s == item {
			return
		}
	}
	t.Errorf("%s: %q not found in %v", msg, item, slice)
}
