package schema

import (
	"fmt"

	apperr "github.com/spektr-org/tally/internal/errors"
)

// ============================================================================
// SCHEMA: Maps logical column roles onto revision-specific headers
// ============================================================================
// Datasets label the same column differently across exports ("회사" vs
// "Company", "난이도" vs "수준" vs "Level"). The engine works on real column
// names; this package resolves which header plays which role before the
// engine is invoked.
// ============================================================================

// Kind classifies how a column is used by the dashboard.
type Kind string

const (
	KindCategorical Kind = "categorical" // counted, charted and filterable
	KindText        Kind = "text"        // tokenized for keywords, searchable
	KindLink        Kind = "link"        // rendered as an anchor
)

// Built-in roles.
const (
	RoleCompany   = "company"
	RoleTopic     = "topic"
	RoleCategory  = "category"
	RoleLevel     = "level"
	RoleTitle     = "title"
	RoleEvaluator = "evaluator"
	RoleLink      = "link"
)

// Config describes the roles a dataset is expected to provide.
type Config struct {
	Name        string       `json:"name" yaml:"name"`
	Version     string       `json:"version,omitempty" yaml:"version,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     []ColumnMeta `json:"columns" yaml:"columns"`

	// KeywordFallback names the role tokenized for keywords when no text
	// role is bound.
	KeywordFallback string `json:"keywordFallback,omitempty" yaml:"keywordFallback,omitempty"`

	// Auto-discovery metadata
	DiscoveredFrom string          `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	DiscoveredAt   string          `json:"discoveredAt,omitempty" yaml:"discoveredAt,omitempty"`
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// ColumnMeta describes one logical column.
type ColumnMeta struct {
	Role            string   `json:"role" yaml:"role"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Kind            Kind     `json:"kind" yaml:"kind"`
	Filterable      bool     `json:"filterable" yaml:"filterable"`
	Chart           string   `json:"chart,omitempty" yaml:"chart,omitempty"` // "bar", "pie", "table"
	Required        bool     `json:"required,omitempty" yaml:"required,omitempty"`
	SampleValues    []string `json:"sampleValues,omitempty" yaml:"sampleValues,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column" yaml:"column"`
	Reason      string `json:"reason" yaml:"reason"`
	Recoverable bool   `json:"recoverable" yaml:"recoverable"` // Can be restored if consumer overrides
}

// Default returns the built-in contest submission schema with the Korean and
// English labels seen across exports. Only the company role is required.
// Exports without a title column take keywords from the topic.
func Default() *Config {
	return &Config{
		Name:            "Contest Submissions",
		Version:         "1.0",
		KeywordFallback: RoleTopic,
		Columns: []ColumnMeta{
			{
				Role: RoleCompany, DisplayName: "회사", Kind: KindCategorical,
				Aliases:    []string{"회사", "회사명", "기업", "Company", "Company Name"},
				Filterable: true, Chart: "bar", Required: true,
			},
			{
				Role: RoleTopic, DisplayName: "주제", Kind: KindCategorical,
				Aliases:    []string{"주제", "Topic", "Theme"},
				Filterable: true, Chart: "bar",
			},
			{
				Role: RoleCategory, DisplayName: "카테고리", Kind: KindCategorical,
				Aliases:    []string{"카테고리", "분야", "Category"},
				Filterable: true, Chart: "pie",
			},
			{
				Role: RoleLevel, DisplayName: "난이도", Kind: KindCategorical,
				Aliases:    []string{"난이도", "수준", "Level", "Difficulty"},
				Filterable: true, Chart: "pie",
			},
			{
				Role: RoleTitle, DisplayName: "제목", Kind: KindText,
				Aliases: []string{"제목", "과제명", "프로젝트명", "Title", "Project Title"},
			},
			{
				Role: RoleEvaluator, DisplayName: "심사위원", Kind: KindCategorical,
				Aliases:    []string{"심사위원", "평가자", "Evaluator", "Judge"},
				Filterable: true, Chart: "table",
			},
			{
				Role: RoleLink, DisplayName: "링크", Kind: KindLink,
				Aliases: []string{"링크", "URL", "Link", "GitHub"},
			},
		},
	}
}

// Column returns the metadata for a role.
func (c Config) Column(role string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Role == role {
			return col, true
		}
	}
	return ColumnMeta{}, false
}

// Roles returns the roles of the given kind in declaration order.
func (c Config) Roles(kind Kind) []string {
	var roles []string
	for _, col := range c.Columns {
		if col.Kind == kind {
			roles = append(roles, col.Role)
		}
	}
	return roles
}

// Validate rejects configs the resolver cannot work with.
func (c Config) Validate() error {
	if len(c.Columns) == 0 {
		return apperr.ConfigInvalid("schema has no columns")
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Role == "" {
			return apperr.ConfigInvalid(fmt.Sprintf("column %d has no role", i))
		}
		if seen[col.Role] {
			return apperr.ConfigInvalid(fmt.Sprintf("duplicate role %q", col.Role))
		}
		seen[col.Role] = true
		switch col.Kind {
		case KindCategorical, KindText, KindLink:
		default:
			return apperr.ConfigInvalid(fmt.Sprintf("role %q has unknown kind %q", col.Role, col.Kind))
		}
		switch col.Chart {
		case "", "bar", "pie", "table":
		default:
			return apperr.ConfigInvalid(fmt.Sprintf("role %q has unknown chart %q", col.Role, col.Chart))
		}
	}
	if c.KeywordFallback != "" && !seen[c.KeywordFallback] {
		return apperr.ConfigInvalid(fmt.Sprintf("keyword fallback %q is not a declared role", c.KeywordFallback))
	}
	return nil
}
