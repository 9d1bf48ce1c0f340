package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	apperr "github.com/spektr-org/tally/internal/errors"
)

// Mapping is a Config bound to the headers of one dataset.
type Mapping struct {
	config  *Config
	headers map[string]string // role → header
	roles   []string          // resolved roles, config order
}

// Resolve binds each role in cfg to the first header (in header order) that
// matches its role name, display name or an alias. Matching is done on
// normalised labels (NFC, trimmed, case-folded, inner whitespace collapsed),
// so a macOS-exported "회사" in decomposed jamo still matches. A header is
// bound to at most one role. Missing required roles are a configuration
// error.
func Resolve(cfg *Config, headers []string) (*Mapping, error) {
	if cfg == nil {
		cfg = Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeLabel(h)
	}
	claimed := make([]bool, len(headers))

	m := &Mapping{
		config:  cfg,
		headers: make(map[string]string),
	}

	var missing []string
	for _, col := range cfg.Columns {
		candidates := make(map[string]bool, len(col.Aliases)+2)
		candidates[NormalizeLabel(col.Role)] = true
		if col.DisplayName != "" {
			candidates[NormalizeLabel(col.DisplayName)] = true
		}
		for _, a := range col.Aliases {
			candidates[NormalizeLabel(a)] = true
		}

		found := -1
		for i, h := range normalized {
			if !claimed[i] && candidates[h] {
				found = i
				break
			}
		}
		if found < 0 {
			if col.Required {
				missing = append(missing, col.Role)
			}
			continue
		}
		claimed[found] = true
		m.headers[col.Role] = headers[found]
		m.roles = append(m.roles, col.Role)
	}

	if len(missing) > 0 {
		return nil, apperr.ConfigInvalid(fmt.Sprintf(
			"required column role(s) %s not found in headers [%s]",
			strings.Join(missing, ", "), strings.Join(headers, ", ")))
	}
	return m, nil
}

// NormalizeLabel canonicalises a header or alias for comparison.
func NormalizeLabel(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// Column returns the header bound to role.
func (m *Mapping) Column(role string) (string, bool) {
	h, ok := m.headers[role]
	return h, ok
}

// Has reports whether role is bound.
func (m *Mapping) Has(role string) bool {
	_, ok := m.headers[role]
	return ok
}

// Meta returns the column metadata for role.
func (m *Mapping) Meta(role string) ColumnMeta {
	meta, _ := m.config.Column(role)
	return meta
}

// Config returns the schema the mapping was resolved from.
func (m *Mapping) Config() *Config { return m.config }

// Roles returns resolved roles of kind, in config order.
func (m *Mapping) Roles(kind Kind) []string {
	var out []string
	for _, r := range m.roles {
		if m.Meta(r).Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// KeywordRole returns the role tokenized for keywords and searched: the
// first bound text role, else the config's keyword fallback when bound.
func (m *Mapping) KeywordRole() (string, bool) {
	if text := m.Roles(KindText); len(text) > 0 {
		return text[0], true
	}
	if fb := m.config.KeywordFallback; fb != "" && m.Has(fb) {
		return fb, true
	}
	return "", false
}

// All returns every resolved role in config order.
func (m *Mapping) All() []string {
	return append([]string(nil), m.roles...)
}

// Filterable returns resolved roles that get a selector widget.
func (m *Mapping) Filterable() []string {
	var out []string
	for _, r := range m.roles {
		if m.Meta(r).Filterable {
			out = append(out, r)
		}
	}
	return out
}

// Headers maps roles to headers, skipping unbound roles.
func (m *Mapping) Headers(roles ...string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if h, ok := m.headers[r]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Label returns the display label for role, falling back to its header.
func (m *Mapping) Label(role string) string {
	if meta := m.Meta(role); meta.DisplayName != "" {
		return meta.DisplayName
	}
	if h, ok := m.headers[role]; ok {
		return h
	}
	return role
}
