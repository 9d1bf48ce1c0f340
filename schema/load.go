package schema

import (
	"os"

	"gopkg.in/yaml.v3"

	apperr "github.com/spektr-org/tally/internal/errors"
)

// LoadFile reads a schema from a YAML (or JSON) file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.WithCode(apperr.CodeConfigInvalid, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, apperr.Wrapf(err, "schema file %s", path)
	}
	return cfg, nil
}

// Parse decodes a schema document and applies defaults: a missing kind is
// categorical, categorical columns chart as bars, and a missing display name
// is the role.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperr.WithCode(apperr.CodeConfigInvalid, err)
	}
	for i := range cfg.Columns {
		col := &cfg.Columns[i]
		if col.Kind == "" {
			col.Kind = KindCategorical
		}
		if col.Kind == KindCategorical && col.Chart == "" {
			col.Chart = "bar"
		}
		if col.DisplayName == "" {
			col.DisplayName = col.Role
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes a schema as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
