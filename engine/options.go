package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS: Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger       *zap.Logger
	KeywordLimit int    // used when Request.KeywordLimit is 0
	SortMode     string // frequency table order
	TopN         int    // 0 = all categories
}

// WithLogger routes pipeline logging to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithKeywordLimit sets the keyword limit when the request leaves it unset.
func WithKeywordLimit(n int) Option {
	return func(c *config) {
		c.KeywordLimit = n
	}
}

// WithSort sets the frequency table order (SortCountDesc, SortLabelAsc, ...).
func WithSort(mode string) Option {
	return func(c *config) {
		c.SortMode = mode
	}
}

// WithTopN truncates every frequency table to its n leading entries.
func WithTopN(n int) Option {
	return func(c *config) {
		c.TopN = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:       zap.NewNop(),
		KeywordLimit: DefaultKeywordLimit,
		SortMode:     SortCountDesc,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
