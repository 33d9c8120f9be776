package lang

import "github.com/ardnew/twine/log"

// DefaultMaxDepth bounds both the length of an extends chain and the
// nesting of includes.
const DefaultMaxDepth = 32

// Option configures parsing, resolution, and rendering.
type Option func(*config)

type config struct {
	logger   log.Logger
	globals  Value
	maxDepth int
	noCache  bool
}

func makeConfig(opts ...Option) config {
	c := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithLogger sets the logger used for trace and debug diagnostics.
// The default zero logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxDepth bounds the number of extends levels and nested includes.
// Values less than 1 restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

// WithGlobals sets the root context consulted after every scope of an
// [Environment] misses. The argument is converted with [ValueOf].
func WithGlobals(globals any) Option {
	return func(c *config) {
		c.globals = ValueOf(globals)
	}
}

// WithoutCache bypasses the shared parse cache.
func WithoutCache() Option {
	return func(c *config) {
		c.noCache = true
	}
}
