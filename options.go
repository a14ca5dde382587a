package jsoning

import "github.com/rs/zerolog"

// GenerateOpt bundles generation options.
type GenerateOpt struct {
	Version string // Empty means DefaultVersion.
	Pretty  bool   // Only affects textual encoding.
	Hash    bool   // Render returns the *Document instead of text.
}

func lastOpt(opts []GenerateOpt) GenerateOpt {
	if len(opts) == 0 {
		return GenerateOpt{}
	}
	return opts[len(opts)-1]
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger          zerolog.Logger
	driver          Driver
	reflectAccess   bool
	maxDepth        int
	versionFallback bool
	setup           []func(*Extensions) error
}

func defaultOptions() options {
	return options{logger: zerolog.Nop(), driver: JSONDriver()}
}

// WithLogger sets the logger used for declaration events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDriver replaces the text driver; nil values are ignored.
func WithDriver(d Driver) Option {
	return func(o *options) {
		if d != nil {
			o.driver = d
		}
	}
}

// WithReflectAccess lets hosts that do not implement FieldReader be read
// through their exported struct fields.
func WithReflectAccess(enabled bool) Option {
	return func(o *options) { o.reflectAccess = enabled }
}

// WithMaxDepth bounds nested resolution. Zero (the default) leaves recursion
// unguarded, so cyclic object graphs exhaust the stack.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 0 {
			depth = 0
		}
		o.maxDepth = depth
	}
}

// WithVersionFallback makes an undeclared version resolve to the default
// version instead of failing with ErrVersionNotFound. Nested objects still
// receive the requested version name.
func WithVersionFallback(enabled bool) Option {
	return func(o *options) { o.versionFallback = enabled }
}

// WithSetup runs fn against the extension table once, when the registry is
// built. Use it for start-up registrations such as codec.RegisterTemporal.
func WithSetup(fn func(*Extensions) error) Option {
	return func(o *options) {
		if fn != nil {
			o.setup = append(o.setup, fn)
		}
	}
}
