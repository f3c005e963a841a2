package jsonref

import (
	"github.com/minet/connexion/cnxerrors"
)

// Option is a functional option for configuring a resolution session.
type Option func(*config) error

// config holds the configuration for a single Resolve call.
type config struct {
	store    Store
	handlers Handlers
	fetcher  Fetcher
	baseDir  string
	maxDepth int
	logger   Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		baseDir:  ".",
		maxDepth: MaxRefDepth,
		logger:   NopLogger{},
	}
}

// WithStore supplies a caller-owned reference store. Documents fetched
// during resolution are added to the store keyed by absolute document URI,
// and pre-seeded entries are used instead of fetching. The same store may be
// reused across Resolve calls to amortize external fetches; concurrent use
// of one store from parallel Resolve calls must be serialized by the caller.
func WithStore(store Store) Option {
	return func(c *config) error {
		if store == nil {
			return &cnxerrors.ConfigError{
				Option:  "WithStore",
				Message: "store cannot be nil",
			}
		}
		c.store = store
		return nil
	}
}

// WithHandlers replaces the entire scheme handler map. Schemes absent from
// the map cannot be resolved.
func WithHandlers(handlers Handlers) Option {
	return func(c *config) error {
		if len(handlers) == 0 {
			return &cnxerrors.ConfigError{
				Option:  "WithHandlers",
				Message: "handler map cannot be empty",
			}
		}
		c.handlers = handlers
		return nil
	}
}

// WithHandler registers or overrides the handler for a single URI scheme,
// keeping the defaults for all other schemes.
func WithHandler(scheme string, handler Handler) Option {
	return func(c *config) error {
		if scheme == "" || handler == nil {
			return &cnxerrors.ConfigError{
				Option:  "WithHandler",
				Value:   scheme,
				Message: "scheme and handler must both be set",
			}
		}
		if c.handlers == nil {
			c.handlers = DefaultHandlers()
		}
		c.handlers[scheme] = handler
		return nil
	}
}

// WithFetcher replaces the HTTP/HTTPS fetch function used by the default
// handlers. Use this to add authentication, custom deadlines, or to stub
// network access in tests. Ignored when WithHandlers supplies a full map.
func WithFetcher(fetch Fetcher) Option {
	return func(c *config) error {
		if fetch == nil {
			return &cnxerrors.ConfigError{
				Option:  "WithFetcher",
				Message: "fetcher cannot be nil",
			}
		}
		c.fetcher = fetch
		return nil
	}
}

// WithBaseDir sets the base directory for resolving relative file
// references. File references outside this directory are rejected.
// Default is the current working directory.
func WithBaseDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return &cnxerrors.ConfigError{
				Option:  "WithBaseDir",
				Message: "base directory cannot be empty",
			}
		}
		c.baseDir = dir
		return nil
	}
}

// WithMaxDepth caps the nesting depth of reference resolution.
// Default is MaxRefDepth.
func WithMaxDepth(depth int) Option {
	return func(c *config) error {
		if depth <= 0 {
			return &cnxerrors.ConfigError{
				Option:  "WithMaxDepth",
				Value:   depth,
				Message: "depth must be positive",
			}
		}
		c.maxDepth = depth
		return nil
	}
}

// WithLogger sets the logger used during resolution.
// Default is NopLogger.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &cnxerrors.ConfigError{
				Option:  "WithLogger",
				Message: "logger cannot be nil",
			}
		}
		c.logger = logger
		return nil
	}
}
