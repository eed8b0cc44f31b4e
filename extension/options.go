package extension

import (
	"log/slog"

	"github.com/xraph/wami"
	"github.com/xraph/wami/plugin"
	"github.com/xraph/wami/store"
)

// ExtOption configures the WAMI Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.wamiOpts = append(e.wamiOpts, wami.WithStore(s))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithAuthorizerOptions adds authorizer-level options.
func WithAuthorizerOptions(opts ...wami.Option) ExtOption {
	return func(e *Extension) {
		e.wamiOpts = append(e.wamiOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithInstanceID sets the WAMI instance ID used when minting ARNs.
func WithInstanceID(instanceID string) ExtOption {
	return func(e *Extension) {
		e.config.InstanceID = instanceID
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
