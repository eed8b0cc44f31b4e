// Package extension provides a Forge extension entry point for WAMI.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/wami"
	"github.com/xraph/wami/api"
	"github.com/xraph/wami/plugin"
	"github.com/xraph/wami/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "wami"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multicloud IAM core: ARNs, policy evaluation, and tenant hierarchy"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts WAMI as a Forge extension.
type Extension struct {
	config     Config
	auth       *wami.Authorizer
	apiHandler *api.API
	logger     *slog.Logger
	wamiOpts   []wami.Option
	plugins    []plugin.Plugin
}

// New creates a WAMI Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Authorizer returns the underlying WAMI authorizer.
func (e *Extension) Authorizer() *wami.Authorizer { return e.auth }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the authorizer,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the authorizer in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*wami.Authorizer, error) {
		return e.auth, nil
	}); err != nil {
		return fmt.Errorf("wami: register authorizer in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Build wami options.
	opts := make([]wami.Option, 0, len(e.wamiOpts)+len(e.plugins)+2)
	opts = append(opts, wami.WithLogger(logger))

	// Try to resolve store from DI container, fall back to option-provided store.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, wami.WithStore(s))
	}

	// Append user-provided options (may override store).
	opts = append(opts, e.wamiOpts...)

	// Register extension hooks.
	for _, x := range e.plugins {
		opts = append(opts, wami.WithPlugin(x))
	}

	auth, err := wami.New(opts...)
	if err != nil {
		return fmt.Errorf("wami: create authorizer: %w", err)
	}
	e.auth = auth

	// Create API handler.
	e.apiHandler = api.New(auth, fapp.Router(), e.config.InstanceID)

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("wami: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the authorizer and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.auth == nil {
		return errors.New("wami: extension not initialized")
	}

	// Run migrations unless disabled.
	if !e.config.DisableMigrate {
		s := e.auth.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("wami: migration failed: %w", err)
			}
		}
	}

	return e.auth.Start(ctx)
}

// Stop gracefully shuts down the authorizer.
func (e *Extension) Stop(ctx context.Context) error {
	if e.auth == nil {
		return nil
	}
	return e.auth.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.auth == nil {
		return errors.New("wami: extension not initialized")
	}
	s := e.auth.Store()
	if s == nil {
		return errors.New("wami: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all wami API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
