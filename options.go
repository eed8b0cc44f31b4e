package wami

import (
	"log/slog"

	"github.com/xraph/wami/plugin"
	"github.com/xraph/wami/store"
)

// Option is a functional option for the Authorizer.
type Option func(*Authorizer)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(a *Authorizer) { a.store = s } }

// WithEvaluator sets the policy document evaluator.
func WithEvaluator(ev Evaluator) Option { return func(a *Authorizer) { a.evaluator = ev } }

// WithCache sets the decision cache.
func WithCache(c Cache) Option { return func(a *Authorizer) { a.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(a *Authorizer) { a.logger = l } }

// WithConfig sets the authorizer configuration.
func WithConfig(c Config) Option { return func(a *Authorizer) { a.config = c } }

// WithPlugin registers a plugin with the authorizer. Plugins are queued
// and attached to the registry in New once every option has been
// applied, so option order does not matter.
func WithPlugin(x plugin.Plugin) Option {
	return func(a *Authorizer) { a.pendingPlugins = append(a.pendingPlugins, x) }
}
