// Package store defines the aggregate persistence interface. Each
// subsystem (user, policy, tenant, decisionlog) defines its own store
// interface. The composite Store composes them all.
// Backends: Postgres, SQLite, Mongo, and Memory.
package store

import (
	"context"
	"errors"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// ErrNotFound is wrapped by every backend when an entity does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the aggregate persistence interface.
// Each subsystem store is a composable interface; a single backend
// (postgres, sqlite, mongo, memory) implements all of them.
type Store interface {
	user.Store
	policy.Store
	tenant.Store
	decisionlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
