package decisionlog

import (
	"context"
	"time"

	"github.com/xraph/wami/id"
)

// Store defines persistence operations for decision audit logs.
type Store interface {
	// CreateDecisionLog persists a new decision log entry.
	CreateDecisionLog(ctx context.Context, e *Entry) error

	// GetDecisionLog retrieves a decision log entry by ID.
	GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*Entry, error)

	// ListDecisionLogs returns decision log entries matching the filter.
	ListDecisionLogs(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// CountDecisionLogs returns the number of entries matching the filter.
	CountDecisionLogs(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeDecisionLogs removes entries older than the given time.
	PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error)

	// DeleteDecisionLogsByTenant removes all decision logs for a tenant.
	DeleteDecisionLogsByTenant(ctx context.Context, tenantID string) error
}
