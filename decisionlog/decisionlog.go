// Package decisionlog defines the authorization decision audit Entry
// entity.
package decisionlog

import (
	"time"

	"github.com/xraph/wami/id"
)

// Entry is a single authorization decision audit record.
type Entry struct {
	ID         id.DecisionLogID `json:"id" db:"id"`
	TenantID   string           `json:"tenant_id" db:"tenant_id"`
	Caller     string           `json:"caller" db:"caller"`
	Action     string           `json:"action" db:"action"`
	Resource   string           `json:"resource" db:"resource"`
	Decision   string           `json:"decision" db:"decision"`
	Reason     string           `json:"reason,omitempty" db:"reason"`
	EvalTimeNs int64            `json:"eval_time_ns" db:"eval_time_ns"`
	RequestIP  string           `json:"request_ip,omitempty" db:"request_ip"`
	Metadata   map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	TenantID string     `json:"tenant_id,omitempty"`
	Caller   string     `json:"caller,omitempty"`
	Action   string     `json:"action,omitempty"`
	Resource string     `json:"resource,omitempty"`
	Decision string     `json:"decision,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}
