// Package user defines the User and AccessKey entities and their store
// interface.
package user

import (
	"time"

	"github.com/xraph/wami/id"
)

// User is a principal that can authenticate and be granted policies.
type User struct {
	ID        id.UserID      `json:"id" db:"id"`
	TenantID  string         `json:"tenant_id" db:"tenant_id"`
	Name      string         `json:"name" db:"name"`
	Path      string         `json:"path" db:"path"`
	ARN       string         `json:"arn" db:"arn"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// KeyStatus is the lifecycle state of an access key.
type KeyStatus string

const (
	KeyActive   KeyStatus = "Active"
	KeyInactive KeyStatus = "Inactive"
)

// AccessKey is a long-lived credential bound to a user. The secret is
// opaque to this package; generation and verification belong to the
// authentication layer.
type AccessKey struct {
	ID        id.AccessKeyID `json:"id" db:"id"`
	TenantID  string         `json:"tenant_id" db:"tenant_id"`
	UserName  string         `json:"user_name" db:"user_name"`
	Secret    string         `json:"-" db:"secret"`
	Status    KeyStatus      `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	LastUsed  *time.Time     `json:"last_used,omitempty" db:"last_used"`
}

// ListFilter contains filters for listing users.
type ListFilter struct {
	TenantID   string `json:"tenant_id,omitempty"`
	PathPrefix string `json:"path_prefix,omitempty"`
	Search     string `json:"search,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}
