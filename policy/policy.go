package policy

import (
	"time"

	"github.com/xraph/wami/id"
)

// Policy is a managed policy: a named, attachable policy document owned
// by a tenant. Inline policies are stored directly against a user and
// have no Policy record.
type Policy struct {
	ID              id.PolicyID    `json:"id" db:"id"`
	TenantID        string         `json:"tenant_id" db:"tenant_id"`
	Name            string         `json:"name" db:"name"`
	Path            string         `json:"path" db:"path"`
	ARN             string         `json:"arn" db:"arn"`
	Description     string         `json:"description,omitempty" db:"description"`
	Document        string         `json:"document" db:"document"`
	IsAttachable    bool           `json:"is_attachable" db:"is_attachable"`
	AttachmentCount int            `json:"attachment_count" db:"attachment_count"`
	Metadata        map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing policies.
type ListFilter struct {
	TenantID     string `json:"tenant_id,omitempty"`
	PathPrefix   string `json:"path_prefix,omitempty"`
	OnlyAttached bool   `json:"only_attached,omitempty"`
	Search       string `json:"search,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}
