// Package tenant defines the hierarchical tenant model: slash-delimited
// tenant identifiers with ancestor/descendant queries, depth limits, and
// quota inheritance along the parent chain.
package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ID is a hierarchical tenant identifier wrapping a "/"-joined path string,
// e.g. "12345678/87654321". The first segment is the root tenant.
type ID string

// ParseID validates s as a tenant identifier.
func ParseID(s string) (ID, error) {
	if _, err := ParsePath(s); err != nil {
		return "", err
	}
	return ID(s), nil
}

// String returns the raw path string.
func (t ID) String() string { return string(t) }

// Segments returns the path segments of this identifier.
func (t ID) Segments() []string { return strings.Split(string(t), "/") }

// Path returns the identifier as a Path.
func (t ID) Path() Path { return Path(t.Segments()) }

// Depth returns the hierarchy depth: 0 for a root tenant, 1 for its
// direct children, and so on.
func (t ID) Depth() int { return len(t.Segments()) - 1 }

// IsRoot reports whether this identifier names a root tenant.
func (t ID) IsRoot() bool { return !strings.Contains(string(t), "/") }

// Child returns the identifier of a direct child with the given segment.
func (t ID) Child(name string) ID { return ID(string(t) + "/" + name) }

// Parent returns the parent identifier. ok is false for a root tenant.
func (t ID) Parent() (parent ID, ok bool) {
	idx := strings.LastIndex(string(t), "/")
	if idx < 0 {
		return "", false
	}
	return ID(t[:idx]), true
}

// Ancestors returns every strict prefix of this identifier, ordered from
// the root down to the immediate parent. A root tenant has no ancestors.
func (t ID) Ancestors() []ID {
	segs := t.Segments()
	if len(segs) <= 1 {
		return nil
	}
	ancestors := make([]ID, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		ancestors = append(ancestors, ID(strings.Join(segs[:i], "/")))
	}
	return ancestors
}

// IsDescendantOf reports whether other is a strict ancestor of this
// identifier. A tenant is not a descendant of itself.
func (t ID) IsDescendantOf(other ID) bool {
	if t == other {
		return false
	}
	return t.Path().StartsWith(other.Path())
}

// IsValidDepth reports whether the identifier's depth does not exceed max.
func (t ID) IsValidDepth(max int) bool { return t.Depth() <= max }

// QuotaMode controls how a tenant's quotas are resolved.
type QuotaMode string

const (
	// QuotaInherited resolves quotas from the nearest overriding ancestor.
	QuotaInherited QuotaMode = "inherited"

	// QuotaOverride makes the tenant's own quotas authoritative.
	QuotaOverride QuotaMode = "override"
)

// Status is the lifecycle state of a tenant.
type Status string

const (
	// StatusActive means the tenant is operational.
	StatusActive Status = "active"

	// StatusSuspended means the tenant is disabled; no new sub-tenants
	// may be created beneath it.
	StatusSuspended Status = "suspended"
)

// Quotas caps the IAM resources a tenant may hold.
type Quotas struct {
	MaxUsers             int `json:"max_users" db:"max_users"`
	MaxPolicies          int `json:"max_policies" db:"max_policies"`
	MaxAccessKeysPerUser int `json:"max_access_keys_per_user" db:"max_access_keys_per_user"`
	MaxSubTenants        int `json:"max_sub_tenants" db:"max_sub_tenants"`
}

// Tenant is one node of the tenant hierarchy.
type Tenant struct {
	ID                  ID             `json:"id" db:"id"`
	Name                string         `json:"name" db:"name"`
	ParentID            *ID            `json:"parent_id,omitempty" db:"parent_id"`
	Quotas              Quotas         `json:"quotas" db:"quotas"`
	QuotaMode           QuotaMode      `json:"quota_mode" db:"quota_mode"`
	MaxChildDepth       int            `json:"max_child_depth" db:"max_child_depth"`
	CanCreateSubTenants bool           `json:"can_create_sub_tenants" db:"can_create_sub_tenants"`
	AdminPrincipals     []string       `json:"admin_principals,omitempty" db:"admin_principals"`
	Status              Status         `json:"status" db:"status"`
	Metadata            map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// CanCreateChild reports whether a sub-tenant may be created beneath this
// tenant: the flag must be set and the tenant must be active.
func (t *Tenant) CanCreateChild() bool {
	return t.CanCreateSubTenants && t.Status == StatusActive
}

// ResolveQuotas resolves the effective quotas for the tenant with the
// given ID. A tenant in override mode returns its own quotas; otherwise
// resolution walks parent links until an overriding tenant or the root is
// found. A root tenant always resolves to its own quotas regardless of
// mode. A dangling parent reference surfaces as the store's not-found
// error.
func ResolveQuotas(ctx context.Context, s Store, tenantID ID) (Quotas, error) {
	t, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return Quotas{}, fmt.Errorf("resolve quotas for %s: %w", tenantID, err)
	}

	for {
		if t.QuotaMode == QuotaOverride || t.ParentID == nil {
			return t.Quotas, nil
		}
		parent, err := s.GetTenant(ctx, *t.ParentID)
		if err != nil {
			return Quotas{}, fmt.Errorf("resolve quotas for %s: parent %s: %w", tenantID, *t.ParentID, err)
		}
		t = parent
	}
}

// ListFilter contains filters for listing tenants.
type ListFilter struct {
	ParentID *ID    `json:"parent_id,omitempty"`
	Status   Status `json:"status,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
