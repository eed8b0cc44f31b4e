package tenant

import "context"

// Store defines persistence operations for tenants.
type Store interface {
	// CreateTenant persists a new tenant.
	CreateTenant(ctx context.Context, t *Tenant) error

	// GetTenant retrieves a tenant by ID.
	GetTenant(ctx context.Context, tenantID ID) (*Tenant, error)

	// UpdateTenant persists changes to a tenant.
	UpdateTenant(ctx context.Context, t *Tenant) error

	// DeleteTenant removes a tenant by ID.
	DeleteTenant(ctx context.Context, tenantID ID) error

	// ListTenants returns tenants matching the filter.
	ListTenants(ctx context.Context, filter *ListFilter) ([]*Tenant, error)

	// CountTenants returns the number of tenants matching the filter.
	CountTenants(ctx context.Context, filter *ListFilter) (int64, error)

	// ListChildTenants returns direct children of a parent tenant.
	ListChildTenants(ctx context.Context, parentID ID) ([]*Tenant, error)
}
