package wami

import "context"

// Cache provides caching for authorization decisions. Keys are the
// (tenant, caller, action, resource) tuple.
type Cache interface {
	// Get returns a cached decision, if available.
	Get(ctx context.Context, tenantID, caller, action, resource string) (*Result, bool)

	// Set stores a decision in the cache.
	Set(ctx context.Context, tenantID, caller, action, resource string, result *Result)

	// InvalidateTenant removes all cached decisions for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateCaller removes all cached decisions for one caller.
	InvalidateCaller(ctx context.Context, tenantID, caller string)
}
