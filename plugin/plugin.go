// Package plugin defines the plugin system for WAMI.
// Plugins are notified of lifecycle events (authorization decided, user
// created, policy updated, etc.) and can react — logging, metrics,
// tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Authorization lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeAuthorize is called before an authorization check is evaluated.
// The wctx parameter is *wami.Context (passed as any to avoid import cycle).
type BeforeAuthorize interface {
	OnBeforeAuthorize(ctx context.Context, wctx any, action, resource string) error
}

// AfterAuthorize is called after an authorization check completes.
// The wctx parameter is *wami.Context; result is *wami.Result.
type AfterAuthorize interface {
	OnAfterAuthorize(ctx context.Context, wctx any, action, resource string, result any) error
}

// ──────────────────────────────────────────────────
// User lifecycle hooks
// ──────────────────────────────────────────────────

// UserCreated is called after a user is created.
type UserCreated interface {
	OnUserCreated(ctx context.Context, u *user.User) error
}

// UserDeleted is called after a user is deleted.
type UserDeleted interface {
	OnUserDeleted(ctx context.Context, userID id.UserID) error
}

// AccessKeyCreated is called after an access key is created.
type AccessKeyCreated interface {
	OnAccessKeyCreated(ctx context.Context, k *user.AccessKey) error
}

// AccessKeyDeleted is called after an access key is deleted.
type AccessKeyDeleted interface {
	OnAccessKeyDeleted(ctx context.Context, keyID id.AccessKeyID) error
}

// ──────────────────────────────────────────────────
// Policy lifecycle hooks
// ──────────────────────────────────────────────────

// PolicyCreated is called after a managed policy is created.
type PolicyCreated interface {
	OnPolicyCreated(ctx context.Context, p *policy.Policy) error
}

// PolicyUpdated is called after a managed policy is updated.
type PolicyUpdated interface {
	OnPolicyUpdated(ctx context.Context, p *policy.Policy) error
}

// PolicyDeleted is called after a managed policy is deleted.
type PolicyDeleted interface {
	OnPolicyDeleted(ctx context.Context, policyID id.PolicyID) error
}

// PolicyAttached is called after a managed policy is attached to a user.
type PolicyAttached interface {
	OnPolicyAttached(ctx context.Context, tenantID, userName, policyARN string) error
}

// PolicyDetached is called after a managed policy is detached from a user.
type PolicyDetached interface {
	OnPolicyDetached(ctx context.Context, tenantID, userName, policyARN string) error
}

// ──────────────────────────────────────────────────
// Tenant lifecycle hooks
// ──────────────────────────────────────────────────

// TenantCreated is called after a tenant is created.
type TenantCreated interface {
	OnTenantCreated(ctx context.Context, t *tenant.Tenant) error
}

// TenantUpdated is called after a tenant is updated.
type TenantUpdated interface {
	OnTenantUpdated(ctx context.Context, t *tenant.Tenant) error
}

// TenantDeleted is called after a tenant is deleted.
type TenantDeleted interface {
	OnTenantDeleted(ctx context.Context, tenantID tenant.ID) error
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Shutdown is called when the authorizer is shutting down.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
