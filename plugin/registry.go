package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeAuthorizeEntry struct {
	name string
	hook BeforeAuthorize
}
type afterAuthorizeEntry struct {
	name string
	hook AfterAuthorize
}
type userCreatedEntry struct {
	name string
	hook UserCreated
}
type userDeletedEntry struct {
	name string
	hook UserDeleted
}
type accessKeyCreatedEntry struct {
	name string
	hook AccessKeyCreated
}
type accessKeyDeletedEntry struct {
	name string
	hook AccessKeyDeleted
}
type policyCreatedEntry struct {
	name string
	hook PolicyCreated
}
type policyUpdatedEntry struct {
	name string
	hook PolicyUpdated
}
type policyDeletedEntry struct {
	name string
	hook PolicyDeleted
}
type policyAttachedEntry struct {
	name string
	hook PolicyAttached
}
type policyDetachedEntry struct {
	name string
	hook PolicyDetached
}
type tenantCreatedEntry struct {
	name string
	hook TenantCreated
}
type tenantUpdatedEntry struct {
	name string
	hook TenantUpdated
}
type tenantDeletedEntry struct {
	name string
	hook TenantDeleted
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeAuthorize  []beforeAuthorizeEntry
	afterAuthorize   []afterAuthorizeEntry
	userCreated      []userCreatedEntry
	userDeleted      []userDeletedEntry
	accessKeyCreated []accessKeyCreatedEntry
	accessKeyDeleted []accessKeyDeletedEntry
	policyCreated    []policyCreatedEntry
	policyUpdated    []policyUpdatedEntry
	policyDeleted    []policyDeletedEntry
	policyAttached   []policyAttachedEntry
	policyDetached   []policyDetachedEntry
	tenantCreated    []tenantCreatedEntry
	tenantUpdated    []tenantUpdatedEntry
	tenantDeleted    []tenantDeletedEntry
	shutdown         []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeAuthorize); ok {
		r.beforeAuthorize = append(r.beforeAuthorize, beforeAuthorizeEntry{name, h})
	}
	if h, ok := p.(AfterAuthorize); ok {
		r.afterAuthorize = append(r.afterAuthorize, afterAuthorizeEntry{name, h})
	}
	if h, ok := p.(UserCreated); ok {
		r.userCreated = append(r.userCreated, userCreatedEntry{name, h})
	}
	if h, ok := p.(UserDeleted); ok {
		r.userDeleted = append(r.userDeleted, userDeletedEntry{name, h})
	}
	if h, ok := p.(AccessKeyCreated); ok {
		r.accessKeyCreated = append(r.accessKeyCreated, accessKeyCreatedEntry{name, h})
	}
	if h, ok := p.(AccessKeyDeleted); ok {
		r.accessKeyDeleted = append(r.accessKeyDeleted, accessKeyDeletedEntry{name, h})
	}
	if h, ok := p.(PolicyCreated); ok {
		r.policyCreated = append(r.policyCreated, policyCreatedEntry{name, h})
	}
	if h, ok := p.(PolicyUpdated); ok {
		r.policyUpdated = append(r.policyUpdated, policyUpdatedEntry{name, h})
	}
	if h, ok := p.(PolicyDeleted); ok {
		r.policyDeleted = append(r.policyDeleted, policyDeletedEntry{name, h})
	}
	if h, ok := p.(PolicyAttached); ok {
		r.policyAttached = append(r.policyAttached, policyAttachedEntry{name, h})
	}
	if h, ok := p.(PolicyDetached); ok {
		r.policyDetached = append(r.policyDetached, policyDetachedEntry{name, h})
	}
	if h, ok := p.(TenantCreated); ok {
		r.tenantCreated = append(r.tenantCreated, tenantCreatedEntry{name, h})
	}
	if h, ok := p.(TenantUpdated); ok {
		r.tenantUpdated = append(r.tenantUpdated, tenantUpdatedEntry{name, h})
	}
	if h, ok := p.(TenantDeleted); ok {
		r.tenantDeleted = append(r.tenantDeleted, tenantDeletedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Authorization event emitters
// ──────────────────────────────────────────────────

// EmitBeforeAuthorize notifies all plugins that implement BeforeAuthorize.
func (r *Registry) EmitBeforeAuthorize(ctx context.Context, wctx any, action, resource string) {
	for _, e := range r.beforeAuthorize {
		if err := e.hook.OnBeforeAuthorize(ctx, wctx, action, resource); err != nil {
			r.logHookError("OnBeforeAuthorize", e.name, err)
		}
	}
}

// EmitAfterAuthorize notifies all plugins that implement AfterAuthorize.
func (r *Registry) EmitAfterAuthorize(ctx context.Context, wctx any, action, resource string, result any) {
	for _, e := range r.afterAuthorize {
		if err := e.hook.OnAfterAuthorize(ctx, wctx, action, resource, result); err != nil {
			r.logHookError("OnAfterAuthorize", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// User event emitters
// ──────────────────────────────────────────────────

// EmitUserCreated notifies all plugins that implement UserCreated.
func (r *Registry) EmitUserCreated(ctx context.Context, u *user.User) {
	for _, e := range r.userCreated {
		if err := e.hook.OnUserCreated(ctx, u); err != nil {
			r.logHookError("OnUserCreated", e.name, err)
		}
	}
}

// EmitUserDeleted notifies all plugins that implement UserDeleted.
func (r *Registry) EmitUserDeleted(ctx context.Context, userID id.UserID) {
	for _, e := range r.userDeleted {
		if err := e.hook.OnUserDeleted(ctx, userID); err != nil {
			r.logHookError("OnUserDeleted", e.name, err)
		}
	}
}

// EmitAccessKeyCreated notifies all plugins that implement AccessKeyCreated.
func (r *Registry) EmitAccessKeyCreated(ctx context.Context, k *user.AccessKey) {
	for _, e := range r.accessKeyCreated {
		if err := e.hook.OnAccessKeyCreated(ctx, k); err != nil {
			r.logHookError("OnAccessKeyCreated", e.name, err)
		}
	}
}

// EmitAccessKeyDeleted notifies all plugins that implement AccessKeyDeleted.
func (r *Registry) EmitAccessKeyDeleted(ctx context.Context, keyID id.AccessKeyID) {
	for _, e := range r.accessKeyDeleted {
		if err := e.hook.OnAccessKeyDeleted(ctx, keyID); err != nil {
			r.logHookError("OnAccessKeyDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Policy event emitters
// ──────────────────────────────────────────────────

// EmitPolicyCreated notifies all plugins that implement PolicyCreated.
func (r *Registry) EmitPolicyCreated(ctx context.Context, p *policy.Policy) {
	for _, e := range r.policyCreated {
		if err := e.hook.OnPolicyCreated(ctx, p); err != nil {
			r.logHookError("OnPolicyCreated", e.name, err)
		}
	}
}

// EmitPolicyUpdated notifies all plugins that implement PolicyUpdated.
func (r *Registry) EmitPolicyUpdated(ctx context.Context, p *policy.Policy) {
	for _, e := range r.policyUpdated {
		if err := e.hook.OnPolicyUpdated(ctx, p); err != nil {
			r.logHookError("OnPolicyUpdated", e.name, err)
		}
	}
}

// EmitPolicyDeleted notifies all plugins that implement PolicyDeleted.
func (r *Registry) EmitPolicyDeleted(ctx context.Context, policyID id.PolicyID) {
	for _, e := range r.policyDeleted {
		if err := e.hook.OnPolicyDeleted(ctx, policyID); err != nil {
			r.logHookError("OnPolicyDeleted", e.name, err)
		}
	}
}

// EmitPolicyAttached notifies all plugins that implement PolicyAttached.
func (r *Registry) EmitPolicyAttached(ctx context.Context, tenantID, userName, policyARN string) {
	for _, e := range r.policyAttached {
		if err := e.hook.OnPolicyAttached(ctx, tenantID, userName, policyARN); err != nil {
			r.logHookError("OnPolicyAttached", e.name, err)
		}
	}
}

// EmitPolicyDetached notifies all plugins that implement PolicyDetached.
func (r *Registry) EmitPolicyDetached(ctx context.Context, tenantID, userName, policyARN string) {
	for _, e := range r.policyDetached {
		if err := e.hook.OnPolicyDetached(ctx, tenantID, userName, policyARN); err != nil {
			r.logHookError("OnPolicyDetached", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Tenant event emitters
// ──────────────────────────────────────────────────

// EmitTenantCreated notifies all plugins that implement TenantCreated.
func (r *Registry) EmitTenantCreated(ctx context.Context, t *tenant.Tenant) {
	for _, e := range r.tenantCreated {
		if err := e.hook.OnTenantCreated(ctx, t); err != nil {
			r.logHookError("OnTenantCreated", e.name, err)
		}
	}
}

// EmitTenantUpdated notifies all plugins that implement TenantUpdated.
func (r *Registry) EmitTenantUpdated(ctx context.Context, t *tenant.Tenant) {
	for _, e := range r.tenantUpdated {
		if err := e.hook.OnTenantUpdated(ctx, t); err != nil {
			r.logHookError("OnTenantUpdated", e.name, err)
		}
	}
}

// EmitTenantDeleted notifies all plugins that implement TenantDeleted.
func (r *Registry) EmitTenantDeleted(ctx context.Context, tenantID tenant.ID) {
	for _, e := range r.tenantDeleted {
		if err := e.hook.OnTenantDeleted(ctx, tenantID); err != nil {
			r.logHookError("OnTenantDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
