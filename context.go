package wami

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/forge"
	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/tenant"
)

// Session carries temporary-credential state for an authenticated
// caller. Expiration is a unix timestamp in seconds; zero means the
// session never expires.
type Session struct {
	Token          string   `json:"token"`
	Expiration     int64    `json:"expiration,omitempty"`
	AssumedRoleARN *arn.ARN `json:"assumed_role_arn,omitempty"`
}

// Context is the immutable identity of an authenticated caller: who is
// calling, from which tenant, against which instance. Build one via
// NewContextBuilder during authentication; never fabricate one
// elsewhere. All fields are fixed at build time.
type Context struct {
	tenantPath tenant.Path
	instanceID string
	callerARN  arn.ARN
	isRoot     bool
	region     string
	session    *Session
}

// TenantPath returns a copy of the caller's tenant path.
func (c *Context) TenantPath() tenant.Path {
	p := make(tenant.Path, len(c.tenantPath))
	copy(p, c.tenantPath)
	return p
}

// TenantID returns the caller's tenant path in its string form.
func (c *Context) TenantID() string { return c.tenantPath.String() }

// InstanceID returns the WAMI instance the caller authenticated against.
func (c *Context) InstanceID() string { return c.instanceID }

// CallerARN returns the authenticated caller's ARN.
func (c *Context) CallerARN() arn.ARN { return c.callerARN }

// IsRoot reports whether the caller holds root credentials.
func (c *Context) IsRoot() bool { return c.isRoot }

// Region returns the caller's region, if any.
func (c *Context) Region() string { return c.region }

// Session returns a copy of the caller's session, or nil for long-lived
// credentials.
func (c *Context) Session() *Session {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// IsExpired reports whether the session has lapsed as of now.
func (c *Context) IsExpired() bool { return c.IsExpiredAt(time.Now()) }

// IsExpiredAt reports whether the session has lapsed as of t. Contexts
// without a session, or with a zero expiration, never expire.
func (c *Context) IsExpiredAt(t time.Time) bool {
	if c.session == nil || c.session.Expiration == 0 {
		return false
	}
	return t.Unix() >= c.session.Expiration
}

// CanAccessTenant reports whether the caller may act on the target
// tenant. Root reaches everything; other callers reach only their own
// tenant and its descendants.
func (c *Context) CanAccessTenant(target tenant.Path) bool {
	return c.isRoot || target.StartsWith(c.tenantPath)
}

// ContextBuilder assembles an authenticated Context.
type ContextBuilder struct {
	ctx Context
	err error
}

// NewContextBuilder returns an empty builder.
func NewContextBuilder() *ContextBuilder { return &ContextBuilder{} }

// TenantPath sets the caller's tenant from slash-free segments.
func (b *ContextBuilder) TenantPath(segments ...string) *ContextBuilder {
	b.ctx.tenantPath = tenant.Path(append([]string(nil), segments...))
	return b
}

// TenantID sets the caller's tenant from its slash-delimited string form.
// A malformed tenant id is reported by Build.
func (b *ContextBuilder) TenantID(tenantID string) *ContextBuilder {
	p, err := tenant.ParsePath(tenantID)
	if err != nil {
		b.err = fmt.Errorf("wami: tenant id %q: %w", tenantID, err)
		return b
	}
	b.ctx.tenantPath = p
	return b
}

// InstanceID sets the WAMI instance identifier.
func (b *ContextBuilder) InstanceID(instanceID string) *ContextBuilder {
	b.ctx.instanceID = instanceID
	return b
}

// CallerARN sets the authenticated caller's ARN.
func (b *ContextBuilder) CallerARN(a arn.ARN) *ContextBuilder {
	b.ctx.callerARN = a
	return b
}

// Root marks the context as carrying root credentials.
func (b *ContextBuilder) Root(isRoot bool) *ContextBuilder {
	b.ctx.isRoot = isRoot
	return b
}

// Region sets the caller's region.
func (b *ContextBuilder) Region(region string) *ContextBuilder {
	b.ctx.region = region
	return b
}

// Session attaches temporary-credential state.
func (b *ContextBuilder) Session(s *Session) *ContextBuilder {
	if s != nil {
		copied := *s
		b.ctx.session = &copied
	} else {
		b.ctx.session = nil
	}
	return b
}

// Build validates and returns the context. Tenant path, instance id,
// and caller ARN are required.
func (b *ContextBuilder) Build() (*Context, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.ctx.tenantPath) == 0 {
		return nil, errors.New("wami: context requires a tenant path")
	}
	if b.ctx.instanceID == "" {
		return nil, errors.New("wami: context requires an instance id")
	}
	if b.ctx.callerARN.Resource.Type == "" {
		return nil, errors.New("wami: context requires a caller ARN")
	}
	c := b.ctx
	c.tenantPath = append(tenant.Path(nil), b.ctx.tenantPath...)
	if b.ctx.session != nil {
		s := *b.ctx.session
		c.session = &s
	}
	return &c, nil
}

type contextKey int

const (
	ctxKeyCaller contextKey = iota
	ctxKeyTenantID
)

// WithContext returns a context.Context carrying the authenticated
// caller identity.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKeyCaller, c)
}

// FromContext extracts the authenticated caller identity, if present.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKeyCaller).(*Context)
	return c, ok
}

// WithTenant returns a context scoped to the given tenant ID. Use this
// for standalone mode (without Forge).
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKeyTenantID, tenantID)
}

// TenantFromContext resolves the tenant scope for CRUD operations:
// forge.Scope when running under Forge, the standalone value otherwise.
func TenantFromContext(ctx context.Context) string {
	if s, ok := forge.ScopeFrom(ctx); ok {
		return s.OrgID()
	}
	v, _ := ctx.Value(ctxKeyTenantID).(string)
	return v
}
