package wami

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/plugin"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/store"
)

// Authorizer is the central authorization service. It holds no mutable
// state; every call is independent and safe to run concurrently. All
// I/O is read-only policy fetches from the store, plus optional
// decision-log writes.
type Authorizer struct {
	store     store.Store
	evaluator Evaluator
	cache     Cache
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config

	// pendingPlugins holds WithPlugin registrations until New has applied
	// every option; only then is the registry built, with the final logger.
	pendingPlugins []plugin.Plugin
}

// New creates a new Authorizer with the given options.
func New(opts ...Option) (*Authorizer, error) {
	a := &Authorizer{
		evaluator: DefaultEvaluator(),
		logger:    slog.Default(),
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		return nil, errors.New("wami: store is required")
	}
	if len(a.pendingPlugins) > 0 {
		a.plugins = plugin.NewRegistry(a.logger)
		for _, p := range a.pendingPlugins {
			a.plugins.Register(p)
		}
		a.pendingPlugins = nil
	}
	return a, nil
}

// Store returns the underlying composite store.
func (a *Authorizer) Store() store.Store { return a.store }

// Plugins returns the plugin registry (may be nil).
func (a *Authorizer) Plugins() *plugin.Registry { return a.plugins }

// Start begins background services.
func (a *Authorizer) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown, notifying registered plugins.
func (a *Authorizer) Stop(ctx context.Context) error {
	if a.plugins != nil {
		a.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Authorize decides whether the caller may perform action on resource.
// This is the hot path. Root callers bypass evaluation. For everyone
// else the caller's managed policies are evaluated in attachment order,
// then inline policies: the first explicit Deny denies immediately
// without inspecting further policies, the first Allow (with no Deny
// seen) allows, and no match at all is an implicit deny. A store
// failure propagates as an error, never as an allow.
func (a *Authorizer) Authorize(ctx context.Context, wctx *Context, action string, resource arn.ARN) (*Result, error) {
	start := time.Now()

	// 1. Root bypass: no policy lookup at all.
	if wctx.IsRoot() {
		result := &Result{
			Allowed:    true,
			Decision:   DecisionAllowRoot,
			Reason:     "root credentials bypass policy evaluation",
			EvalTimeNs: time.Since(start).Nanoseconds(),
		}
		a.finish(ctx, wctx, action, resource.String(), result, false)
		return result, nil
	}

	// 2. Only user principals can be resolved as callers.
	caller := wctx.CallerARN()
	if caller.Resource.Type != "user" {
		return nil, fmt.Errorf("%w: caller ARN resource type %q is not a user principal",
			ErrInvalidParameter, caller.Resource.Type)
	}
	principal := caller.Resource.ID
	tenantID := wctx.TenantID()
	resourceStr := resource.String()

	// 3. Cache hit?
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, tenantID, principal, action, resourceStr); ok {
			cached.EvalTimeNs = time.Since(start).Nanoseconds()
			return cached, nil
		}
	}

	if a.plugins != nil {
		a.plugins.EmitBeforeAuthorize(ctx, wctx, action, resourceStr)
	}

	// 4. Managed policies, in attachment order.
	result, done, err := a.evaluateManaged(ctx, tenantID, principal, action, resourceStr)
	if err != nil {
		return nil, fmt.Errorf("wami authorize: %w", err)
	}

	// 5. Inline policies.
	if !done {
		result, done, err = a.evaluateInline(ctx, tenantID, principal, action, resourceStr)
		if err != nil {
			return nil, fmt.Errorf("wami authorize: %w", err)
		}
	}

	// 6. Implicit deny.
	if !done {
		result = &Result{Decision: DecisionDenyDefault, Reason: "no policy grants the request"}
	}
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	a.finish(ctx, wctx, action, resourceStr, result, true)
	return result, nil
}

func (a *Authorizer) evaluateManaged(ctx context.Context, tenantID, principal, action, resource string) (*Result, bool, error) {
	arns, err := a.store.ListAttachedUserPolicies(ctx, tenantID, principal)
	if err != nil {
		return nil, false, fmt.Errorf("list attached policies for %s: %w", principal, err)
	}
	for _, policyARN := range arns {
		pol, err := a.store.GetPolicyByARN(ctx, policyARN)
		if err != nil {
			return nil, false, fmt.Errorf("fetch policy %s: %w", policyARN, err)
		}
		result, done, err := a.evaluateOne(ctx, policyARN, pol.Document, action, resource)
		if err != nil || done {
			return result, done, err
		}
	}
	return nil, false, nil
}

func (a *Authorizer) evaluateInline(ctx context.Context, tenantID, principal, action, resource string) (*Result, bool, error) {
	names, err := a.store.ListUserPolicies(ctx, tenantID, principal)
	if err != nil {
		return nil, false, fmt.Errorf("list inline policies for %s: %w", principal, err)
	}
	for _, name := range names {
		raw, err := a.store.GetUserPolicy(ctx, tenantID, principal, name)
		if err != nil {
			return nil, false, fmt.Errorf("fetch inline policy %s: %w", name, err)
		}
		result, done, err := a.evaluateOne(ctx, name, raw, action, resource)
		if err != nil || done {
			return result, done, err
		}
	}
	return nil, false, nil
}

// evaluateOne parses and evaluates a single stored policy document.
// done reports a definitive decision; a NoMatch continues to the next
// policy. A malformed document is skipped when tolerated by config,
// otherwise surfaced as ErrInvalidParameter.
func (a *Authorizer) evaluateOne(ctx context.Context, name, raw, action, resource string) (*Result, bool, error) {
	doc, err := policy.ParseDocument([]byte(raw))
	if err != nil {
		if a.config.tolerateMalformed() {
			a.logger.Warn("skipping malformed policy document",
				slog.String("policy", name),
				slog.String("error", err.Error()))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: policy %s: %w", ErrInvalidParameter, name, err)
	}

	verdict, matched := a.evaluator.Evaluate(ctx, doc, action, resource)
	switch verdict {
	case VerdictDeny:
		return &Result{
			Decision: DecisionDenyExplicit,
			Reason:   "explicitly denied by policy " + name,
			Matched:  matched,
		}, true, nil
	case VerdictAllow:
		return &Result{
			Allowed:  true,
			Decision: DecisionAllow,
			Matched:  matched,
		}, true, nil
	default:
		return nil, false, nil
	}
}

// finish handles post-decision bookkeeping: cache, decision log, and
// plugin hooks. Failures here are logged, never surfaced; the decision
// itself already stands.
func (a *Authorizer) finish(ctx context.Context, wctx *Context, action, resource string, result *Result, cacheable bool) {
	tenantID := wctx.TenantID()
	caller := wctx.CallerARN().String()

	if cacheable && a.cache != nil {
		a.cache.Set(ctx, tenantID, wctx.CallerARN().Resource.ID, action, resource, result)
	}

	if a.config.decisionLogEnabled() {
		entry := &decisionlog.Entry{
			ID:         id.NewDecisionLogID(),
			TenantID:   tenantID,
			Caller:     caller,
			Action:     action,
			Resource:   resource,
			Decision:   string(result.Decision),
			Reason:     result.Reason,
			EvalTimeNs: result.EvalTimeNs,
			CreatedAt:  time.Now(),
		}
		if err := a.store.CreateDecisionLog(ctx, entry); err != nil {
			a.logger.Error("failed to record decision log",
				slog.String("caller", caller),
				slog.String("error", err.Error()))
		}
	}

	if a.plugins != nil {
		a.plugins.EmitAfterAuthorize(ctx, wctx, action, resource, result)
	}
}

// Enforce runs Authorize and returns ErrAccessDenied naming the caller,
// action, and resource when the decision is a deny.
func (a *Authorizer) Enforce(ctx context.Context, wctx *Context, action string, resource arn.ARN) error {
	result, err := a.Authorize(ctx, wctx, action, resource)
	if err != nil {
		return fmt.Errorf("wami authorize: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: caller %s may not perform %s on %s",
			ErrAccessDenied, wctx.CallerARN().String(), action, resource.String())
	}
	return nil
}

// Can is a boolean shorthand over Authorize.
func (a *Authorizer) Can(ctx context.Context, wctx *Context, action string, resource arn.ARN) (bool, error) {
	result, err := a.Authorize(ctx, wctx, action, resource)
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// Simulate evaluates ad-hoc policy documents without touching the
// store. See the package-level Simulate.
func (a *Authorizer) Simulate(ctx context.Context, input *SimulationInput) ([]SimulationResult, error) {
	return Simulate(ctx, a.evaluator, input)
}
