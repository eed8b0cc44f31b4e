// Package middleware provides HTTP authorization middleware for WAMI.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/wami"
	"github.com/xraph/wami/arn"
)

// ResourceFunc builds the target resource ARN from the request.
type ResourceFunc func(ctx forge.Context) (arn.ARN, error)

// StaticResource returns a ResourceFunc for a fixed resource ARN.
func StaticResource(resource arn.ARN) ResourceFunc {
	return func(forge.Context) (arn.ARN, error) { return resource, nil }
}

// Check pairs an action with the resource it targets.
type Check struct {
	Action   string
	Resource ResourceFunc
}

// Require enforces authorization. It resolves the authenticated caller
// context from the request context and checks whether the caller can
// perform the action on the resource.
func Require(auth *wami.Authorizer, action string, resource ResourceFunc) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			wctx, ok := wami.FromContext(ctx.Context())
			if !ok {
				return unauthorizedResponse(ctx)
			}
			target, err := resource(ctx)
			if err != nil {
				return denyResponse(ctx)
			}

			if err := auth.Enforce(ctx.Context(), wctx, action, target); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the checks pass.
func RequireAny(auth *wami.Authorizer, checks ...Check) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			wctx, ok := wami.FromContext(ctx.Context())
			if !ok {
				return unauthorizedResponse(ctx)
			}
			for _, c := range checks {
				target, err := c.Resource(ctx)
				if err != nil {
					continue
				}
				result, err := auth.Authorize(ctx.Context(), wctx, c.Action, target)
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL checks pass.
func RequireAll(auth *wami.Authorizer, checks ...Check) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			wctx, ok := wami.FromContext(ctx.Context())
			if !ok {
				return unauthorizedResponse(ctx)
			}
			for _, c := range checks {
				target, err := c.Resource(ctx)
				if err != nil {
					return denyResponse(ctx)
				}
				if err := auth.Enforce(ctx.Context(), wctx, c.Action, target); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

func unauthorizedResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(401)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "authentication required"})
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
