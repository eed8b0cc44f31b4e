// Package wami provides a multicloud IAM core for Go: structured
// resource identifiers (ARNs) with per-provider codecs, IAM-style
// policy evaluation, and an authorization service over a pluggable
// store.
//
//	authz, err := wami.New(
//	    wami.WithStore(memStore),
//	)
//	wctx, err := wami.NewContextBuilder().
//	    TenantPath("12345678").
//	    InstanceID("999888777").
//	    CallerARN(callerARN).
//	    Build()
//	result, err := authz.Authorize(ctx, wctx, "iam:GetUser", resourceARN)
package wami

import "github.com/xraph/wami/policy"

// Decision is the authorization outcome.
type Decision string

const (
	// DecisionAllow means a policy statement granted the request.
	DecisionAllow Decision = "allow"

	// DecisionAllowRoot means root credentials bypassed evaluation.
	DecisionAllowRoot Decision = "allow_root"

	// DecisionDenyExplicit means an explicit Deny statement matched.
	DecisionDenyExplicit Decision = "deny_explicit"

	// DecisionDenyDefault means no statement granted the request.
	DecisionDenyDefault Decision = "deny_default"
)

// Result is the outcome of an authorization check.
type Result struct {
	Allowed    bool             `json:"allowed"`
	Decision   Decision         `json:"decision"`
	Reason     string           `json:"reason,omitempty"`
	Matched    []StatementMatch `json:"matched,omitempty"`
	EvalTimeNs int64            `json:"eval_time_ns"`
}

// StatementMatch identifies the statement patterns that matched during
// evaluation.
type StatementMatch struct {
	Effect          policy.Effect `json:"effect"`
	MatchedAction   string        `json:"matched_action"`
	MatchedResource string        `json:"matched_resource"`
}
