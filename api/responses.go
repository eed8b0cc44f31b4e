package api

import (
	"time"

	"github.com/xraph/wami"
	"github.com/xraph/wami/arn"
)

// AuthorizeResponse is the response for an authorization check.
type AuthorizeResponse struct {
	Allowed    bool        `json:"allowed" description:"Whether the request is allowed"`
	Decision   string      `json:"decision" description:"Decision code"`
	Reason     string      `json:"reason,omitempty" description:"Human-readable reason"`
	Matched    []MatchInfo `json:"matched,omitempty" description:"Matched statement patterns"`
	EvalTimeNs int64       `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// MatchInfo identifies a matched policy statement pattern.
type MatchInfo struct {
	Effect          string `json:"effect" description:"Statement effect (Allow or Deny)"`
	MatchedAction   string `json:"matched_action" description:"Action pattern that matched"`
	MatchedResource string `json:"matched_resource" description:"Resource pattern that matched"`
}

func toAuthorizeResponse(r *wami.Result) *AuthorizeResponse {
	resp := &AuthorizeResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Reason:     r.Reason,
		EvalTimeNs: r.EvalTimeNs,
	}
	for _, m := range r.Matched {
		resp.Matched = append(resp.Matched, toMatchInfo(m))
	}
	return resp
}

func toMatchInfo(m wami.StatementMatch) MatchInfo {
	return MatchInfo{
		Effect:          string(m.Effect),
		MatchedAction:   m.MatchedAction,
		MatchedResource: m.MatchedResource,
	}
}

// SimulateResponse contains results for a policy simulation.
type SimulateResponse struct {
	Results []SimulationResultInfo `json:"results" description:"One result per action/resource pair"`
}

// SimulationResultInfo is the decision for one action/resource pair.
type SimulationResultInfo struct {
	Action               string      `json:"action" description:"Simulated action"`
	Resource             string      `json:"resource" description:"Simulated resource"`
	Decision             string      `json:"decision" description:"allowed or denied"`
	MatchedStatements    []MatchInfo `json:"matched_statements" description:"Matched statement patterns"`
	MissingContextValues []string    `json:"missing_context_values" description:"Context keys referenced but not supplied"`
}

func toSimulateResponse(results []wami.SimulationResult) *SimulateResponse {
	resp := &SimulateResponse{Results: make([]SimulationResultInfo, 0, len(results))}
	for _, r := range results {
		info := SimulationResultInfo{
			Action:               r.Action,
			Resource:             r.Resource,
			Decision:             r.Decision,
			MatchedStatements:    make([]MatchInfo, 0, len(r.MatchedStatements)),
			MissingContextValues: r.MissingContextValues,
		}
		for _, m := range r.MatchedStatements {
			info.MatchedStatements = append(info.MatchedStatements, toMatchInfo(m))
		}
		resp.Results = append(resp.Results, info)
	}
	return resp
}

// ARNResponse is the decomposed form of a parsed or built ARN.
type ARNResponse struct {
	ARN          string   `json:"arn" description:"Canonical ARN string"`
	Service      string   `json:"service" description:"Service name"`
	TenantPath   []string `json:"tenant_path" description:"Tenant hierarchy segments"`
	TenantID     string   `json:"tenant_id" description:"Slash-joined tenant path"`
	InstanceID   string   `json:"instance_id" description:"Instance ID"`
	Provider     string   `json:"provider,omitempty" description:"Cloud provider, for synced resources"`
	AccountID    string   `json:"account_id,omitempty" description:"Cloud account or project ID"`
	Region       string   `json:"region,omitempty" description:"Cloud region"`
	ResourceType string   `json:"resource_type" description:"Resource type"`
	ResourceID   string   `json:"resource_id" description:"Resource identifier"`
	CloudSynced  bool     `json:"cloud_synced" description:"Whether the resource is synced to a provider"`
}

func toARNResponse(a arn.ARN) *ARNResponse {
	resp := &ARNResponse{
		ARN:          a.String(),
		Service:      a.Service.String(),
		TenantPath:   a.TenantPath,
		TenantID:     a.TenantPath.String(),
		InstanceID:   a.InstanceID,
		ResourceType: a.Resource.Type,
		ResourceID:   a.Resource.ID,
		CloudSynced:  a.IsCloudSynced(),
	}
	if a.CloudMapping != nil {
		resp.Provider = a.CloudMapping.Provider
		resp.AccountID = a.CloudMapping.AccountID
		resp.Region = a.CloudMapping.Region
	}
	return resp
}

// TransformARNResponse is a provider-native identifier.
type TransformARNResponse struct {
	Provider    string `json:"provider" description:"Target provider"`
	ProviderARN string `json:"provider_arn" description:"Provider-native identifier"`
}

// ReverseARNResponse is the decomposed form of a provider identifier.
type ReverseARNResponse struct {
	Provider     string `json:"provider" description:"Source provider"`
	AccountID    string `json:"account_id" description:"Cloud account or project ID"`
	Service      string `json:"service" description:"Service name"`
	ResourceType string `json:"resource_type" description:"Resource type"`
	ResourceID   string `json:"resource_id" description:"Resource identifier"`
	Region       string `json:"region,omitempty" description:"Cloud region"`
}

// ProvidersResponse lists the registered provider transformers.
type ProvidersResponse struct {
	Providers []string `json:"providers" description:"Registered providers"`
}

// CreateAccessKeyResponse is the one-time response for a minted access
// key; the secret is never returned again.
type CreateAccessKeyResponse struct {
	ID        string    `json:"id" description:"Access key ID"`
	TenantID  string    `json:"tenant_id" description:"Owning tenant ID"`
	UserName  string    `json:"user_name" description:"Key owner"`
	Secret    string    `json:"secret" description:"Key secret, returned only on creation"`
	Status    string    `json:"status" description:"Key status"`
	CreatedAt time.Time `json:"created_at" description:"Creation timestamp"`
}

// AttachedPoliciesResponse lists managed policy ARNs attached to a
// user, in attachment order.
type AttachedPoliciesResponse struct {
	PolicyARNs []string `json:"policy_arns" description:"Attached policy ARNs, oldest first"`
}

// InlinePoliciesResponse lists a user's inline policy names.
type InlinePoliciesResponse struct {
	PolicyNames []string `json:"policy_names" description:"Inline policy names"`
}

// InlinePolicyResponse is one inline policy document.
type InlinePolicyResponse struct {
	PolicyName string `json:"policy_name" description:"Inline policy name"`
	Document   string `json:"document" description:"Policy document JSON"`
}

// ResolvedQuotasResponse is the effective quota set for a tenant after
// walking the inheritance chain.
type ResolvedQuotasResponse struct {
	TenantID             string `json:"tenant_id" description:"Tenant ID"`
	MaxUsers             int    `json:"max_users" description:"Effective user quota"`
	MaxPolicies          int    `json:"max_policies" description:"Effective policy quota"`
	MaxAccessKeysPerUser int    `json:"max_access_keys_per_user" description:"Effective access keys per user quota"`
	MaxSubTenants        int    `json:"max_sub_tenants" description:"Effective sub-tenant quota"`
}

// PurgeDecisionLogsResponse reports how many entries a purge removed.
type PurgeDecisionLogsResponse struct {
	Purged int64 `json:"purged" description:"Number of entries removed"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
