package api

// ──────────────────────────────────────────────────
// Authorization requests
// ──────────────────────────────────────────────────

// AuthorizeRequest is the request body for an authorization check.
type AuthorizeRequest struct {
	CallerARN string `json:"caller_arn" description:"ARN of the calling principal"`
	Action    string `json:"action" description:"Action name (e.g. s3:GetObject)"`
	Resource  string `json:"resource" description:"Target resource ARN"`
	IsRoot    bool   `json:"is_root,omitempty" description:"Root principal flag (bypasses evaluation)"`
	Region    string `json:"region,omitempty" description:"Request region"`
	RequestIP string `json:"request_ip,omitempty" description:"Originating client IP"`
}

// SimulateRequest runs policy documents against action/resource pairs.
type SimulateRequest struct {
	PolicyDocuments []string          `json:"policy_documents" description:"Policy documents to evaluate"`
	Actions         []string          `json:"actions" description:"Actions to simulate"`
	Resources       []string          `json:"resources" description:"Resource ARNs to simulate"`
	ContextEntries  map[string]string `json:"context_entries,omitempty" description:"Context key/value entries"`
}

// ──────────────────────────────────────────────────
// ARN requests
// ──────────────────────────────────────────────────

// ParseARNRequest is the body for parsing an ARN string.
type ParseARNRequest struct {
	ARN string `json:"arn" description:"ARN string to parse"`
}

// BuildARNRequest is the body for constructing an ARN.
type BuildARNRequest struct {
	Service      string `json:"service" description:"Service name (iam, sts, sso-admin)"`
	TenantID     string `json:"tenant_id" description:"Slash-delimited tenant path"`
	InstanceID   string `json:"instance_id,omitempty" description:"Instance ID (defaults to the API instance)"`
	Provider     string `json:"provider,omitempty" description:"Cloud provider for synced resources"`
	AccountID    string `json:"account_id,omitempty" description:"Cloud account or project ID"`
	Region       string `json:"region,omitempty" description:"Cloud region"`
	ResourceType string `json:"resource_type" description:"Resource type"`
	ResourceID   string `json:"resource_id" description:"Resource identifier"`
}

// TransformARNRequest converts a WAMI ARN to a provider-native identifier.
type TransformARNRequest struct {
	ARN      string `json:"arn" description:"WAMI ARN to transform"`
	Provider string `json:"provider" description:"Target provider (aws, gcp, azure, scaleway)"`
}

// ReverseARNRequest parses a provider-native identifier.
type ReverseARNRequest struct {
	ProviderARN string `json:"provider_arn" description:"Provider-native identifier"`
	Provider    string `json:"provider" description:"Source provider (aws, gcp, azure, scaleway)"`
}

// ──────────────────────────────────────────────────
// User requests
// ──────────────────────────────────────────────────

// CreateUserRequest is the body for creating a user.
type CreateUserRequest struct {
	TenantID string         `json:"tenant_id" description:"Owning tenant ID"`
	Name     string         `json:"name" description:"User name, unique within the tenant"`
	Path     string         `json:"path,omitempty" description:"Organizational path (e.g. /engineering/)"`
	Metadata map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateUserRequest is the body for updating a user.
type UpdateUserRequest struct {
	Path     string         `json:"path,omitempty" description:"Organizational path"`
	Metadata map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetUserRequest is the path parameter for getting a user.
type GetUserRequest struct {
	UserID string `path:"userId" description:"User ID"`
}

// ListUsersRequest holds query parameters for listing users.
type ListUsersRequest struct {
	TenantID   string `query:"tenant_id" description:"Filter by tenant"`
	PathPrefix string `query:"path_prefix" description:"Filter by path prefix"`
	Search     string `query:"search" description:"Search by name"`
	Limit      int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// CreateAccessKeyRequest is the body for minting an access key.
type CreateAccessKeyRequest struct {
	TenantID string `json:"tenant_id" description:"Owning tenant ID"`
	UserName string `json:"user_name" description:"Key owner"`
}

// UpdateAccessKeyRequest is the body for changing a key's status.
type UpdateAccessKeyRequest struct {
	Status string `json:"status" description:"New status (Active or Inactive)"`
}

// GetAccessKeyRequest is the path parameter for an access key.
type GetAccessKeyRequest struct {
	KeyID string `path:"keyId" description:"Access key ID"`
}

// ListAccessKeysRequest holds query parameters for listing access keys.
type ListAccessKeysRequest struct {
	TenantID string `query:"tenant_id" description:"Owning tenant ID"`
	UserName string `query:"user_name" description:"Key owner"`
}

// ──────────────────────────────────────────────────
// Policy requests
// ──────────────────────────────────────────────────

// CreatePolicyRequest is the body for creating a managed policy.
type CreatePolicyRequest struct {
	TenantID    string         `json:"tenant_id" description:"Owning tenant ID"`
	Name        string         `json:"name" description:"Policy name, unique within the tenant"`
	Path        string         `json:"path,omitempty" description:"Organizational path"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Document    string         `json:"document" description:"Policy document JSON"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdatePolicyRequest is the body for updating a managed policy.
type UpdatePolicyRequest struct {
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Document    string         `json:"document,omitempty" description:"Policy document JSON"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetPolicyRequest is the path parameter for getting a policy.
type GetPolicyRequest struct {
	PolicyID string `path:"policyId" description:"Policy ID"`
}

// ListPoliciesRequest holds query parameters for listing policies.
type ListPoliciesRequest struct {
	TenantID     string `query:"tenant_id" description:"Filter by tenant"`
	PathPrefix   string `query:"path_prefix" description:"Filter by path prefix"`
	OnlyAttached bool   `query:"only_attached" description:"Only policies with attachments"`
	Search       string `query:"search" description:"Search by name"`
	Limit        int    `query:"limit" description:"Maximum results"`
	Offset       int    `query:"offset" description:"Results to skip"`
}

// AttachPolicyRequest attaches a managed policy to a user.
type AttachPolicyRequest struct {
	TenantID  string `json:"tenant_id" description:"Owning tenant ID"`
	UserName  string `json:"user_name" description:"Principal user name"`
	PolicyARN string `json:"policy_arn" description:"Managed policy ARN"`
}

// PutInlinePolicyRequest embeds an inline policy in a user.
type PutInlinePolicyRequest struct {
	TenantID   string `json:"tenant_id" description:"Owning tenant ID"`
	UserName   string `json:"user_name" description:"Principal user name"`
	PolicyName string `json:"policy_name" description:"Inline policy name"`
	Document   string `json:"document" description:"Policy document JSON"`
}

// InlinePolicyRequest identifies an inline policy.
type InlinePolicyRequest struct {
	TenantID   string `query:"tenant_id" description:"Owning tenant ID"`
	UserName   string `query:"user_name" description:"Principal user name"`
	PolicyName string `query:"policy_name" description:"Inline policy name"`
}

// ListPrincipalPoliciesRequest lists policies bound to a user.
type ListPrincipalPoliciesRequest struct {
	TenantID string `query:"tenant_id" description:"Owning tenant ID"`
	UserName string `query:"user_name" description:"Principal user name"`
}

// ──────────────────────────────────────────────────
// Tenant requests
// ──────────────────────────────────────────────────

// CreateTenantRequest is the body for creating a tenant.
type CreateTenantRequest struct {
	ID                  string         `json:"id" description:"Tenant ID (slash-delimited path of numeric segments)"`
	Name                string         `json:"name" description:"Display name"`
	QuotaMode           string         `json:"quota_mode,omitempty" description:"Quota mode (inherit or override)"`
	MaxUsers            int            `json:"max_users,omitempty" description:"User quota"`
	MaxPolicies         int            `json:"max_policies,omitempty" description:"Policy quota"`
	MaxAccessKeys       int            `json:"max_access_keys,omitempty" description:"Access keys per user quota"`
	MaxSubTenants       int            `json:"max_sub_tenants,omitempty" description:"Sub-tenant quota"`
	MaxChildDepth       int            `json:"max_child_depth,omitempty" description:"Maximum hierarchy depth below this tenant"`
	CanCreateSubTenants bool           `json:"can_create_sub_tenants,omitempty" description:"Whether sub-tenants may be created"`
	AdminPrincipals     []string       `json:"admin_principals,omitempty" description:"Principal ARNs with administrative control"`
	Metadata            map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateTenantRequest is the body for updating a tenant.
type UpdateTenantRequest struct {
	Name                string         `json:"name,omitempty" description:"Display name"`
	Status              string         `json:"status,omitempty" description:"Status (active or suspended)"`
	QuotaMode           string         `json:"quota_mode,omitempty" description:"Quota mode"`
	MaxUsers            *int           `json:"max_users,omitempty" description:"User quota"`
	MaxPolicies         *int           `json:"max_policies,omitempty" description:"Policy quota"`
	MaxAccessKeys       *int           `json:"max_access_keys,omitempty" description:"Access keys per user quota"`
	MaxSubTenants       *int           `json:"max_sub_tenants,omitempty" description:"Sub-tenant quota"`
	CanCreateSubTenants *bool          `json:"can_create_sub_tenants,omitempty" description:"Whether sub-tenants may be created"`
	AdminPrincipals     []string       `json:"admin_principals,omitempty" description:"Principal ARNs with administrative control"`
	Metadata            map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetTenantRequest is the path parameter for getting a tenant. The
// tenant ID is base64url-encoded because it contains slashes.
type GetTenantRequest struct {
	TenantID string `path:"tenantId" description:"Tenant ID (base64url-encoded)"`
}

// ListTenantsRequest holds query parameters for listing tenants.
type ListTenantsRequest struct {
	ParentID string `query:"parent_id" description:"Filter by parent tenant"`
	Status   string `query:"status" description:"Filter by status"`
	Search   string `query:"search" description:"Search by name"`
	Limit    int    `query:"limit" description:"Maximum results"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Decision log requests
// ──────────────────────────────────────────────────

// ListDecisionLogsRequest holds query parameters for querying decision logs.
type ListDecisionLogsRequest struct {
	TenantID string `query:"tenant_id" description:"Filter by tenant"`
	Caller   string `query:"caller" description:"Filter by caller"`
	Action   string `query:"action" description:"Filter by action"`
	Resource string `query:"resource" description:"Filter by resource"`
	Decision string `query:"decision" description:"Filter by decision"`
	After    string `query:"after" description:"After timestamp (RFC3339)"`
	Before   string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit    int    `query:"limit" description:"Maximum results"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// GetDecisionLogRequest is the path parameter for a decision log entry.
type GetDecisionLogRequest struct {
	LogID string `path:"logId" description:"Decision log entry ID"`
}

// PurgeDecisionLogsRequest is the body for purging old entries.
type PurgeDecisionLogsRequest struct {
	Before string `json:"before" description:"Purge entries created before this timestamp (RFC3339)"`
}
