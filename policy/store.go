package policy

import (
	"context"

	"github.com/xraph/wami/id"
)

// Store defines persistence operations for managed policies, policy
// attachments, and inline user policies.
type Store interface {
	// CreatePolicy persists a new managed policy.
	CreatePolicy(ctx context.Context, p *Policy) error

	// GetPolicy retrieves a managed policy by ID.
	GetPolicy(ctx context.Context, policyID id.PolicyID) (*Policy, error)

	// GetPolicyByARN retrieves a managed policy by its ARN string.
	GetPolicyByARN(ctx context.Context, arn string) (*Policy, error)

	// UpdatePolicy persists changes to a managed policy.
	UpdatePolicy(ctx context.Context, p *Policy) error

	// DeletePolicy removes a managed policy by ID.
	DeletePolicy(ctx context.Context, policyID id.PolicyID) error

	// ListPolicies returns managed policies matching the filter.
	ListPolicies(ctx context.Context, filter *ListFilter) ([]*Policy, error)

	// CountPolicies returns the number of policies matching the filter.
	CountPolicies(ctx context.Context, filter *ListFilter) (int64, error)

	// AttachUserPolicy attaches a managed policy to a user by ARN.
	AttachUserPolicy(ctx context.Context, tenantID, userName, policyARN string) error

	// DetachUserPolicy detaches a managed policy from a user.
	DetachUserPolicy(ctx context.Context, tenantID, userName, policyARN string) error

	// ListAttachedUserPolicies returns the ARNs of managed policies
	// attached to a user, in attachment order.
	ListAttachedUserPolicies(ctx context.Context, tenantID, userName string) ([]string, error)

	// PutUserPolicy creates or replaces an inline policy on a user.
	PutUserPolicy(ctx context.Context, tenantID, userName, policyName, document string) error

	// GetUserPolicy retrieves an inline policy document from a user.
	GetUserPolicy(ctx context.Context, tenantID, userName, policyName string) (string, error)

	// DeleteUserPolicy removes an inline policy from a user.
	DeleteUserPolicy(ctx context.Context, tenantID, userName, policyName string) error

	// ListUserPolicies returns the names of a user's inline policies.
	ListUserPolicies(ctx context.Context, tenantID, userName string) ([]string, error)

	// DeletePoliciesByTenant removes all managed policies for a tenant.
	DeletePoliciesByTenant(ctx context.Context, tenantID string) error
}
