package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// ──────────────────────────────────────────────────
// User model
// ──────────────────────────────────────────────────

type userModel struct {
	grove.BaseModel `grove:"table:wami_users"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	Name            string         `grove:"name,notnull"`
	Path            string         `grove:"path,notnull"`
	ARN             string         `grove:"arn,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func userToModel(u *user.User) *userModel {
	return &userModel{
		ID:        u.ID.String(),
		TenantID:  u.TenantID,
		Name:      u.Name,
		Path:      u.Path,
		ARN:       u.ARN,
		Metadata:  u.Metadata,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userFromModel(m *userModel) *user.User {
	uid, _ := id.ParseUserID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &user.User{
		ID:        uid,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Path:      m.Path,
		ARN:       m.ARN,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Access key model
// ──────────────────────────────────────────────────

type accessKeyModel struct {
	grove.BaseModel `grove:"table:wami_access_keys"`
	ID              string     `grove:"id,pk"`
	TenantID        string     `grove:"tenant_id,notnull"`
	UserName        string     `grove:"user_name,notnull"`
	Secret          string     `grove:"secret,notnull"`
	Status          string     `grove:"status,notnull"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
	LastUsed        *time.Time `grove:"last_used"`
}

func accessKeyToModel(k *user.AccessKey) *accessKeyModel {
	return &accessKeyModel{
		ID:        k.ID.String(),
		TenantID:  k.TenantID,
		UserName:  k.UserName,
		Secret:    k.Secret,
		Status:    string(k.Status),
		CreatedAt: k.CreatedAt,
		LastUsed:  k.LastUsed,
	}
}

func accessKeyFromModel(m *accessKeyModel) *user.AccessKey {
	kid, _ := id.ParseAccessKeyID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &user.AccessKey{
		ID:        kid,
		TenantID:  m.TenantID,
		UserName:  m.UserName,
		Secret:    m.Secret,
		Status:    user.KeyStatus(m.Status),
		CreatedAt: m.CreatedAt,
		LastUsed:  m.LastUsed,
	}
}

// ──────────────────────────────────────────────────
// Policy model
// ──────────────────────────────────────────────────

type policyModel struct {
	grove.BaseModel `grove:"table:wami_policies"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	Name            string         `grove:"name,notnull"`
	Path            string         `grove:"path,notnull"`
	ARN             string         `grove:"arn,notnull"`
	Description     string         `grove:"description"`
	Document        string         `grove:"document,notnull"`
	IsAttachable    bool           `grove:"is_attachable,notnull"`
	AttachmentCount int            `grove:"attachment_count,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func policyToModel(p *policy.Policy) *policyModel {
	return &policyModel{
		ID:              p.ID.String(),
		TenantID:        p.TenantID,
		Name:            p.Name,
		Path:            p.Path,
		ARN:             p.ARN,
		Description:     p.Description,
		Document:        p.Document,
		IsAttachable:    p.IsAttachable,
		AttachmentCount: p.AttachmentCount,
		Metadata:        p.Metadata,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func policyFromModel(m *policyModel) *policy.Policy {
	pid, _ := id.ParsePolicyID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &policy.Policy{
		ID:              pid,
		TenantID:        m.TenantID,
		Name:            m.Name,
		Path:            m.Path,
		ARN:             m.ARN,
		Description:     m.Description,
		Document:        m.Document,
		IsAttachable:    m.IsAttachable,
		AttachmentCount: m.AttachmentCount,
		Metadata:        m.Metadata,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Policy attachment junction model
// ──────────────────────────────────────────────────

type attachmentModel struct {
	grove.BaseModel `grove:"table:wami_policy_attachments"`
	TenantID        string    `grove:"tenant_id,pk"`
	UserName        string    `grove:"user_name,pk"`
	PolicyARN       string    `grove:"policy_arn,pk"`
	AttachedAt      time.Time `grove:"attached_at,notnull"`
}

// ──────────────────────────────────────────────────
// Inline policy model
// ──────────────────────────────────────────────────

type inlinePolicyModel struct {
	grove.BaseModel `grove:"table:wami_inline_policies"`
	TenantID        string    `grove:"tenant_id,pk"`
	UserName        string    `grove:"user_name,pk"`
	PolicyName      string    `grove:"policy_name,pk"`
	Document        string    `grove:"document,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

// ──────────────────────────────────────────────────
// Tenant model
// ──────────────────────────────────────────────────

type tenantModel struct {
	grove.BaseModel     `grove:"table:wami_tenants"`
	ID                  string         `grove:"id,pk"`
	Name                string         `grove:"name,notnull"`
	ParentID            *string        `grove:"parent_id"`
	Quotas              map[string]any `grove:"quotas,type:jsonb"`
	QuotaMode           string         `grove:"quota_mode,notnull"`
	MaxChildDepth       int            `grove:"max_child_depth,notnull"`
	CanCreateSubTenants bool           `grove:"can_create_sub_tenants,notnull"`
	AdminPrincipals     []string       `grove:"admin_principals,type:jsonb"`
	Status              string         `grove:"status,notnull"`
	Metadata            map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt           time.Time      `grove:"created_at,notnull"`
	UpdatedAt           time.Time      `grove:"updated_at,notnull"`
}

func tenantToModel(t *tenant.Tenant) *tenantModel {
	m := &tenantModel{
		ID:   string(t.ID),
		Name: t.Name,
		Quotas: map[string]any{
			"max_users":                t.Quotas.MaxUsers,
			"max_policies":             t.Quotas.MaxPolicies,
			"max_access_keys_per_user": t.Quotas.MaxAccessKeysPerUser,
			"max_sub_tenants":          t.Quotas.MaxSubTenants,
		},
		QuotaMode:           string(t.QuotaMode),
		MaxChildDepth:       t.MaxChildDepth,
		CanCreateSubTenants: t.CanCreateSubTenants,
		AdminPrincipals:     t.AdminPrincipals,
		Status:              string(t.Status),
		Metadata:            t.Metadata,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if t.ParentID != nil {
		s := string(*t.ParentID)
		m.ParentID = &s
	}
	return m
}

func tenantFromModel(m *tenantModel) *tenant.Tenant {
	t := &tenant.Tenant{
		ID:   tenant.ID(m.ID),
		Name: m.Name,
		Quotas: tenant.Quotas{
			MaxUsers:             intFromAny(m.Quotas["max_users"]),
			MaxPolicies:          intFromAny(m.Quotas["max_policies"]),
			MaxAccessKeysPerUser: intFromAny(m.Quotas["max_access_keys_per_user"]),
			MaxSubTenants:        intFromAny(m.Quotas["max_sub_tenants"]),
		},
		QuotaMode:           tenant.QuotaMode(m.QuotaMode),
		MaxChildDepth:       m.MaxChildDepth,
		CanCreateSubTenants: m.CanCreateSubTenants,
		AdminPrincipals:     m.AdminPrincipals,
		Status:              tenant.Status(m.Status),
		Metadata:            m.Metadata,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid := tenant.ID(*m.ParentID)
		t.ParentID = &pid
	}
	return t
}

// intFromAny converts a decoded jsonb number to int. JSON numbers
// decode as float64.
func intFromAny(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:wami_decision_logs"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	Caller          string         `grove:"caller,notnull"`
	Action          string         `grove:"action,notnull"`
	Resource        string         `grove:"resource,notnull"`
	Decision        string         `grove:"decision,notnull"`
	Reason          string         `grove:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	RequestIP       string         `grove:"request_ip"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) *decisionLogModel {
	return &decisionLogModel{
		ID:         e.ID.String(),
		TenantID:   e.TenantID,
		Caller:     e.Caller,
		Action:     e.Action,
		Resource:   e.Resource,
		Decision:   e.Decision,
		Reason:     e.Reason,
		EvalTimeNs: e.EvalTimeNs,
		RequestIP:  e.RequestIP,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func decisionLogFromModel(m *decisionLogModel) *decisionlog.Entry {
	lid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &decisionlog.Entry{
		ID:         lid,
		TenantID:   m.TenantID,
		Caller:     m.Caller,
		Action:     m.Action,
		Resource:   m.Resource,
		Decision:   m.Decision,
		Reason:     m.Reason,
		EvalTimeNs: m.EvalTimeNs,
		RequestIP:  m.RequestIP,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}
