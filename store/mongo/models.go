package mongo

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
	ID              string         `grove:"id,pk"        bson:"_id"`
	TenantID        string         `grove:"tenant_id"    bson:"tenant_id"`
	Name            string         `grove:"name"         bson:"name"`
	Path            string         `grove:"path"         bson:"path"`
	ARN             string         `grove:"arn"          bson:"arn"`
	Metadata        map[string]any `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"   bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"   bson:"updated_at"`
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
	ID              string     `grove:"id,pk"        bson:"_id"`
	TenantID        string     `grove:"tenant_id"    bson:"tenant_id"`
	UserName        string     `grove:"user_name"    bson:"user_name"`
	Secret          string     `grove:"secret"       bson:"secret"`
	Status          string     `grove:"status"       bson:"status"`
	CreatedAt       time.Time  `grove:"created_at"   bson:"created_at"`
	LastUsed        *time.Time `grove:"last_used"    bson:"last_used,omitempty"`
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
	ID              string         `grove:"id,pk"             bson:"_id"`
	TenantID        string         `grove:"tenant_id"         bson:"tenant_id"`
	Name            string         `grove:"name"              bson:"name"`
	Path            string         `grove:"path"              bson:"path"`
	ARN             string         `grove:"arn"               bson:"arn"`
	Description     string         `grove:"description"       bson:"description"`
	Document        string         `grove:"document"          bson:"document"`
	IsAttachable    bool           `grove:"is_attachable"     bson:"is_attachable"`
	AttachmentCount int            `grove:"attachment_count"  bson:"attachment_count"`
	Metadata        map[string]any `grove:"metadata"          bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"        bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"        bson:"updated_at"`
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
	TenantID        string    `grove:"tenant_id,pk"   bson:"tenant_id"`
	UserName        string    `grove:"user_name,pk"   bson:"user_name"`
	PolicyARN       string    `grove:"policy_arn,pk"  bson:"policy_arn"`
	AttachedAt      time.Time `grove:"attached_at"    bson:"attached_at"`
}

// ──────────────────────────────────────────────────
// Inline policy model
// ──────────────────────────────────────────────────

type inlinePolicyModel struct {
	grove.BaseModel `grove:"table:wami_inline_policies"`
	TenantID        string    `grove:"tenant_id,pk"    bson:"tenant_id"`
	UserName        string    `grove:"user_name,pk"    bson:"user_name"`
	PolicyName      string    `grove:"policy_name,pk"  bson:"policy_name"`
	Document        string    `grove:"document"        bson:"document"`
	CreatedAt       time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"      bson:"updated_at"`
}

// ──────────────────────────────────────────────────
// Tenant model
// ──────────────────────────────────────────────────

type tenantModel struct {
	grove.BaseModel     `grove:"table:wami_tenants"`
	ID                  string         `grove:"id,pk"                   bson:"_id"`
	Name                string         `grove:"name"                    bson:"name"`
	ParentID            *string        `grove:"parent_id"               bson:"parent_id,omitempty"`
	Quotas              tenant.Quotas  `grove:"quotas"                  bson:"quotas"`
	QuotaMode           string         `grove:"quota_mode"              bson:"quota_mode"`
	MaxChildDepth       int            `grove:"max_child_depth"         bson:"max_child_depth"`
	CanCreateSubTenants bool           `grove:"can_create_sub_tenants"  bson:"can_create_sub_tenants"`
	AdminPrincipals     []string       `grove:"admin_principals"        bson:"admin_principals,omitempty"`
	Status              string         `grove:"status"                  bson:"status"`
	Metadata            map[string]any `grove:"metadata"                bson:"metadata,omitempty"`
	CreatedAt           time.Time      `grove:"created_at"              bson:"created_at"`
	UpdatedAt           time.Time      `grove:"updated_at"              bson:"updated_at"`
}

func tenantToModel(t *tenant.Tenant) *tenantModel {
	m := &tenantModel{
		ID:                  string(t.ID),
		Name:                t.Name,
		Quotas:              t.Quotas,
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
		ID:                  tenant.ID(m.ID),
		Name:                m.Name,
		Quotas:              m.Quotas,
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

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:wami_decision_logs"`
	ID              string         `grove:"id,pk"         bson:"_id"`
	TenantID        string         `grove:"tenant_id"     bson:"tenant_id"`
	Caller          string         `grove:"caller"        bson:"caller"`
	Action          string         `grove:"action"        bson:"action"`
	Resource        string         `grove:"resource"      bson:"resource"`
	Decision        string         `grove:"decision"      bson:"decision"`
	Reason          string         `grove:"reason"        bson:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns"  bson:"eval_time_ns"`
	RequestIP       string         `grove:"request_ip"    bson:"request_ip"`
	Metadata        map[string]any `grove:"metadata"      bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"    bson:"created_at"`
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
