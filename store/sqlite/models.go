package sqlite

import (
	"encoding/json"
	"fmt"
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
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Path            string    `grove:"path,notnull"`
	ARN             string    `grove:"arn,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func userToModel(u *user.User) (*userModel, error) {
	metadata, err := marshalMeta(u.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal user metadata: %w", err)
	}
	return &userModel{
		ID:        u.ID.String(),
		TenantID:  u.TenantID,
		Name:      u.Name,
		Path:      u.Path,
		ARN:       u.ARN,
		Metadata:  metadata,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func userFromModel(m *userModel) (*user.User, error) {
	uid, _ := id.ParseUserID(m.ID) //nolint:errcheck // stored IDs are always valid
	metadata, err := unmarshalMeta(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("unmarshal user metadata: %w", err)
	}
	return &user.User{
		ID:        uid,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Path:      m.Path,
		ARN:       m.ARN,
		Metadata:  metadata,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
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
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Path            string    `grove:"path,notnull"`
	ARN             string    `grove:"arn,notnull"`
	Description     string    `grove:"description"`
	Document        string    `grove:"document,notnull"`
	IsAttachable    bool      `grove:"is_attachable,notnull"`
	AttachmentCount int       `grove:"attachment_count,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func policyToModel(p *policy.Policy) (*policyModel, error) {
	metadata, err := marshalMeta(p.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal policy metadata: %w", err)
	}
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
		Metadata:        metadata,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func policyFromModel(m *policyModel) (*policy.Policy, error) {
	pid, _ := id.ParsePolicyID(m.ID) //nolint:errcheck // stored IDs are always valid
	metadata, err := unmarshalMeta(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("unmarshal policy metadata: %w", err)
	}
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
		Metadata:        metadata,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
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
	ID                  string    `grove:"id,pk"`
	Name                string    `grove:"name,notnull"`
	ParentID            *string   `grove:"parent_id"`
	Quotas              string    `grove:"quotas"` // JSON text
	QuotaMode           string    `grove:"quota_mode,notnull"`
	MaxChildDepth       int       `grove:"max_child_depth,notnull"`
	CanCreateSubTenants bool      `grove:"can_create_sub_tenants,notnull"`
	AdminPrincipals     string    `grove:"admin_principals"` // JSON text
	Status              string    `grove:"status,notnull"`
	Metadata            string    `grove:"metadata"` // JSON text
	CreatedAt           time.Time `grove:"created_at,notnull"`
	UpdatedAt           time.Time `grove:"updated_at,notnull"`
}

func tenantToModel(t *tenant.Tenant) (*tenantModel, error) {
	quotas, err := json.Marshal(t.Quotas)
	if err != nil {
		return nil, fmt.Errorf("marshal tenant quotas: %w", err)
	}
	metadata, err := marshalMeta(t.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal tenant metadata: %w", err)
	}
	admins := ""
	if len(t.AdminPrincipals) > 0 {
		raw, err := json.Marshal(t.AdminPrincipals)
		if err != nil {
			return nil, fmt.Errorf("marshal tenant admin principals: %w", err)
		}
		admins = string(raw)
	}
	m := &tenantModel{
		ID:                  string(t.ID),
		Name:                t.Name,
		Quotas:              string(quotas),
		QuotaMode:           string(t.QuotaMode),
		MaxChildDepth:       t.MaxChildDepth,
		CanCreateSubTenants: t.CanCreateSubTenants,
		AdminPrincipals:     admins,
		Status:              string(t.Status),
		Metadata:            metadata,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if t.ParentID != nil {
		s := string(*t.ParentID)
		m.ParentID = &s
	}
	return m, nil
}

func tenantFromModel(m *tenantModel) (*tenant.Tenant, error) {
	var quotas tenant.Quotas
	if m.Quotas != "" {
		if err := json.Unmarshal([]byte(m.Quotas), &quotas); err != nil {
			return nil, fmt.Errorf("unmarshal tenant quotas: %w", err)
		}
	}
	metadata, err := unmarshalMeta(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tenant metadata: %w", err)
	}
	var admins []string
	if m.AdminPrincipals != "" && m.AdminPrincipals != "[]" {
		if err := json.Unmarshal([]byte(m.AdminPrincipals), &admins); err != nil {
			return nil, fmt.Errorf("unmarshal tenant admin principals: %w", err)
		}
	}
	t := &tenant.Tenant{
		ID:                  tenant.ID(m.ID),
		Name:                m.Name,
		Quotas:              quotas,
		QuotaMode:           tenant.QuotaMode(m.QuotaMode),
		MaxChildDepth:       m.MaxChildDepth,
		CanCreateSubTenants: m.CanCreateSubTenants,
		AdminPrincipals:     admins,
		Status:              tenant.Status(m.Status),
		Metadata:            metadata,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid := tenant.ID(*m.ParentID)
		t.ParentID = &pid
	}
	return t, nil
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:wami_decision_logs"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Caller          string    `grove:"caller,notnull"`
	Action          string    `grove:"action,notnull"`
	Resource        string    `grove:"resource,notnull"`
	Decision        string    `grove:"decision,notnull"`
	Reason          string    `grove:"reason"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	RequestIP       string    `grove:"request_ip"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) (*decisionLogModel, error) {
	metadata, err := marshalMeta(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal decision log metadata: %w", err)
	}
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
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
	}, nil
}

func decisionLogFromModel(m *decisionLogModel) (*decisionlog.Entry, error) {
	lid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	metadata, err := unmarshalMeta(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("unmarshal decision log metadata: %w", err)
	}
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
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func marshalMeta(m map[string]any) (string, error) {
	if m == nil {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalMeta(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
