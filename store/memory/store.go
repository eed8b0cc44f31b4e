// Package memory provides an in-memory implementation of the WAMI
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/store"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// Compile-time interface checks.
var (
	_ user.Store        = (*Store)(nil)
	_ policy.Store      = (*Store)(nil)
	_ tenant.Store      = (*Store)(nil)
	_ decisionlog.Store = (*Store)(nil)
	_ store.Store       = (*Store)(nil)
)

type inlinePolicy struct {
	name     string
	document string
}

// Store is a thread-safe in-memory store for all WAMI entities.
type Store struct {
	mu sync.RWMutex

	users        map[string]*user.User
	accessKeys   map[string]*user.AccessKey
	policies     map[string]*policy.Policy
	attachments  map[string][]string       // tenant/user -> attached policy ARNs, in order
	inline       map[string][]inlinePolicy // tenant/user -> inline policies, in order
	tenants      map[string]*tenant.Tenant
	decisionLogs map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]*user.User),
		accessKeys:   make(map[string]*user.AccessKey),
		policies:     make(map[string]*policy.Policy),
		attachments:  make(map[string][]string),
		inline:       make(map[string][]inlinePolicy),
		tenants:      make(map[string]*tenant.Tenant),
		decisionLogs: make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

func principalKey(tenantID, userName string) string {
	return tenantID + "\x00" + userName
}

// ──────────────────────────────────────────────────
// User Store
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID.String()] = copyUser(u)
	return nil
}

func (s *Store) GetUser(_ context.Context, userID id.UserID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID.String()]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByName(_ context.Context, tenantID, name string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.TenantID == tenantID && u.Name == name {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID.String()]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
	}
	s.users[u.ID.String()] = copyUser(u)
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID.String()]; ok {
		pk := principalKey(u.TenantID, u.Name)
		delete(s.attachments, pk)
		delete(s.inline, pk)
		for k, key := range s.accessKeys {
			if key.TenantID == u.TenantID && key.UserName == u.Name {
				delete(s.accessKeys, k)
			}
		}
	}
	delete(s.users, userID.String())
	return nil
}

func (s *Store) ListUsers(_ context.Context, filter *user.ListFilter) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*user.User, 0, len(s.users))
	for _, u := range s.users {
		if filter != nil {
			if filter.TenantID != "" && u.TenantID != filter.TenantID {
				continue
			}
			if filter.PathPrefix != "" && !strings.HasPrefix(u.Path, filter.PathPrefix) {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyUser(u))
	}
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountUsers(ctx context.Context, filter *user.ListFilter) (int64, error) {
	list, err := s.ListUsers(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) CreateAccessKey(_ context.Context, k *user.AccessKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessKeys[k.ID.String()] = copyAccessKey(k)
	return nil
}

func (s *Store) GetAccessKey(_ context.Context, keyID id.AccessKeyID) (*user.AccessKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.accessKeys[keyID.String()]
	if !ok {
		return nil, fmt.Errorf("access key %s: %w", keyID, store.ErrNotFound)
	}
	return copyAccessKey(k), nil
}

func (s *Store) UpdateAccessKeyStatus(_ context.Context, keyID id.AccessKeyID, status user.KeyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.accessKeys[keyID.String()]
	if !ok {
		return fmt.Errorf("access key %s: %w", keyID, store.ErrNotFound)
	}
	k.Status = status
	return nil
}

func (s *Store) DeleteAccessKey(_ context.Context, keyID id.AccessKeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accessKeys, keyID.String())
	return nil
}

func (s *Store) ListAccessKeys(_ context.Context, tenantID, userName string) ([]*user.AccessKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*user.AccessKey
	for _, k := range s.accessKeys {
		if k.TenantID == tenantID && k.UserName == userName {
			result = append(result, copyAccessKey(k))
		}
	}
	return result, nil
}

func (s *Store) DeleteUsersByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, u := range s.users {
		if u.TenantID == tenantID {
			pk := principalKey(u.TenantID, u.Name)
			delete(s.attachments, pk)
			delete(s.inline, pk)
			delete(s.users, k)
		}
	}
	for k, key := range s.accessKeys {
		if key.TenantID == tenantID {
			delete(s.accessKeys, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Policy Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.ID.String()] = copyPolicy(p)
	return nil
}

func (s *Store) GetPolicy(_ context.Context, policyID id.PolicyID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID.String()]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyID, store.ErrNotFound)
	}
	return copyPolicy(p), nil
}

func (s *Store) GetPolicyByARN(_ context.Context, arn string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.policies {
		if p.ARN == arn {
			return copyPolicy(p), nil
		}
	}
	return nil, fmt.Errorf("policy %q: %w", arn, store.ErrNotFound)
}

func (s *Store) UpdatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[p.ID.String()]; !ok {
		return fmt.Errorf("policy %s: %w", p.ID, store.ErrNotFound)
	}
	s.policies[p.ID.String()] = copyPolicy(p)
	return nil
}

func (s *Store) DeletePolicy(_ context.Context, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.policies[policyID.String()]; ok {
		for pk, arns := range s.attachments {
			s.attachments[pk] = removeString(arns, p.ARN)
		}
	}
	delete(s.policies, policyID.String())
	return nil
}

func (s *Store) ListPolicies(_ context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if filter != nil {
			if filter.TenantID != "" && p.TenantID != filter.TenantID {
				continue
			}
			if filter.PathPrefix != "" && !strings.HasPrefix(p.Path, filter.PathPrefix) {
				continue
			}
			if filter.OnlyAttached && p.AttachmentCount == 0 {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyPolicy(p))
	}
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	list, err := s.ListPolicies(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) AttachUserPolicy(_ context.Context, tenantID, userName, policyARN string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := principalKey(tenantID, userName)
	for _, arn := range s.attachments[pk] {
		if arn == policyARN {
			return nil // already attached
		}
	}
	s.attachments[pk] = append(s.attachments[pk], policyARN)
	for _, p := range s.policies {
		if p.ARN == policyARN {
			p.AttachmentCount++
		}
	}
	return nil
}

func (s *Store) DetachUserPolicy(_ context.Context, tenantID, userName, policyARN string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := principalKey(tenantID, userName)
	before := len(s.attachments[pk])
	s.attachments[pk] = removeString(s.attachments[pk], policyARN)
	if len(s.attachments[pk]) < before {
		for _, p := range s.policies {
			if p.ARN == policyARN && p.AttachmentCount > 0 {
				p.AttachmentCount--
			}
		}
	}
	return nil
}

func (s *Store) ListAttachedUserPolicies(_ context.Context, tenantID, userName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arns := s.attachments[principalKey(tenantID, userName)]
	return append([]string(nil), arns...), nil
}

func (s *Store) PutUserPolicy(_ context.Context, tenantID, userName, policyName, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := principalKey(tenantID, userName)
	for i, p := range s.inline[pk] {
		if p.name == policyName {
			s.inline[pk][i].document = document
			return nil
		}
	}
	s.inline[pk] = append(s.inline[pk], inlinePolicy{name: policyName, document: document})
	return nil
}

func (s *Store) GetUserPolicy(_ context.Context, tenantID, userName, policyName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.inline[principalKey(tenantID, userName)] {
		if p.name == policyName {
			return p.document, nil
		}
	}
	return "", fmt.Errorf("inline policy %q: %w", policyName, store.ErrNotFound)
}

func (s *Store) DeleteUserPolicy(_ context.Context, tenantID, userName, policyName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := principalKey(tenantID, userName)
	for i, p := range s.inline[pk] {
		if p.name == policyName {
			s.inline[pk] = append(s.inline[pk][:i], s.inline[pk][i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ListUserPolicies(_ context.Context, tenantID, userName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inline := s.inline[principalKey(tenantID, userName)]
	names := make([]string, 0, len(inline))
	for _, p := range inline {
		names = append(names, p.name)
	}
	return names, nil
}

func (s *Store) DeletePoliciesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.policies {
		if p.TenantID == tenantID {
			delete(s.policies, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Tenant Store
// ──────────────────────────────────────────────────

func (s *Store) CreateTenant(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[string(t.ID)] = copyTenant(t)
	return nil
}

func (s *Store) GetTenant(_ context.Context, tenantID tenant.ID) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[string(tenantID)]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, store.ErrNotFound)
	}
	return copyTenant(t), nil
}

func (s *Store) UpdateTenant(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[string(t.ID)]; !ok {
		return fmt.Errorf("tenant %s: %w", t.ID, store.ErrNotFound)
	}
	s.tenants[string(t.ID)] = copyTenant(t)
	return nil
}

func (s *Store) DeleteTenant(_ context.Context, tenantID tenant.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenants, string(tenantID))
	return nil
}

func (s *Store) ListTenants(_ context.Context, filter *tenant.ListFilter) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*tenant.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		if filter != nil {
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			if filter.ParentID != nil && (t.ParentID == nil || *t.ParentID != *filter.ParentID) {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyTenant(t))
	}
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountTenants(ctx context.Context, filter *tenant.ListFilter) (int64, error) {
	list, err := s.ListTenants(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListChildTenants(_ context.Context, parentID tenant.ID) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*tenant.Tenant
	for _, t := range s.tenants {
		if t.ParentID != nil && *t.ParentID == parentID {
			result = append(result, copyTenant(t))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Decision Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisionLogs[e.ID.String()] = copyDecisionLog(e)
	return nil
}

func (s *Store) GetDecisionLog(_ context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.decisionLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("decision log %s: %w", logID, store.ErrNotFound)
	}
	return copyDecisionLog(e), nil
}

func (s *Store) ListDecisionLogs(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.decisionLogs))
	for _, e := range s.decisionLogs {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.Caller != "" && e.Caller != filter.Caller {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.Resource != "" && e.Resource != filter.Resource {
				continue
			}
			if filter.Decision != "" && e.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && e.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyDecisionLog(e))
	}
	if filter != nil {
		result = applyPagination(result, pagOpts{limit: filter.Limit, offset: filter.Offset})
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	list, err := s.ListDecisionLogs(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeDecisionLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.decisionLogs {
		if e.CreatedAt.Before(before) {
			delete(s.decisionLogs, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteDecisionLogsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.decisionLogs {
		if e.TenantID == tenantID {
			delete(s.decisionLogs, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func copyUser(u *user.User) *user.User {
	c := *u
	c.Metadata = copyMeta(u.Metadata)
	return &c
}

func copyAccessKey(k *user.AccessKey) *user.AccessKey {
	c := *k
	return &c
}

func copyPolicy(p *policy.Policy) *policy.Policy {
	c := *p
	c.Metadata = copyMeta(p.Metadata)
	return &c
}

func copyTenant(t *tenant.Tenant) *tenant.Tenant {
	c := *t
	if t.AdminPrincipals != nil {
		c.AdminPrincipals = append([]string(nil), t.AdminPrincipals...)
	}
	c.Metadata = copyMeta(t.Metadata)
	return &c
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyDecisionLog(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	c.Metadata = copyMeta(e.Metadata)
	return &c
}

func removeString(list []string, target string) []string {
	for i, v := range list {
		if v == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}
