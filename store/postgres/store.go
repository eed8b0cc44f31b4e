// Package postgres provides a PostgreSQL implementation of the WAMI
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/store"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite WAMI store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("wami: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("wami: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m := userToModel(u)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*user.User, error) {
	m := new(userModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", userID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get user: %w", err)
	}
	return userFromModel(m), nil
}

func (s *Store) GetUserByName(ctx context.Context, tenantID, name string) (*user.User, error) {
	m := new(userModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get user by name: %w", err)
	}
	return userFromModel(m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	m := userToModel(u)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("wami: update user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID id.UserID) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("wami: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewDelete((*attachmentModel)(nil)).
		Where("tenant_id = ?", u.TenantID).
		Where("user_name = ?", u.Name).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user attachments: %w", err)
	}
	if _, err := tx.NewDelete((*inlinePolicyModel)(nil)).
		Where("tenant_id = ?", u.TenantID).
		Where("user_name = ?", u.Name).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user inline policies: %w", err)
	}
	if _, err := tx.NewDelete((*accessKeyModel)(nil)).
		Where("tenant_id = ?", u.TenantID).
		Where("user_name = ?", u.Name).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user access keys: %w", err)
	}
	if _, err := tx.NewDelete((*userModel)(nil)).
		Where("id = ?", userID.String()).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wami: commit delete user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter *user.ListFilter) ([]*user.User, error) {
	var models []userModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PathPrefix != "" {
			q = q.Where("path LIKE ?", filter.PathPrefix+"%")
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("wami: list users: %w", err)
	}
	result := make([]*user.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountUsers(ctx context.Context, filter *user.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*userModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PathPrefix != "" {
			q = q.Where("path LIKE ?", filter.PathPrefix+"%")
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count users: %w", err)
	}
	return count, nil
}

func (s *Store) CreateAccessKey(ctx context.Context, k *user.AccessKey) error {
	k.CreatedAt = time.Now().UTC()
	m := accessKeyToModel(k)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create access key: %w", err)
	}
	return nil
}

func (s *Store) GetAccessKey(ctx context.Context, keyID id.AccessKeyID) (*user.AccessKey, error) {
	m := new(accessKeyModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", keyID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("access key %s: %w", keyID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get access key: %w", err)
	}
	return accessKeyFromModel(m), nil
}

func (s *Store) UpdateAccessKeyStatus(ctx context.Context, keyID id.AccessKeyID, status user.KeyStatus) error {
	res, err := s.pgdb.NewUpdate((*accessKeyModel)(nil)).
		Set("status = ?", string(status)).
		Where("id = ?", keyID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: update access key status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("access key %s: %w", keyID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteAccessKey(ctx context.Context, keyID id.AccessKeyID) error {
	if _, err := s.pgdb.NewDelete((*accessKeyModel)(nil)).
		Where("id = ?", keyID.String()).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete access key: %w", err)
	}
	return nil
}

func (s *Store) ListAccessKeys(ctx context.Context, tenantID, userName string) ([]*user.AccessKey, error) {
	var models []accessKeyModel
	err := s.pgdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("user_name = ?", userName).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wami: list access keys: %w", err)
	}
	result := make([]*user.AccessKey, len(models))
	for i := range models {
		result[i] = accessKeyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteUsersByTenant(ctx context.Context, tenantID string) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("wami: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	for _, model := range []any{
		(*attachmentModel)(nil),
		(*inlinePolicyModel)(nil),
		(*accessKeyModel)(nil),
		(*userModel)(nil),
	} {
		if _, err := tx.NewDelete(model).Where("tenant_id = ?", tenantID).Exec(ctx); err != nil {
			return fmt.Errorf("wami: delete users by tenant: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wami: commit delete users by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m := policyToModel(p)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, policyID id.PolicyID) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", policyID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", policyID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get policy: %w", err)
	}
	return policyFromModel(m), nil
}

func (s *Store) GetPolicyByARN(ctx context.Context, arn string) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).Where("arn = ?", arn).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %q: %w", arn, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get policy by arn: %w", err)
	}
	return policyFromModel(m), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	p.UpdatedAt = time.Now().UTC()
	m := policyToModel(p)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("wami: update policy: %w", err)
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, policyID id.PolicyID) error {
	p, err := s.GetPolicy(ctx, policyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("wami: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewDelete((*attachmentModel)(nil)).
		Where("policy_arn = ?", p.ARN).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete policy attachments: %w", err)
	}
	if _, err := tx.NewDelete((*policyModel)(nil)).
		Where("id = ?", policyID.String()).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete policy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wami: commit delete policy: %w", err)
	}
	return nil
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	var models []policyModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PathPrefix != "" {
			q = q.Where("path LIKE ?", filter.PathPrefix+"%")
		}
		if filter.OnlyAttached {
			q = q.Where("attachment_count > 0")
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("wami: list policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*policyModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PathPrefix != "" {
			q = q.Where("path LIKE ?", filter.PathPrefix+"%")
		}
		if filter.OnlyAttached {
			q = q.Where("attachment_count > 0")
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count policies: %w", err)
	}
	return count, nil
}

func (s *Store) AttachUserPolicy(ctx context.Context, tenantID, userName, policyARN string) error {
	m := &attachmentModel{
		TenantID:   tenantID,
		UserName:   userName,
		PolicyARN:  policyARN,
		AttachedAt: time.Now().UTC(),
	}
	res, err := s.pgdb.NewInsert(m).
		OnConflict("(tenant_id, user_name, policy_arn) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: attach user policy: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		if _, err := s.pgdb.NewUpdate((*policyModel)(nil)).
			Set("attachment_count = attachment_count + 1").
			Where("arn = ?", policyARN).
			Exec(ctx); err != nil {
			return fmt.Errorf("wami: bump attachment count: %w", err)
		}
	}
	return nil
}

func (s *Store) DetachUserPolicy(ctx context.Context, tenantID, userName, policyARN string) error {
	res, err := s.pgdb.NewDelete((*attachmentModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("user_name = ?", userName).
		Where("policy_arn = ?", policyARN).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: detach user policy: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		if _, err := s.pgdb.NewUpdate((*policyModel)(nil)).
			Set("attachment_count = attachment_count - 1").
			Where("arn = ?", policyARN).
			Where("attachment_count > 0").
			Exec(ctx); err != nil {
			return fmt.Errorf("wami: drop attachment count: %w", err)
		}
	}
	return nil
}

func (s *Store) ListAttachedUserPolicies(ctx context.Context, tenantID, userName string) ([]string, error) {
	var models []attachmentModel
	err := s.pgdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("user_name = ?", userName).
		OrderExpr("attached_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wami: list attached user policies: %w", err)
	}
	arns := make([]string, len(models))
	for i := range models {
		arns[i] = models[i].PolicyARN
	}
	return arns, nil
}

func (s *Store) PutUserPolicy(ctx context.Context, tenantID, userName, policyName, document string) error {
	now := time.Now().UTC()
	m := &inlinePolicyModel{
		TenantID:   tenantID,
		UserName:   userName,
		PolicyName: policyName,
		Document:   document,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(tenant_id, user_name, policy_name) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: put user policy: %w", err)
	}
	return nil
}

func (s *Store) GetUserPolicy(ctx context.Context, tenantID, userName, policyName string) (string, error) {
	m := new(inlinePolicyModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("user_name = ?", userName).
		Where("policy_name = ?", policyName).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("inline policy %q: %w", policyName, store.ErrNotFound)
		}
		return "", fmt.Errorf("wami: get user policy: %w", err)
	}
	return m.Document, nil
}

func (s *Store) DeleteUserPolicy(ctx context.Context, tenantID, userName, policyName string) error {
	if _, err := s.pgdb.NewDelete((*inlinePolicyModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("user_name = ?", userName).
		Where("policy_name = ?", policyName).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user policy: %w", err)
	}
	return nil
}

func (s *Store) ListUserPolicies(ctx context.Context, tenantID, userName string) ([]string, error) {
	var models []inlinePolicyModel
	err := s.pgdb.NewSelect(&models).
		Where("tenant_id = ?", tenantID).
		Where("user_name = ?", userName).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wami: list user policies: %w", err)
	}
	names := make([]string, len(models))
	for i := range models {
		names[i] = models[i].PolicyName
	}
	return names, nil
}

func (s *Store) DeletePoliciesByTenant(ctx context.Context, tenantID string) error {
	if _, err := s.pgdb.NewDelete((*policyModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete policies by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Tenant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	m := tenantToModel(t)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create tenant: %w", err)
	}
	return nil
}

func (s *Store) GetTenant(ctx context.Context, tenantID tenant.ID) (*tenant.Tenant, error) {
	m := new(tenantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", string(tenantID)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get tenant: %w", err)
	}
	return tenantFromModel(m), nil
}

func (s *Store) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	t.UpdatedAt = time.Now().UTC()
	m := tenantToModel(t)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("wami: update tenant: %w", err)
	}
	return nil
}

func (s *Store) DeleteTenant(ctx context.Context, tenantID tenant.ID) error {
	if _, err := s.pgdb.NewDelete((*tenantModel)(nil)).
		Where("id = ?", string(tenantID)).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete tenant: %w", err)
	}
	return nil
}

func (s *Store) ListTenants(ctx context.Context, filter *tenant.ListFilter) ([]*tenant.Tenant, error) {
	var models []tenantModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.ParentID != nil {
			q = q.Where("parent_id = ?", string(*filter.ParentID))
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("wami: list tenants: %w", err)
	}
	result := make([]*tenant.Tenant, len(models))
	for i := range models {
		result[i] = tenantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountTenants(ctx context.Context, filter *tenant.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*tenantModel)(nil))
	if filter != nil {
		if filter.ParentID != nil {
			q = q.Where("parent_id = ?", string(*filter.ParentID))
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count tenants: %w", err)
	}
	return count, nil
}

func (s *Store) ListChildTenants(ctx context.Context, parentID tenant.ID) ([]*tenant.Tenant, error) {
	var models []tenantModel
	err := s.pgdb.NewSelect(&models).
		Where("parent_id = ?", string(parentID)).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wami: list child tenants: %w", err)
	}
	result := make([]*tenant.Tenant, len(models))
	for i := range models {
		result[i] = tenantFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m := decisionLogToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	m := new(decisionLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get decision log: %w", err)
	}
	return decisionLogFromModel(m), nil
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Caller != "" {
			q = q.Where("caller = ?", filter.Caller)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Resource != "" {
			q = q.Where("resource = ?", filter.Resource)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("wami: list decision logs: %w", err)
	}
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = decisionLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*decisionLogModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Caller != "" {
			q = q.Where("caller = ?", filter.Caller)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Resource != "" {
			q = q.Where("resource = ?", filter.Resource)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("created_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: purge decision logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // driver cannot report the count
	}
	return n, nil
}

func (s *Store) DeleteDecisionLogsByTenant(ctx context.Context, tenantID string) error {
	if _, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete decision logs by tenant: %w", err)
	}
	return nil
}
