// Package mongo provides a MongoDB implementation of the WAMI
// composite store backed by the grove mongo driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/store"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// Collection name constants.
const (
	colUsers          = "wami_users"
	colAccessKeys     = "wami_access_keys"
	colPolicies       = "wami_policies"
	colAttachments    = "wami_policy_attachments"
	colInlinePolicies = "wami_inline_policies"
	colTenants        = "wami_tenants"
	colDecisionLogs   = "wami_decision_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite WAMI store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all WAMI collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("wami/mongo: migrate %s indexes: %w", col, err)
		}
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

func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all WAMI collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "path", Value: 1}}},
		},
		colAccessKeys: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_name", Value: 1}}},
		},
		colPolicies: {
			{
				Keys:    bson.D{{Key: "arn", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "path", Value: 1}}},
		},
		colAttachments: {
			{
				Keys: bson.D{
					{Key: "tenant_id", Value: 1},
					{Key: "user_name", Value: 1},
					{Key: "policy_arn", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_name", Value: 1}, {Key: "attached_at", Value: 1}}},
			{Keys: bson.D{{Key: "policy_arn", Value: 1}}},
		},
		colInlinePolicies: {
			{
				Keys: bson.D{
					{Key: "tenant_id", Value: 1},
					{Key: "user_name", Value: 1},
					{Key: "policy_name", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		colTenants: {
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colDecisionLogs: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "caller", Value: 1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	t := now()
	u.CreatedAt = t
	u.UpdatedAt = t
	m := userToModel(u)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*user.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get user: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) GetUserByName(ctx context.Context, tenantID, name string) (*user.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get user by name: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	u.UpdatedAt = now()
	m := userToModel(u)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: update user: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
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
	principal := bson.M{"tenant_id": u.TenantID, "user_name": u.Name}

	if _, err := s.mdb.NewDelete((*attachmentModel)(nil)).
		Many().Filter(principal).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user attachments: %w", err)
	}
	if _, err := s.mdb.NewDelete((*inlinePolicyModel)(nil)).
		Many().Filter(principal).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user inline policies: %w", err)
	}
	if _, err := s.mdb.NewDelete((*accessKeyModel)(nil)).
		Many().Filter(principal).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user access keys: %w", err)
	}
	if _, err := s.mdb.NewDelete((*userModel)(nil)).
		Filter(bson.M{"_id": userID.String()}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user: %w", err)
	}
	return nil
}

func userListFilter(filter *user.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.PathPrefix != "" {
		f["path"] = bson.M{"$regex": "^" + filter.PathPrefix}
	}
	if filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

func (s *Store) ListUsers(ctx context.Context, filter *user.ListFilter) ([]*user.User, error) {
	var models []userModel
	q := s.mdb.NewFind(&models).
		Filter(userListFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*userModel)(nil)).
		Filter(userListFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count users: %w", err)
	}
	return count, nil
}

func (s *Store) CreateAccessKey(ctx context.Context, k *user.AccessKey) error {
	k.CreatedAt = now()
	m := accessKeyToModel(k)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create access key: %w", err)
	}
	return nil
}

func (s *Store) GetAccessKey(ctx context.Context, keyID id.AccessKeyID) (*user.AccessKey, error) {
	var m accessKeyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": keyID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("access key %s: %w", keyID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get access key: %w", err)
	}
	return accessKeyFromModel(&m), nil
}

func (s *Store) UpdateAccessKeyStatus(ctx context.Context, keyID id.AccessKeyID, status user.KeyStatus) error {
	k, err := s.GetAccessKey(ctx, keyID)
	if err != nil {
		return err
	}
	k.Status = status
	m := accessKeyToModel(k)
	if _, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: update access key status: %w", err)
	}
	return nil
}

func (s *Store) DeleteAccessKey(ctx context.Context, keyID id.AccessKeyID) error {
	if _, err := s.mdb.NewDelete((*accessKeyModel)(nil)).
		Filter(bson.M{"_id": keyID.String()}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete access key: %w", err)
	}
	return nil
}

func (s *Store) ListAccessKeys(ctx context.Context, tenantID, userName string) ([]*user.AccessKey, error) {
	var models []accessKeyModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "user_name": userName}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
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
	byTenant := bson.M{"tenant_id": tenantID}
	for _, model := range []any{
		(*attachmentModel)(nil),
		(*inlinePolicyModel)(nil),
		(*accessKeyModel)(nil),
		(*userModel)(nil),
	} {
		if _, err := s.mdb.NewDelete(model).Many().Filter(byTenant).Exec(ctx); err != nil {
			return fmt.Errorf("wami: delete users by tenant: %w", err)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	t := now()
	p.CreatedAt = t
	p.UpdatedAt = t
	m := policyToModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, policyID id.PolicyID) (*policy.Policy, error) {
	var m policyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": policyID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("policy %s: %w", policyID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get policy: %w", err)
	}
	return policyFromModel(&m), nil
}

func (s *Store) GetPolicyByARN(ctx context.Context, arn string) (*policy.Policy, error) {
	var m policyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"arn": arn}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("policy %q: %w", arn, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get policy by arn: %w", err)
	}
	return policyFromModel(&m), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	p.UpdatedAt = now()
	m := policyToModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: update policy: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("policy %s: %w", p.ID, store.ErrNotFound)
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
	if _, err := s.mdb.NewDelete((*attachmentModel)(nil)).
		Many().Filter(bson.M{"policy_arn": p.ARN}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete policy attachments: %w", err)
	}
	if _, err := s.mdb.NewDelete((*policyModel)(nil)).
		Filter(bson.M{"_id": policyID.String()}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete policy: %w", err)
	}
	return nil
}

func policyListFilter(filter *policy.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.PathPrefix != "" {
		f["path"] = bson.M{"$regex": "^" + filter.PathPrefix}
	}
	if filter.OnlyAttached {
		f["attachment_count"] = bson.M{"$gt": 0}
	}
	if filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	var models []policyModel
	q := s.mdb.NewFind(&models).
		Filter(policyListFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*policyModel)(nil)).
		Filter(policyListFilter(filter)).
		Count(ctx)
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
		AttachedAt: now(),
	}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return nil // already attached
		}
		return fmt.Errorf("wami: attach user policy: %w", err)
	}
	if err := s.bumpAttachmentCount(ctx, policyARN, 1); err != nil {
		return err
	}
	return nil
}

func (s *Store) DetachUserPolicy(ctx context.Context, tenantID, userName, policyARN string) error {
	res, err := s.mdb.NewDelete((*attachmentModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "user_name": userName, "policy_arn": policyARN}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: detach user policy: %w", err)
	}
	if res.DeletedCount() > 0 {
		if err := s.bumpAttachmentCount(ctx, policyARN, -1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) bumpAttachmentCount(ctx context.Context, policyARN string, delta int) error {
	p, err := s.GetPolicyByARN(ctx, policyARN)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil // attachment without a managed record
		}
		return err
	}
	p.AttachmentCount += delta
	if p.AttachmentCount < 0 {
		p.AttachmentCount = 0
	}
	m := policyToModel(p)
	if _, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: update attachment count: %w", err)
	}
	return nil
}

func (s *Store) ListAttachedUserPolicies(ctx context.Context, tenantID, userName string) ([]string, error) {
	var models []attachmentModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "user_name": userName}).
		Sort(bson.D{{Key: "attached_at", Value: 1}}).
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
	t := now()
	filter := bson.M{"tenant_id": tenantID, "user_name": userName, "policy_name": policyName}

	var existing inlinePolicyModel
	err := s.mdb.NewFind(&existing).Filter(filter).Scan(ctx)
	switch {
	case err == nil:
		existing.Document = document
		existing.UpdatedAt = t
		if _, err := s.mdb.NewUpdate(&existing).Filter(filter).Exec(ctx); err != nil {
			return fmt.Errorf("wami: put user policy: %w", err)
		}
		return nil
	case isNoDocuments(err):
		m := &inlinePolicyModel{
			TenantID:   tenantID,
			UserName:   userName,
			PolicyName: policyName,
			Document:   document,
			CreatedAt:  t,
			UpdatedAt:  t,
		}
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("wami: put user policy: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("wami: put user policy: %w", err)
	}
}

func (s *Store) GetUserPolicy(ctx context.Context, tenantID, userName, policyName string) (string, error) {
	var m inlinePolicyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "user_name": userName, "policy_name": policyName}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return "", fmt.Errorf("inline policy %q: %w", policyName, store.ErrNotFound)
		}
		return "", fmt.Errorf("wami: get user policy: %w", err)
	}
	return m.Document, nil
}

func (s *Store) DeleteUserPolicy(ctx context.Context, tenantID, userName, policyName string) error {
	if _, err := s.mdb.NewDelete((*inlinePolicyModel)(nil)).
		Filter(bson.M{"tenant_id": tenantID, "user_name": userName, "policy_name": policyName}).
		Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete user policy: %w", err)
	}
	return nil
}

func (s *Store) ListUserPolicies(ctx context.Context, tenantID, userName string) ([]string, error) {
	var models []inlinePolicyModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"tenant_id": tenantID, "user_name": userName}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
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
	if _, err := s.mdb.NewDelete((*policyModel)(nil)).
		Many().Filter(bson.M{"tenant_id": tenantID}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete policies by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Tenant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	ts := now()
	t.CreatedAt = ts
	t.UpdatedAt = ts
	m := tenantToModel(t)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create tenant: %w", err)
	}
	return nil
}

func (s *Store) GetTenant(ctx context.Context, tenantID tenant.ID) (*tenant.Tenant, error) {
	var m tenantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": string(tenantID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get tenant: %w", err)
	}
	return tenantFromModel(&m), nil
}

func (s *Store) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	t.UpdatedAt = now()
	m := tenantToModel(t)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wami: update tenant: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("tenant %s: %w", t.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTenant(ctx context.Context, tenantID tenant.ID) error {
	if _, err := s.mdb.NewDelete((*tenantModel)(nil)).
		Filter(bson.M{"_id": string(tenantID)}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete tenant: %w", err)
	}
	return nil
}

func tenantListFilter(filter *tenant.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.ParentID != nil {
		f["parent_id"] = string(*filter.ParentID)
	}
	if filter.Status != "" {
		f["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

func (s *Store) ListTenants(ctx context.Context, filter *tenant.ListFilter) ([]*tenant.Tenant, error) {
	var models []tenantModel
	q := s.mdb.NewFind(&models).
		Filter(tenantListFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*tenantModel)(nil)).
		Filter(tenantListFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count tenants: %w", err)
	}
	return count, nil
}

func (s *Store) ListChildTenants(ctx context.Context, parentID tenant.ID) ([]*tenant.Tenant, error) {
	var models []tenantModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"parent_id": string(parentID)}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
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
		e.CreatedAt = now()
	}
	m := decisionLogToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("wami: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	var m decisionLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("decision log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("wami: get decision log: %w", err)
	}
	return decisionLogFromModel(&m), nil
}

func decisionLogFilter(filter *decisionlog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.Caller != "" {
		f["caller"] = filter.Caller
	}
	if filter.Action != "" {
		f["action"] = filter.Action
	}
	if filter.Resource != "" {
		f["resource"] = filter.Resource
	}
	if filter.Decision != "" {
		f["decision"] = filter.Decision
	}
	created := bson.M{}
	if filter.After != nil {
		created["$gte"] = *filter.After
	}
	if filter.Before != nil {
		created["$lte"] = *filter.Before
	}
	if len(created) > 0 {
		f["created_at"] = created
	}
	return f
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.mdb.NewFind(&models).
		Filter(decisionLogFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*decisionLogModel)(nil)).
		Filter(decisionLogFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("wami: purge decision logs: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteDecisionLogsByTenant(ctx context.Context, tenantID string) error {
	if _, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().Filter(bson.M{"tenant_id": tenantID}).Exec(ctx); err != nil {
		return fmt.Errorf("wami: delete decision logs by tenant: %w", err)
	}
	return nil
}
