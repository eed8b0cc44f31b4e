package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/store"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &user.User{
		ID:       id.NewUserID(),
		TenantID: "12345678",
		Name:     "alice",
		Path:     "/engineering/",
	}

	// Create
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "alice" {
		t.Fatalf("expected alice, got %s", got.Name)
	}

	// GetByName
	got, err = s.GetUserByName(ctx, "12345678", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID {
		t.Fatal("name lookup mismatch")
	}

	// Update
	u.Path = "/platform/"
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUser(ctx, u.ID)
	if got.Path != "/platform/" {
		t.Fatal("update failed")
	}

	// List with path prefix
	list, _ := s.ListUsers(ctx, &user.ListFilter{TenantID: "12345678", PathPrefix: "/platform/"})
	if len(list) != 1 {
		t.Fatalf("expected 1 user, got %d", len(list))
	}

	// Count
	count, _ := s.CountUsers(ctx, &user.ListFilter{TenantID: "12345678"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Delete
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserCopyOnRead(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &user.User{ID: id.NewUserID(), TenantID: "t1", Name: "bob"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetUser(ctx, u.ID)
	got.Name = "mutated"

	again, _ := s.GetUser(ctx, u.ID)
	if again.Name != "bob" {
		t.Fatal("stored user was mutated through a read copy")
	}
}

func TestAccessKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	k := &user.AccessKey{
		ID:       id.NewAccessKeyID(),
		TenantID: "12345678",
		UserName: "alice",
		Status:   user.KeyActive,
	}
	if err := s.CreateAccessKey(ctx, k); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateAccessKeyStatus(ctx, k.ID, user.KeyInactive); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetAccessKey(ctx, k.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != user.KeyInactive {
		t.Fatalf("expected Inactive, got %s", got.Status)
	}

	keys, _ := s.ListAccessKeys(ctx, "12345678", "alice")
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}

	if err := s.DeleteAccessKey(ctx, k.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetAccessKey(ctx, k.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPolicyCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &policy.Policy{
		ID:       id.NewPolicyID(),
		TenantID: "12345678",
		Name:     "readonly",
		ARN:      "arn:wami:iam:12345678:wami:999888777:policy/readonly",
		Document: `{"Version":"2012-10-17","Statement":[]}`,
	}
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPolicy(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "readonly" {
		t.Fatalf("expected readonly, got %s", got.Name)
	}

	got, err = s.GetPolicyByARN(ctx, p.ARN)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Fatal("arn lookup mismatch")
	}

	p.Description = "read-only access"
	if err := s.UpdatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListPolicies(ctx, &policy.ListFilter{TenantID: "12345678"})
	if len(list) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(list))
	}

	if err := s.DeletePolicy(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPolicy(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttachmentsPreserveOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	arns := []string{
		"arn:wami:iam:t1:wami:i1:policy/first",
		"arn:wami:iam:t1:wami:i1:policy/second",
		"arn:wami:iam:t1:wami:i1:policy/third",
	}
	for _, arn := range arns {
		if err := s.AttachUserPolicy(ctx, "t1", "alice", arn); err != nil {
			t.Fatal(err)
		}
	}

	// Attaching an already-attached policy is a no-op.
	if err := s.AttachUserPolicy(ctx, "t1", "alice", arns[0]); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListAttachedUserPolicies(ctx, "t1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 attachments, got %d", len(got))
	}
	for i, arn := range arns {
		if got[i] != arn {
			t.Fatalf("attachment order broken at %d: got %s", i, got[i])
		}
	}

	if err := s.DetachUserPolicy(ctx, "t1", "alice", arns[1]); err != nil {
		t.Fatal(err)
	}
	got, _ = s.ListAttachedUserPolicies(ctx, "t1", "alice")
	if len(got) != 2 || got[0] != arns[0] || got[1] != arns[2] {
		t.Fatalf("unexpected attachments after detach: %v", got)
	}
}

func TestAttachmentCountTracking(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &policy.Policy{
		ID:       id.NewPolicyID(),
		TenantID: "t1",
		Name:     "shared",
		ARN:      "arn:wami:iam:t1:wami:i1:policy/shared",
	}
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	_ = s.AttachUserPolicy(ctx, "t1", "alice", p.ARN)
	_ = s.AttachUserPolicy(ctx, "t1", "bob", p.ARN)

	got, _ := s.GetPolicy(ctx, p.ID)
	if got.AttachmentCount != 2 {
		t.Fatalf("expected attachment count 2, got %d", got.AttachmentCount)
	}

	_ = s.DetachUserPolicy(ctx, "t1", "alice", p.ARN)
	got, _ = s.GetPolicy(ctx, p.ID)
	if got.AttachmentCount != 1 {
		t.Fatalf("expected attachment count 1, got %d", got.AttachmentCount)
	}
}

func TestInlinePolicies(t *testing.T) {
	ctx := context.Background()
	s := New()

	doc := `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"s3:Get*","Resource":"*"}]}`
	if err := s.PutUserPolicy(ctx, "t1", "alice", "s3-read", doc); err != nil {
		t.Fatal(err)
	}
	if err := s.PutUserPolicy(ctx, "t1", "alice", "audit", doc); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetUserPolicy(ctx, "t1", "alice", "s3-read")
	if err != nil {
		t.Fatal(err)
	}
	if got != doc {
		t.Fatal("document mismatch")
	}

	// Put with the same name replaces in place.
	if err := s.PutUserPolicy(ctx, "t1", "alice", "s3-read", "{}"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetUserPolicy(ctx, "t1", "alice", "s3-read")
	if got != "{}" {
		t.Fatal("replace failed")
	}

	names, _ := s.ListUserPolicies(ctx, "t1", "alice")
	if len(names) != 2 || names[0] != "s3-read" || names[1] != "audit" {
		t.Fatalf("unexpected inline policy names: %v", names)
	}

	if err := s.DeleteUserPolicy(ctx, "t1", "alice", "audit"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetUserPolicy(ctx, "t1", "alice", "audit"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserRemovesPrincipalData(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &user.User{ID: id.NewUserID(), TenantID: "t1", Name: "alice"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	_ = s.AttachUserPolicy(ctx, "t1", "alice", "arn:wami:iam:t1:wami:i1:policy/p")
	_ = s.PutUserPolicy(ctx, "t1", "alice", "inline", "{}")
	_ = s.CreateAccessKey(ctx, &user.AccessKey{ID: id.NewAccessKeyID(), TenantID: "t1", UserName: "alice"})

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}

	attached, _ := s.ListAttachedUserPolicies(ctx, "t1", "alice")
	if len(attached) != 0 {
		t.Fatal("attachments survived user deletion")
	}
	inline, _ := s.ListUserPolicies(ctx, "t1", "alice")
	if len(inline) != 0 {
		t.Fatal("inline policies survived user deletion")
	}
	keys, _ := s.ListAccessKeys(ctx, "t1", "alice")
	if len(keys) != 0 {
		t.Fatal("access keys survived user deletion")
	}
}

func TestTenantCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	parent := &tenant.Tenant{
		ID:     tenant.ID("12345678"),
		Name:   "acme",
		Status: tenant.StatusActive,
	}
	child := &tenant.Tenant{
		ID:       tenant.ID("12345678/87654321"),
		Name:     "acme-eng",
		ParentID: &parent.ID,
		Status:   tenant.StatusActive,
	}
	if err := s.CreateTenant(ctx, parent); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateTenant(ctx, child); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTenant(ctx, parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "acme" {
		t.Fatalf("expected acme, got %s", got.Name)
	}

	children, err := s.ListChildTenants(ctx, parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != child.ID {
		t.Fatalf("unexpected children: %v", children)
	}

	parent.Status = tenant.StatusSuspended
	if err := s.UpdateTenant(ctx, parent); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListTenants(ctx, &tenant.ListFilter{Status: tenant.StatusSuspended})
	if len(list) != 1 {
		t.Fatalf("expected 1 suspended tenant, got %d", len(list))
	}

	if err := s.DeleteTenant(ctx, child.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTenant(ctx, child.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecisionLogQueryAndPurge(t *testing.T) {
	ctx := context.Background()
	s := New()

	now := time.Now()
	old := &decisionlog.Entry{
		ID:        id.NewDecisionLogID(),
		TenantID:  "t1",
		Caller:    "alice",
		Action:    "s3:GetObject",
		Decision:  "allow",
		CreatedAt: now.Add(-48 * time.Hour),
	}
	recent := &decisionlog.Entry{
		ID:        id.NewDecisionLogID(),
		TenantID:  "t1",
		Caller:    "bob",
		Action:    "s3:PutObject",
		Decision:  "deny_default",
		CreatedAt: now,
	}
	if err := s.CreateDecisionLog(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateDecisionLog(ctx, recent); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{TenantID: "t1", Caller: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Decision != "deny_default" {
		t.Fatalf("unexpected entries: %v", list)
	}

	count, _ := s.CountDecisionLogs(ctx, &decisionlog.QueryFilter{TenantID: "t1"})
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}

	purged, err := s.PurgeDecisionLogs(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
	if _, err := s.GetDecisionLog(ctx, old.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 5; i++ {
		u := &user.User{ID: id.NewUserID(), TenantID: "t1", Name: "u" + string(rune('a'+i))}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	page, _ := s.ListUsers(ctx, &user.ListFilter{TenantID: "t1", Limit: 2})
	if len(page) != 2 {
		t.Fatalf("expected 2 users, got %d", len(page))
	}
	page, _ = s.ListUsers(ctx, &user.ListFilter{TenantID: "t1", Limit: 2, Offset: 4})
	if len(page) != 1 {
		t.Fatalf("expected 1 user, got %d", len(page))
	}
	page, _ = s.ListUsers(ctx, &user.ListFilter{TenantID: "t1", Offset: 10})
	if len(page) != 0 {
		t.Fatalf("expected 0 users, got %d", len(page))
	}
}
