package tenant

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestParsePath(t *testing.T) {
	p, err := ParsePath("12345678/87654321/99999999")
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(p))
	}
	if p.String() != "12345678/87654321/99999999" {
		t.Errorf("round-trip mismatch: %q", p.String())
	}
}

func TestParsePathRejectsEmpty(t *testing.T) {
	if _, err := ParsePath(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
	if _, err := ParsePath("a//b"); err == nil {
		t.Fatal("expected error for empty segment")
	}
	if _, err := NewPath(); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestPathStartsWith(t *testing.T) {
	base := Path{"12345678"}
	tests := []struct {
		path   Path
		prefix Path
		want   bool
	}{
		{Path{"12345678"}, base, true},
		{Path{"12345678", "87654321"}, base, true},
		{Path{"99999999"}, base, false},
		{Path{"0"}, base, false},
		{base, Path{"12345678", "87654321"}, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_vs_%s", tt.path, tt.prefix), func(t *testing.T) {
			if got := tt.path.StartsWith(tt.prefix); got != tt.want {
				t.Errorf("StartsWith(%v, %v) = %v, want %v", tt.path, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestPathChildDoesNotAliasParent(t *testing.T) {
	p, _ := NewPath("a", "b")
	c1 := p.Child("c")
	c2 := p.Child("d")
	if c1[2] != "c" || c2[2] != "d" {
		t.Fatalf("child paths alias each other: %v %v", c1, c2)
	}
}

func TestIDDepthAndAncestors(t *testing.T) {
	root := ID("12345678")
	if root.Depth() != 0 {
		t.Errorf("root depth = %d, want 0", root.Depth())
	}
	if !root.IsRoot() {
		t.Error("expected root")
	}
	if got := root.Ancestors(); len(got) != 0 {
		t.Errorf("root should have no ancestors, got %v", got)
	}

	leaf := root.Child("87654321").Child("99999999")
	if leaf != ID("12345678/87654321/99999999") {
		t.Fatalf("unexpected child id %q", leaf)
	}
	if leaf.Depth() != 2 {
		t.Errorf("leaf depth = %d, want 2", leaf.Depth())
	}

	ancestors := leaf.Ancestors()
	if len(ancestors) != 2 {
		t.Fatalf("expected 2 ancestors, got %v", ancestors)
	}
	if ancestors[0] != ID("12345678") || ancestors[1] != ID("12345678/87654321") {
		t.Errorf("ancestors out of order: %v", ancestors)
	}
}

func TestIDParent(t *testing.T) {
	leaf := ID("a/b/c")
	parent, ok := leaf.Parent()
	if !ok || parent != ID("a/b") {
		t.Fatalf("parent = %q, ok = %v", parent, ok)
	}
	if _, ok := ID("a").Parent(); ok {
		t.Fatal("root must not have a parent")
	}
}

func TestIsDescendantOf(t *testing.T) {
	tests := []struct {
		id    ID
		other ID
		want  bool
	}{
		{"a/b", "a", true},
		{"a/b/c", "a", true},
		{"a", "a", false},
		{"a", "a/b", false},
		{"x/b", "a", false},
	}
	for _, tt := range tests {
		if got := tt.id.IsDescendantOf(tt.other); got != tt.want {
			t.Errorf("IsDescendantOf(%q, %q) = %v, want %v", tt.id, tt.other, got, tt.want)
		}
	}
}

func TestIsValidDepth(t *testing.T) {
	leaf := ID("a/b/c")
	if !leaf.IsValidDepth(2) {
		t.Error("depth 2 should be valid for a/b/c")
	}
	if leaf.IsValidDepth(1) {
		t.Error("depth 1 should be invalid for a/b/c")
	}
}

func TestCanCreateChild(t *testing.T) {
	tn := &Tenant{CanCreateSubTenants: true, Status: StatusActive}
	if !tn.CanCreateChild() {
		t.Error("active tenant with flag should allow children")
	}
	tn.Status = StatusSuspended
	if tn.CanCreateChild() {
		t.Error("suspended tenant must not allow children")
	}
	tn.Status = StatusActive
	tn.CanCreateSubTenants = false
	if tn.CanCreateChild() {
		t.Error("flagless tenant must not allow children")
	}
}

// quotaStore is a minimal in-memory Store for quota resolution tests.
type quotaStore struct {
	Store
	tenants map[ID]*Tenant
}

func (s *quotaStore) GetTenant(_ context.Context, tenantID ID) (*Tenant, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant %s: not found", tenantID)
	}
	return t, nil
}

func TestResolveQuotas(t *testing.T) {
	ctx := context.Background()
	rootID := ID("1")
	midID := rootID.Child("2")
	leafID := midID.Child("3")

	rootQuotas := Quotas{MaxUsers: 100}
	midQuotas := Quotas{MaxUsers: 10}

	s := &quotaStore{tenants: map[ID]*Tenant{
		rootID: {ID: rootID, Quotas: rootQuotas, QuotaMode: QuotaInherited},
		midID:  {ID: midID, ParentID: &rootID, Quotas: midQuotas, QuotaMode: QuotaOverride},
		leafID: {ID: leafID, ParentID: &midID, QuotaMode: QuotaInherited},
	}}

	// Leaf inherits from the overriding middle tenant.
	got, err := ResolveQuotas(ctx, s, leafID)
	if err != nil {
		t.Fatal(err)
	}
	if got != midQuotas {
		t.Errorf("leaf quotas = %+v, want %+v", got, midQuotas)
	}

	// Root resolves to itself even in inherited mode.
	got, err = ResolveQuotas(ctx, s, rootID)
	if err != nil {
		t.Fatal(err)
	}
	if got != rootQuotas {
		t.Errorf("root quotas = %+v, want %+v", got, rootQuotas)
	}
}

func TestResolveQuotasDanglingParent(t *testing.T) {
	ctx := context.Background()
	missing := ID("gone")
	childID := ID("gone/child")
	s := &quotaStore{tenants: map[ID]*Tenant{
		childID: {ID: childID, ParentID: &missing, QuotaMode: QuotaInherited},
	}}
	if _, err := ResolveQuotas(ctx, s, childID); err == nil {
		t.Fatal("expected error for dangling parent reference")
	}
}
