package wami

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/tenant"
)

func testCallerARN(t *testing.T) arn.ARN {
	t.Helper()
	a, err := arn.Parse("arn:wami:iam:12345678/87654321:wami:999888777:user/77557755")
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func testContext(t *testing.T, root bool) *Context {
	t.Helper()
	wctx, err := NewContextBuilder().
		TenantPath("12345678", "87654321").
		InstanceID("999888777").
		CallerARN(testCallerARN(t)).
		Root(root).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return wctx
}

func TestContextBuilderValidation(t *testing.T) {
	caller := testCallerARN(t)

	if _, err := NewContextBuilder().InstanceID("9").CallerARN(caller).Build(); err == nil {
		t.Error("missing tenant path must fail")
	}
	if _, err := NewContextBuilder().TenantPath("1").CallerARN(caller).Build(); err == nil {
		t.Error("missing instance id must fail")
	}
	if _, err := NewContextBuilder().TenantPath("1").InstanceID("9").Build(); err == nil {
		t.Error("missing caller ARN must fail")
	}
}

func TestContextBuilderMalformedTenantID(t *testing.T) {
	caller := testCallerARN(t)

	_, err := NewContextBuilder().
		TenantID("12345678//87654321").
		InstanceID("9").
		CallerARN(caller).
		Build()
	if err == nil {
		t.Fatal("malformed tenant id must fail")
	}
	if !strings.Contains(err.Error(), "12345678//87654321") {
		t.Errorf("error must name the rejected tenant id, got %v", err)
	}

	// A later valid TenantID does not clear the recorded failure.
	_, err = NewContextBuilder().
		TenantID("").
		TenantID("12345678").
		InstanceID("9").
		CallerARN(caller).
		Build()
	if !errors.Is(err, tenant.ErrEmptyPath) {
		t.Errorf("error = %v, want ErrEmptyPath", err)
	}
}

func TestContextAccessors(t *testing.T) {
	wctx := testContext(t, false)

	if wctx.TenantID() != "12345678/87654321" {
		t.Errorf("TenantID = %q", wctx.TenantID())
	}
	if wctx.InstanceID() != "999888777" {
		t.Errorf("InstanceID = %q", wctx.InstanceID())
	}
	if wctx.IsRoot() {
		t.Error("IsRoot = true")
	}
	if wctx.Session() != nil {
		t.Error("Session should be nil")
	}

	// Mutating the returned path must not affect the context.
	p := wctx.TenantPath()
	p[0] = "mutated"
	if wctx.TenantID() != "12345678/87654321" {
		t.Error("TenantPath must return a copy")
	}
}

func TestCanAccessTenant(t *testing.T) {
	wctx := testContext(t, false)
	root := testContext(t, true)

	tests := []struct {
		target string
		want   bool
	}{
		{"12345678/87654321", true},            // own tenant
		{"12345678/87654321/99999999", true},   // descendant
		{"12345678", false},                    // ancestor
		{"12345678/11111111", false},           // sibling
		{"99999999", false},                    // unrelated
		{"12345678/876543219999", false},       // shares string prefix, not a segment prefix
	}

	for _, tt := range tests {
		target, err := tenant.ParsePath(tt.target)
		if err != nil {
			t.Fatal(err)
		}
		if got := wctx.CanAccessTenant(target); got != tt.want {
			t.Errorf("CanAccessTenant(%q) = %v, want %v", tt.target, got, tt.want)
		}
		if !root.CanAccessTenant(target) {
			t.Errorf("root must access %q", tt.target)
		}
	}
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()

	wctx, err := NewContextBuilder().
		TenantPath("12345678").
		InstanceID("999888777").
		CallerARN(testCallerARN(t)).
		Session(&Session{Token: "tok", Expiration: now.Unix() + 3600}).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if wctx.IsExpiredAt(now) {
		t.Error("session should not be expired yet")
	}
	if !wctx.IsExpiredAt(now.Add(2 * time.Hour)) {
		t.Error("session should be expired")
	}

	// Zero expiration never expires.
	forever, err := NewContextBuilder().
		TenantPath("12345678").
		InstanceID("999888777").
		CallerARN(testCallerARN(t)).
		Session(&Session{Token: "tok"}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if forever.IsExpiredAt(now.Add(1000 * time.Hour)) {
		t.Error("zero expiration must never expire")
	}
}

func TestContextPlumbing(t *testing.T) {
	wctx := testContext(t, false)
	ctx := WithContext(context.Background(), wctx)

	got, ok := FromContext(ctx)
	if !ok || got != wctx {
		t.Fatal("FromContext must return the stored context")
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context must not carry a caller")
	}
}

func TestTenantFromContext(t *testing.T) {
	ctx := WithTenant(context.Background(), "12345678")
	if got := TenantFromContext(ctx); got != "12345678" {
		t.Errorf("TenantFromContext = %q", got)
	}
	if got := TenantFromContext(context.Background()); got != "" {
		t.Errorf("unscoped context = %q", got)
	}
}
