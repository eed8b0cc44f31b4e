package wami

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/store"
)

// authStore implements only the store methods the authorize path
// touches; everything else panics through the embedded nil interface.
type authStore struct {
	store.Store

	attached map[string][]string       // principal -> attached policy ARNs
	managed  map[string]*policy.Policy // policy ARN -> policy
	inline   map[string]string         // principal/name -> document
	inlineBy map[string][]string       // principal -> inline names
	logs     []*decisionlog.Entry

	listErr error
}

func newAuthStore() *authStore {
	return &authStore{
		attached: map[string][]string{},
		managed:  map[string]*policy.Policy{},
		inline:   map[string]string{},
		inlineBy: map[string][]string{},
	}
}

func (s *authStore) attach(principal, policyARN, document string) {
	s.attached[principal] = append(s.attached[principal], policyARN)
	s.managed[policyARN] = &policy.Policy{ARN: policyARN, Document: document}
}

func (s *authStore) putInline(principal, name, document string) {
	s.inline[principal+"/"+name] = document
	s.inlineBy[principal] = append(s.inlineBy[principal], name)
}

func (s *authStore) ListAttachedUserPolicies(_ context.Context, _, userName string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.attached[userName], nil
}

func (s *authStore) GetPolicyByARN(_ context.Context, policyARN string) (*policy.Policy, error) {
	p, ok := s.managed[policyARN]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyARN, store.ErrNotFound)
	}
	return p, nil
}

func (s *authStore) ListUserPolicies(_ context.Context, _, userName string) ([]string, error) {
	return s.inlineBy[userName], nil
}

func (s *authStore) GetUserPolicy(_ context.Context, _, userName, policyName string) (string, error) {
	doc, ok := s.inline[userName+"/"+policyName]
	if !ok {
		return "", fmt.Errorf("inline policy %s: %w", policyName, store.ErrNotFound)
	}
	return doc, nil
}

func (s *authStore) CreateDecisionLog(_ context.Context, e *decisionlog.Entry) error {
	s.logs = append(s.logs, e)
	return nil
}

func resourceARN(t *testing.T) arn.ARN {
	t.Helper()
	a, err := arn.Parse("arn:wami:iam:12345678/87654321:wami:999888777:bucket/reports")
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func newTestAuthorizer(t *testing.T, s store.Store, opts ...Option) *Authorizer {
	t.Helper()
	a, err := New(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAuthorizeRootBypass(t *testing.T) {
	// Root succeeds with zero policies and no store reads.
	a := newTestAuthorizer(t, newAuthStore())

	result, err := a.Authorize(context.Background(), testContext(t, true), "iam:DeleteTenant", resourceARN(t))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Decision != DecisionAllowRoot {
		t.Errorf("result = %+v", result)
	}
}

func TestAuthorizeNonUserCaller(t *testing.T) {
	a := newTestAuthorizer(t, newAuthStore())

	roleARN, err := arn.Parse("arn:wami:iam:12345678/87654321:wami:999888777:role/admin")
	if err != nil {
		t.Fatal(err)
	}
	wctx, err := NewContextBuilder().
		TenantPath("12345678", "87654321").
		InstanceID("999888777").
		CallerARN(roleARN).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Authorize(context.Background(), wctx, "iam:GetUser", resourceARN(t))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestAuthorizeManagedAllow(t *testing.T) {
	s := newAuthStore()
	s.attach("77557755", "arn:pol-1", `{"Statement":[{"Effect":"Allow","Action":"iam:Get*","Resource":"*"}]}`)
	a := newTestAuthorizer(t, s)

	result, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Decision != DecisionAllow {
		t.Errorf("result = %+v", result)
	}
}

func TestAuthorizeImplicitDeny(t *testing.T) {
	a := newTestAuthorizer(t, newAuthStore())

	result, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyDefault {
		t.Errorf("result = %+v", result)
	}
}

// An explicit deny in an earlier policy wins even when a later policy
// would allow.
func TestAuthorizeDenyShortCircuits(t *testing.T) {
	s := newAuthStore()
	s.attach("77557755", "arn:pol-deny", `{"Statement":[{"Effect":"Deny","Action":"iam:*","Resource":"*"}]}`)
	s.attach("77557755", "arn:pol-allow", `{"Statement":[{"Effect":"Allow","Action":"*","Resource":"*"}]}`)
	a := newTestAuthorizer(t, s)

	result, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyExplicit {
		t.Errorf("result = %+v", result)
	}
}

// Managed policies are consulted before inline ones.
func TestAuthorizeInlineAfterManaged(t *testing.T) {
	s := newAuthStore()
	s.attach("77557755", "arn:pol-1", `{"Statement":[{"Effect":"Allow","Action":"s3:*","Resource":"*"}]}`)
	s.putInline("77557755", "inline-1", `{"Statement":[{"Effect":"Allow","Action":"iam:GetUser","Resource":"*"}]}`)
	a := newTestAuthorizer(t, s)

	result, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Errorf("inline policy should grant: %+v", result)
	}
}

func TestAuthorizeStoreFailureIsNotAllow(t *testing.T) {
	s := newAuthStore()
	s.listErr = errors.New("connection refused")
	a := newTestAuthorizer(t, s)

	result, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err == nil {
		t.Fatalf("expected error, got %+v", result)
	}
}

func TestAuthorizeMalformedPolicyTolerated(t *testing.T) {
	s := newAuthStore()
	s.attach("77557755", "arn:pol-bad", `{broken`)
	s.attach("77557755", "arn:pol-good", `{"Statement":[{"Effect":"Allow","Action":"iam:GetUser","Resource":"*"}]}`)
	a := newTestAuthorizer(t, s)

	result, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Errorf("malformed policy should be skipped, later allow should stand: %+v", result)
	}
}

func TestAuthorizeMalformedPolicyStrict(t *testing.T) {
	s := newAuthStore()
	s.attach("77557755", "arn:pol-bad", `{broken`)

	strict := false
	a := newTestAuthorizer(t, s, WithConfig(Config{TolerateMalformedPolicies: &strict}))

	_, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestAuthorizeDecisionLog(t *testing.T) {
	s := newAuthStore()
	enabled := true
	a := newTestAuthorizer(t, s, WithConfig(Config{EnableDecisionLog: &enabled}))

	if _, err := a.Authorize(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t)); err != nil {
		t.Fatal(err)
	}
	if len(s.logs) != 1 {
		t.Fatalf("got %d log entries", len(s.logs))
	}
	e := s.logs[0]
	if e.Decision != string(DecisionDenyDefault) || e.Action != "iam:GetUser" {
		t.Errorf("entry = %+v", e)
	}
}

func TestEnforce(t *testing.T) {
	a := newTestAuthorizer(t, newAuthStore())
	wctx := testContext(t, false)

	err := a.Enforce(context.Background(), wctx, "iam:GetUser", resourceARN(t))
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}

	if err := a.Enforce(context.Background(), testContext(t, true), "iam:GetUser", resourceARN(t)); err != nil {
		t.Fatalf("root enforce: %v", err)
	}
}

func TestCan(t *testing.T) {
	s := newAuthStore()
	s.attach("77557755", "arn:pol-1", `{"Statement":[{"Effect":"Allow","Action":"iam:GetUser","Resource":"*"}]}`)
	a := newTestAuthorizer(t, s)

	ok, err := a.Can(context.Background(), testContext(t, false), "iam:GetUser", resourceARN(t))
	if err != nil || !ok {
		t.Fatalf("Can = (%v, %v)", ok, err)
	}
	ok, err = a.Can(context.Background(), testContext(t, false), "iam:DeleteUser", resourceARN(t))
	if err != nil || ok {
		t.Fatalf("Can = (%v, %v)", ok, err)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without a store")
	}
}

type failingShutdownPlugin struct{}

func (failingShutdownPlugin) Name() string { return "failing-shutdown" }

func (failingShutdownPlugin) OnShutdown(context.Context) error {
	return errors.New("shutdown hook failure")
}

func TestWithPluginUsesFinalLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// The plugin option comes before the logger option; the registry
	// must still log through the configured logger.
	a, err := New(
		WithPlugin(failingShutdownPlugin{}),
		WithLogger(logger),
		WithStore(newAuthStore()),
	)
	if err != nil {
		t.Fatal(err)
	}
	if a.Plugins() == nil {
		t.Fatal("registry must be built for registered plugins")
	}

	if err := a.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "plugin hook error") {
		t.Errorf("hook failure must reach the configured logger, got %q", buf.String())
	}
}
