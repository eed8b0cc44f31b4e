package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/wami/id"
	"github.com/xraph/wami/user"
)

// testPlugin implements Plugin + UserCreated + AfterAuthorize.
type testPlugin struct {
	userCreatedCalled    bool
	afterAuthorizeCalled bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnUserCreated(_ context.Context, _ *user.User) error {
	t.userCreatedCalled = true
	return nil
}

func (t *testPlugin) OnAfterAuthorize(_ context.Context, _ any, _, _ string, _ any) error {
	t.afterAuthorizeCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch UserCreated to testPlugin only.
	reg.EmitUserCreated(ctx, &user.User{ID: id.NewUserID(), Name: "alice"})
	if !tp.userCreatedCalled {
		t.Fatal("OnUserCreated was not called")
	}

	// Should dispatch AfterAuthorize.
	reg.EmitAfterAuthorize(ctx, nil, "iam:GetUser", "arn", nil)
	if !tp.afterAuthorizeCalled {
		t.Fatal("OnAfterAuthorize was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeAuthorize(ctx, nil, "iam:GetUser", "arn")
	reg.EmitUserDeleted(ctx, id.NewUserID())
	reg.EmitShutdown(ctx)
}
