package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/wami/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"UserID", id.NewUserID, "usr_"},
		{"AccessKeyID", id.NewAccessKeyID, "akey_"},
		{"PolicyID", id.NewPolicyID, "pol_"},
		{"DecisionLogID", id.NewDecisionLogID, "declog_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixUser)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixUser {
		t.Errorf("expected prefix %q, got %q", id.PrefixUser, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"UserID", id.NewUserID, id.ParseUserID},
		{"AccessKeyID", id.NewAccessKeyID, id.ParseAccessKeyID},
		{"PolicyID", id.NewPolicyID, id.ParsePolicyID},
		{"DecisionLogID", id.NewDecisionLogID, id.ParseDecisionLogID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	userID := id.NewUserID()
	if _, err := id.ParsePolicyID(userID.String()); err == nil {
		t.Fatal("expected prefix mismatch error parsing a user ID as a policy ID")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Fatal("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil ID should render empty, got %q", i.String())
	}
}
