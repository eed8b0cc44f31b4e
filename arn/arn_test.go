package arn

import (
	"testing"

	"github.com/xraph/wami/tenant"
)

func TestParseService(t *testing.T) {
	tests := []struct {
		token string
		want  Service
		known bool
	}{
		{"iam", ServiceIAM, true},
		{"IAM", ServiceIAM, true},
		{"sts", ServiceSTS, true},
		{"sso-admin", ServiceSSOAdmin, true},
		{"billing", Service("billing"), false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got := ParseService(tt.token)
			if got != tt.want {
				t.Errorf("ParseService(%q) = %q, want %q", tt.token, got, tt.want)
			}
			if got.IsKnown() != tt.known {
				t.Errorf("IsKnown(%q) = %v, want %v", got, got.IsKnown(), tt.known)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	base := ARN{
		Service:    ServiceIAM,
		TenantPath: tenant.Path{"1", "2"},
		InstanceID: "999",
		Resource:   Resource{Type: "user", ID: "alice"},
	}

	same := base
	same.TenantPath = tenant.Path{"1", "2"}
	if !base.Equal(same) {
		t.Error("structurally identical ARNs must be equal")
	}

	cloud := base
	cloud.CloudMapping = &CloudMapping{Provider: "aws", AccountID: "1234"}
	if base.Equal(cloud) {
		t.Error("native and cloud-synced ARNs must differ")
	}

	otherRegion := cloud
	otherRegion.CloudMapping = &CloudMapping{Provider: "aws", AccountID: "1234", Region: "us-east-1"}
	if cloud.Equal(otherRegion) {
		t.Error("region difference must break equality")
	}

	otherTenant := base
	otherTenant.TenantPath = tenant.Path{"1"}
	if base.Equal(otherTenant) {
		t.Error("tenant path difference must break equality")
	}
}

func TestAccessors(t *testing.T) {
	a := ARN{
		Service:      ServiceIAM,
		TenantPath:   tenant.Path{"1"},
		InstanceID:   "999",
		CloudMapping: &CloudMapping{Provider: "gcp", AccountID: "proj-1"},
		Resource:     Resource{Type: "user", ID: "alice"},
	}
	if !a.IsCloudSynced() {
		t.Error("expected cloud-synced")
	}
	provider, ok := a.Provider()
	if !ok || provider != "gcp" {
		t.Errorf("Provider() = %q, %v", provider, ok)
	}
	if a.ResourceType() != "user" || a.ResourceID() != "alice" {
		t.Errorf("resource accessors = %q/%q", a.ResourceType(), a.ResourceID())
	}

	native := a
	native.CloudMapping = nil
	if native.IsCloudSynced() {
		t.Error("expected native")
	}
	if _, ok := native.Provider(); ok {
		t.Error("native ARN must not report a provider")
	}
}

func TestTextMarshalling(t *testing.T) {
	a, err := NewBuilder().
		Service(ServiceIAM).
		Tenant("12345678").
		InstanceID("999888777").
		Resource("user", "alice").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	text, err := a.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var decoded ARN
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(a) {
		t.Errorf("text round-trip mismatch: %s != %s", decoded, a)
	}
}
