package arn

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) ARN {
	t.Helper()
	a, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return a
}

func TestParseNative(t *testing.T) {
	a := mustParse(t, "arn:wami:iam:12345678/87654321:wami:999888777:user/77557755")

	if a.Service != ServiceIAM {
		t.Errorf("service = %q", a.Service)
	}
	if a.TenantPath.String() != "12345678/87654321" {
		t.Errorf("tenant path = %q", a.TenantPath)
	}
	if a.InstanceID != "999888777" {
		t.Errorf("instance id = %q", a.InstanceID)
	}
	if a.IsCloudSynced() {
		t.Error("expected native ARN")
	}
	if a.Resource != (Resource{Type: "user", ID: "77557755"}) {
		t.Errorf("resource = %+v", a.Resource)
	}
}

func TestParseCloudWithRegion(t *testing.T) {
	a := mustParse(t, "arn:wami:iam:12345678/87654321/99999999:wami:999888777:aws:223344556677:us-east-1:user/77557755")

	if !a.IsCloudSynced() {
		t.Fatal("expected cloud-synced ARN")
	}
	cm := a.CloudMapping
	if cm.Provider != "aws" || cm.AccountID != "223344556677" || cm.Region != "us-east-1" {
		t.Errorf("cloud mapping = %+v", cm)
	}
	if a.ResourceType() != "user" {
		t.Errorf("resource type = %q", a.ResourceType())
	}
}

func TestParseCloudGlobalRegion(t *testing.T) {
	a := mustParse(t, "arn:wami:iam:1/2/3:wami:999888777:aws:223344556677:global:user/77557755")

	if !a.IsCloudSynced() {
		t.Fatal("expected cloud-synced ARN")
	}
	if a.CloudMapping.Region != "" {
		t.Errorf("global token must decode to empty region, got %q", a.CloudMapping.Region)
	}
	// Always re-serialized in region form with the global token.
	if got := a.String(); !strings.Contains(got, ":global:") {
		t.Errorf("expected global token in %q", got)
	}
}

func TestParseLegacyCloudWithoutRegion(t *testing.T) {
	// 9-segment legacy form: provider:account directly followed by the resource.
	a := mustParse(t, "arn:wami:iam:12345678:wami:999888777:aws:223344556677:user/77557755")

	if !a.IsCloudSynced() {
		t.Fatal("expected cloud-synced ARN")
	}
	if a.CloudMapping.Region != "" {
		t.Errorf("legacy form has no region, got %q", a.CloudMapping.Region)
	}
	// Legacy input is always written back in region form.
	want := "arn:wami:iam:12345678:wami:999888777:aws:223344556677:global:user/77557755"
	if a.String() != want {
		t.Errorf("re-serialized = %q, want %q", a.String(), want)
	}
}

func TestParseCustomService(t *testing.T) {
	a := mustParse(t, "arn:wami:billing:1:wami:999:invoice/2024-01")
	if a.Service != Service("billing") {
		t.Errorf("service = %q", a.Service)
	}
	if a.Service.IsKnown() {
		t.Error("custom service must not be known")
	}
}

func TestParseResourceIDWithSlashes(t *testing.T) {
	a := mustParse(t, "arn:wami:iam:1:wami:999:policy/engineering/deploy/policy-1")
	if a.Resource.Type != "policy" {
		t.Errorf("type = %q", a.Resource.Type)
	}
	if a.Resource.ID != "engineering/deploy/policy-1" {
		t.Errorf("id = %q", a.Resource.ID)
	}
}

// The disambiguation heuristic is length-based. These fixtures sit exactly
// on the documented 7/9/10 segment boundaries and must not be misread as
// cloud-synced.
func TestParseDisambiguationBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		cloud      bool
		resourceID string
	}{
		{
			name:       "seven_segments_native",
			in:         "arn:wami:iam:1:wami:999:user/77",
			cloud:      false,
			resourceID: "77",
		},
		{
			name: "nine_segments_native_colons_in_resource",
			// Nine segments, but the first remainder segment carries the
			// type/id slash, so this is a native resource with colons in
			// its id, not a legacy cloud form.
			in:         "arn:wami:iam:1:wami:999:user/a:b:c",
			cloud:      false,
			resourceID: "a:b:c",
		},
		{
			name:       "nine_segments_legacy_cloud",
			in:         "arn:wami:iam:1:wami:999:aws:2233:user/77",
			cloud:      true,
			resourceID: "77",
		},
		{
			name:       "ten_segments_cloud_region",
			in:         "arn:wami:iam:1:wami:999:aws:2233:us-east-1:user/77",
			cloud:      true,
			resourceID: "77",
		},
		{
			name: "ten_segments_native_colons_in_resource",
			in:   "arn:wami:iam:1:wami:999:user/a:b:c:d",
			// rest[0] contains "/", so the region variant cannot apply.
			cloud:      false,
			resourceID: "a:b:c:d",
		},
		{
			name: "eleven_segments_cloud_region_colons_in_resource",
			in:   "arn:wami:iam:1:wami:999:aws:2233:global:user/a:b",
			cloud:      true,
			resourceID: "a:b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustParse(t, tt.in)
			if a.IsCloudSynced() != tt.cloud {
				t.Fatalf("IsCloudSynced = %v, want %v", a.IsCloudSynced(), tt.cloud)
			}
			if a.Resource.ID != tt.resourceID {
				t.Errorf("resource id = %q, want %q", a.Resource.ID, tt.resourceID)
			}
			if a.Resource.Type != "user" {
				t.Errorf("resource type = %q, want %q", a.Resource.Type, "user")
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrInvalidFormat},
		{"too_few_segments", "arn:wami:iam:1:wami:999", ErrInvalidFormat},
		{"wrong_prefix", "urn:wami:iam:1:wami:999:user/77", ErrInvalidFormat},
		{"wrong_partition", "arn:aws:iam:1:wami:999:user/77", ErrInvalidFormat},
		{"missing_instance_marker", "arn:wami:iam:1:iam:999:user/77", ErrMissingComponent},
		{"empty_tenant_path", "arn:wami:iam::wami:999:user/77", ErrInvalidComponent},
		{"non_numeric_tenant_segment", "arn:wami:iam:t1/t2:wami:999:user/77", ErrInvalidComponent},
		{"empty_instance_id", "arn:wami:iam:1:wami::user/77", ErrMissingComponent},
		{"resource_without_slash", "arn:wami:iam:1:wami:999:user", ErrInvalidComponent},
		{"empty_resource_type", "arn:wami:iam:1:wami:999:/77", ErrInvalidComponent},
		{"empty_resource_id", "arn:wami:iam:1:wami:999:user/", ErrInvalidComponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want %v", tt.in, tt.want)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	build := func(fn func(*Builder) *Builder) ARN {
		t.Helper()
		b := NewBuilder().
			Service(ServiceIAM).
			TenantHierarchy("12345678", "87654321").
			InstanceID("999888777").
			Resource("user", "77557755")
		a, err := fn(b).Build()
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	tests := []struct {
		name string
		arn  ARN
	}{
		{"native", build(func(b *Builder) *Builder { return b })},
		{"cloud_no_region", build(func(b *Builder) *Builder {
			return b.CloudMapping("aws", "223344556677")
		})},
		{"cloud_with_region", build(func(b *Builder) *Builder {
			return b.CloudMappingWithRegion("aws", "223344556677", "us-east-1")
		})},
		{"custom_service_scaleway", build(func(b *Builder) *Builder {
			return b.Service(Service("registry")).CloudMappingWithRegion("scaleway", "3344", "fr-par")
		})},
		{"slashed_resource_id", build(func(b *Builder) *Builder {
			return b.Resource("policy", "teams/platform/deploy")
		})},
		{"colons_in_resource_id", build(func(b *Builder) *Builder {
			return b.Resource("user", "a:b:c")
		})},
		{"cloud_colons_in_resource_id", build(func(b *Builder) *Builder {
			return b.CloudMappingWithRegion("aws", "223344556677", "us-east-1").Resource("user", "a:b:c")
		})},
		{"global_region_sentinel", build(func(b *Builder) *Builder {
			return b.CloudMappingWithRegion("gcp", "445566", GlobalRegion)
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.arn.String())
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.arn, err)
			}
			if !parsed.Equal(tt.arn) {
				t.Errorf("round-trip mismatch:\n built: %#v\nparsed: %#v", tt.arn, parsed)
			}
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	const raw = "arn:wami:iam:12345678/87654321/99999999:wami:999888777:aws:223344556677:us-east-1:user/77557755"

	a := mustParse(t, raw)
	if !a.IsCloudSynced() {
		t.Fatal("expected cloud-synced")
	}
	if provider, _ := a.Provider(); provider != "aws" {
		t.Errorf("provider = %q", provider)
	}
	if a.ResourceType() != "user" {
		t.Errorf("resource type = %q", a.ResourceType())
	}
	if a.String() != raw {
		t.Errorf("serialized = %q, want %q", a.String(), raw)
	}
}
