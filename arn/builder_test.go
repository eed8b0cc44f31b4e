package arn

import (
	"errors"
	"testing"

	"github.com/xraph/wami/tenant"
)

func validBuilder() *Builder {
	return NewBuilder().
		Service(ServiceIAM).
		Tenant("12345678").
		InstanceID("999888777").
		Resource("user", "77557755")
}

func TestBuildNative(t *testing.T) {
	a, err := validBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	if a.IsCloudSynced() {
		t.Error("expected native ARN")
	}
	want := "arn:wami:iam:12345678:wami:999888777:user/77557755"
	if a.String() != want {
		t.Errorf("String() = %q, want %q", a.String(), want)
	}
}

func TestBuildCloudSynced(t *testing.T) {
	a, err := validBuilder().
		CloudMappingWithRegion("aws", "223344556677", "us-east-1").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	want := "arn:wami:iam:12345678:wami:999888777:aws:223344556677:us-east-1:user/77557755"
	if a.String() != want {
		t.Errorf("String() = %q, want %q", a.String(), want)
	}
}

func TestBuildNoCloudMappingClears(t *testing.T) {
	a, err := validBuilder().
		CloudMapping("aws", "223344556677").
		NoCloudMapping().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if a.IsCloudSynced() {
		t.Error("NoCloudMapping must clear the mapping")
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"missing_service", NewBuilder().Tenant("1").InstanceID("9").Resource("user", "u")},
		{"missing_tenant_path", NewBuilder().Service(ServiceIAM).InstanceID("9").Resource("user", "u")},
		{"non_numeric_tenant", validBuilder().Tenant("acme")},
		{"missing_instance_id", NewBuilder().Service(ServiceIAM).Tenant("1").Resource("user", "u")},
		{"missing_resource", NewBuilder().Service(ServiceIAM).Tenant("1").InstanceID("9")},
		{"empty_resource_type", validBuilder().Resource("", "u")},
		{"empty_resource_id", validBuilder().Resource("user", "")},
		{"empty_cloud_provider", validBuilder().CloudMapping("", "1234")},
		{"empty_cloud_account", validBuilder().CloudMapping("aws", "")},
		{"colon_in_service", NewBuilder().Service(Service("ia:m")).Tenant("1").InstanceID("9").Resource("user", "u")},
		{"colon_in_instance_id", validBuilder().InstanceID("9:9")},
		{"colon_in_resource_type", validBuilder().Resource("us:er", "u")},
		{"slash_in_resource_type", validBuilder().Resource("us/er", "u")},
		{"colon_in_cloud_provider", validBuilder().CloudMapping("a:ws", "1234")},
		{"slash_in_cloud_provider", validBuilder().CloudMapping("a/ws", "1234")},
		{"colon_in_cloud_account", validBuilder().CloudMapping("aws", "12:34")},
		{"slash_in_cloud_account", validBuilder().CloudMapping("aws", "12/34")},
		{"colon_in_cloud_region", validBuilder().CloudMappingWithRegion("aws", "1234", "us:east")},
		{"slash_in_cloud_region", validBuilder().CloudMappingWithRegion("aws", "1234", "us/east")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if err == nil {
				t.Fatal("expected build error")
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestBuilderCopiesTenantPath(t *testing.T) {
	p := tenant.Path{"12345678"}
	b := NewBuilder().
		Service(ServiceIAM).
		TenantPath(p).
		InstanceID("9").
		Resource("user", "u")
	p[0] = "mutated"

	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if a.TenantPath[0] != "12345678" {
		t.Errorf("builder must copy the tenant path, got %q", a.TenantPath[0])
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	b := validBuilder()
	a1, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	a2, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !a1.Equal(a2) {
		t.Error("two builds from the same builder must be equal")
	}
	// The second value must not share the first one's cloud mapping.
	b.CloudMapping("aws", "1234")
	a3, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if a1.IsCloudSynced() || !a3.IsCloudSynced() {
		t.Error("later builder changes must not leak into earlier values")
	}
}
