package transform

import (
	"errors"
	"testing"

	"github.com/xraph/wami/arn"
)

func cloudARN(t *testing.T, provider, region string) arn.ARN {
	t.Helper()
	b := arn.NewBuilder().
		Service(arn.ServiceIAM).
		Tenant("12345678").
		InstanceID("999888777").
		Resource("user", "77557755")
	if region == "" {
		b.CloudMapping(provider, "223344556677")
	} else {
		b.CloudMappingWithRegion(provider, "223344556677", region)
	}
	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestForProvider(t *testing.T) {
	for _, name := range []string{ProviderAWS, ProviderGCP, ProviderAzure, ProviderScaleway} {
		tr, ok := ForProvider(name)
		if !ok {
			t.Fatalf("ForProvider(%q): no transformer", name)
		}
		if tr.Provider() != name {
			t.Errorf("ForProvider(%q).Provider() = %q", name, tr.Provider())
		}
	}
	if _, ok := ForProvider("digitalocean"); ok {
		t.Error("unknown provider must report absence, not a transformer")
	}
}

func TestToProviderARN(t *testing.T) {
	tests := []struct {
		provider string
		region   string
		want     string
	}{
		{ProviderAWS, "us-east-1", "arn:aws:iam:us-east-1:223344556677:user/77557755"},
		{ProviderAWS, "", "arn:aws:iam::223344556677:user/77557755"},
		{ProviderGCP, "", "//iam.googleapis.com/projects/223344556677/users/77557755"},
		{ProviderAzure, "", "/subscriptions/223344556677/resourceGroups/wami-resources/providers/Microsoft.Authorization/user/77557755"},
		{ProviderScaleway, "", "scw:223344556677:iam:user/77557755"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			tr, _ := ForProvider(tt.provider)
			got, err := tr.ToProviderARN(cloudARN(t, tt.provider, tt.region))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToProviderARNRejects(t *testing.T) {
	tr, _ := ForProvider(ProviderAWS)

	native, err := arn.Parse("arn:wami:iam:12345678:wami:999888777:user/77557755")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ToProviderARN(native); !errors.Is(err, arn.ErrInvalidParameter) {
		t.Errorf("no cloud mapping: err = %v, want ErrInvalidParameter", err)
	}

	if _, err := tr.ToProviderARN(cloudARN(t, ProviderGCP, "")); !errors.Is(err, arn.ErrInvalidParameter) {
		t.Errorf("provider mismatch: err = %v, want ErrInvalidParameter", err)
	}
}

func TestAzureServiceNamespaces(t *testing.T) {
	tr, _ := ForProvider(ProviderAzure)
	a := cloudARN(t, ProviderAzure, "")
	a.Service = arn.ServiceSTS
	got, err := tr.ToProviderARN(a)
	if err != nil {
		t.Fatal(err)
	}
	want := "/subscriptions/223344556677/resourceGroups/wami-resources/providers/Microsoft.ManagedIdentity/user/77557755"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFromProviderARN(t *testing.T) {
	tests := []struct {
		provider string
		input    string
		want     Info
	}{
		{
			ProviderAWS,
			"arn:aws:iam:us-east-1:223344556677:user/77557755",
			Info{Provider: ProviderAWS, AccountID: "223344556677", Service: arn.ServiceIAM, ResourceType: "user", ResourceID: "77557755", Region: "us-east-1"},
		},
		{
			ProviderAWS,
			"arn:aws:sso::223344556677:permission-set/ps-1234",
			Info{Provider: ProviderAWS, AccountID: "223344556677", Service: arn.ServiceSSOAdmin, ResourceType: "permission-set", ResourceID: "ps-1234"},
		},
		{
			ProviderGCP,
			"//iam.googleapis.com/projects/223344556677/users/77557755",
			Info{Provider: ProviderGCP, AccountID: "223344556677", Service: arn.ServiceIAM, ResourceType: "user", ResourceID: "77557755"},
		},
		{
			ProviderAzure,
			"/subscriptions/223344556677/resourceGroups/wami-resources/providers/Microsoft.Authorization/user/77557755",
			Info{Provider: ProviderAzure, AccountID: "223344556677", Service: arn.ServiceIAM, ResourceType: "user", ResourceID: "77557755"},
		},
		{
			ProviderScaleway,
			"scw:223344556677:iam:user/77557755",
			Info{Provider: ProviderScaleway, AccountID: "223344556677", Service: arn.ServiceIAM, ResourceType: "user", ResourceID: "77557755"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.input, func(t *testing.T) {
			tr, _ := ForProvider(tt.provider)
			got, err := tr.FromProviderARN(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestFromProviderARNRejects(t *testing.T) {
	tests := []struct {
		provider string
		input    string
	}{
		{ProviderAWS, "arn:wami:iam:1:wami:9:user/u"},
		{ProviderAWS, "arn:aws:iam:us-east-1:223344556677"},
		{ProviderAWS, "arn:aws:iam:us-east-1:223344556677:user"},
		{ProviderGCP, "iam.googleapis.com/projects/1/users/u"},
		{ProviderGCP, "//iam.example.com/projects/1/users/u"},
		{ProviderGCP, "//iam.googleapis.com/folders/1/users/u"},
		{ProviderGCP, "//iam.googleapis.com/projects/1/user/u"},
		{ProviderAzure, "/subscriptions/1/providers/Microsoft.Authorization/user/u"},
		{ProviderAzure, "/subscriptions/1/resourceGroups/rg/providers/Microsoft.Authorization/user"},
		{ProviderScaleway, "scw:1:iam"},
		{ProviderScaleway, "aws:1:iam:user/u"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tr, _ := ForProvider(tt.provider)
			if _, err := tr.FromProviderARN(tt.input); !errors.Is(err, arn.ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

// Converting to a provider format and back recovers the cloud identity
// but never the tenant path or instance id.
func TestRoundTripIsLossy(t *testing.T) {
	a := cloudARN(t, ProviderAWS, "us-east-1")
	tr, _ := ForProvider(ProviderAWS)

	s, err := tr.ToProviderARN(a)
	if err != nil {
		t.Fatal(err)
	}
	info, err := tr.FromProviderARN(s)
	if err != nil {
		t.Fatal(err)
	}

	if info.AccountID != a.CloudMapping.AccountID ||
		info.Region != a.CloudMapping.Region ||
		info.ResourceType != a.Resource.Type ||
		info.ResourceID != a.Resource.ID {
		t.Errorf("recovered %+v does not match source %v", info, a)
	}
}
