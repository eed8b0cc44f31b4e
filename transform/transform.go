// Package transform converts ARNs to and from provider-native identifier
// formats. Each supported cloud provider (AWS, GCP, Azure, Scaleway) has
// its own Transformer; ForProvider looks one up by name.
//
// Conversion to a provider format requires the ARN to carry a cloud
// mapping for that provider. The reverse direction is lossy: a provider
// identifier carries no tenant path or instance id, so FromProviderARN
// returns an Info describing only what the provider string encodes.
package transform

import (
	"fmt"

	"github.com/xraph/wami/arn"
)

// Transformer converts between ARNs and one provider's native format.
type Transformer interface {
	// Provider returns the provider name this transformer handles.
	Provider() string

	// ToProviderARN renders a cloud-synced ARN in the provider's native
	// format. It fails with arn.ErrInvalidParameter when the ARN has no
	// cloud mapping or the mapping names a different provider.
	ToProviderARN(a arn.ARN) (string, error)

	// FromProviderARN parses a provider-native identifier. It fails with
	// arn.ErrInvalidParameter on malformed input.
	FromProviderARN(s string) (*Info, error)
}

// Info is the partial identity recovered from a provider-native
// identifier. Tenant path and instance id are never present; providers
// do not carry them.
type Info struct {
	Provider     string
	AccountID    string
	Service      arn.Service
	ResourceType string
	ResourceID   string
	Region       string
}

var transformers = map[string]Transformer{
	ProviderAWS:      awsTransformer{},
	ProviderGCP:      gcpTransformer{},
	ProviderAzure:    azureTransformer{},
	ProviderScaleway: scalewayTransformer{},
}

// Provider names recognized by ForProvider.
const (
	ProviderAWS      = "aws"
	ProviderGCP      = "gcp"
	ProviderAzure    = "azure"
	ProviderScaleway = "scaleway"
)

// ForProvider returns the transformer for the named provider. The second
// return is false when no transformer exists for the name.
func ForProvider(name string) (Transformer, bool) {
	t, ok := transformers[name]
	return t, ok
}

// Providers returns the names of all registered providers.
func Providers() []string {
	names := make([]string, 0, len(transformers))
	for name := range transformers {
		names = append(names, name)
	}
	return names
}

// requireMapping checks that a is cloud-synced for the given provider and
// returns its mapping.
func requireMapping(a arn.ARN, provider string) (*arn.CloudMapping, error) {
	if a.CloudMapping == nil {
		return nil, fmt.Errorf("%w: arn %q has no cloud mapping", arn.ErrInvalidParameter, a.String())
	}
	if a.CloudMapping.Provider != provider {
		return nil, fmt.Errorf("%w: arn is mapped to provider %q, not %q",
			arn.ErrInvalidParameter, a.CloudMapping.Provider, provider)
	}
	return a.CloudMapping, nil
}

// splitResourceTail splits a trailing "<type>/<id>" token on its first
// slash. IDs may themselves contain slashes.
func splitResourceTail(tail string) (resourceType, resourceID string, err error) {
	for i := 0; i < len(tail); i++ {
		if tail[i] == '/' {
			if i == 0 || i == len(tail)-1 {
				break
			}
			return tail[:i], tail[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("%w: resource %q is not of the form type/id", arn.ErrInvalidParameter, tail)
}
