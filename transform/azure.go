package transform

import (
	"fmt"
	"strings"

	"github.com/xraph/wami/arn"
)

// azureResourceGroup is the fixed resource group all managed identities
// and role assignments are placed under.
const azureResourceGroup = "wami-resources"

type azureTransformer struct{}

func (azureTransformer) Provider() string { return ProviderAzure }

func (azureTransformer) ToProviderARN(a arn.ARN) (string, error) {
	m, err := requireMapping(a, ProviderAzure)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/%s/%s/%s",
		m.AccountID, azureResourceGroup, azureNamespace(a.Service),
		a.Resource.Type, a.Resource.ID), nil
}

func (azureTransformer) FromProviderARN(s string) (*Info, error) {
	rest, ok := strings.CutPrefix(s, "/subscriptions/")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an Azure resource ID", arn.ErrInvalidParameter, s)
	}
	parts := strings.SplitN(rest, "/", 7)
	if len(parts) != 7 || parts[1] != "resourceGroups" || parts[3] != "providers" {
		return nil, fmt.Errorf("%w: %q is not an Azure resource ID", arn.ErrInvalidParameter, s)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: Azure resource ID %q has an empty segment", arn.ErrInvalidParameter, s)
		}
	}
	return &Info{
		Provider:     ProviderAzure,
		AccountID:    parts[0],
		Service:      serviceFromAzure(parts[4]),
		ResourceType: parts[5],
		ResourceID:   parts[6],
	}, nil
}

func azureNamespace(s arn.Service) string {
	switch s {
	case arn.ServiceSTS:
		return "Microsoft.ManagedIdentity"
	default:
		return "Microsoft.Authorization"
	}
}

func serviceFromAzure(namespace string) arn.Service {
	if namespace == "Microsoft.ManagedIdentity" {
		return arn.ServiceSTS
	}
	return arn.ServiceIAM
}
