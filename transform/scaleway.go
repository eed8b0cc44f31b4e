package transform

import (
	"fmt"
	"strings"

	"github.com/xraph/wami/arn"
)

type scalewayTransformer struct{}

func (scalewayTransformer) Provider() string { return ProviderScaleway }

func (scalewayTransformer) ToProviderARN(a arn.ARN) (string, error) {
	m, err := requireMapping(a, ProviderScaleway)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("scw:%s:%s:%s/%s",
		m.AccountID, a.Service, a.Resource.Type, a.Resource.ID), nil
}

func (scalewayTransformer) FromProviderARN(s string) (*Info, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 || parts[0] != "scw" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("%w: %q is not a Scaleway identifier", arn.ErrInvalidParameter, s)
	}
	resourceType, resourceID, err := splitResourceTail(parts[3])
	if err != nil {
		return nil, err
	}
	return &Info{
		Provider:     ProviderScaleway,
		AccountID:    parts[1],
		Service:      arn.ParseService(parts[2]),
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}, nil
}
