package transform

import (
	"fmt"
	"strings"

	"github.com/xraph/wami/arn"
)

type awsTransformer struct{}

func (awsTransformer) Provider() string { return ProviderAWS }

func (awsTransformer) ToProviderARN(a arn.ARN) (string, error) {
	m, err := requireMapping(a, ProviderAWS)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s/%s",
		awsService(a.Service), m.Region, m.AccountID,
		a.Resource.Type, a.Resource.ID), nil
}

func (awsTransformer) FromProviderARN(s string) (*Info, error) {
	parts := strings.SplitN(s, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" || parts[1] != "aws" {
		return nil, fmt.Errorf("%w: %q is not an AWS ARN", arn.ErrInvalidParameter, s)
	}
	resourceType, resourceID, err := splitResourceTail(parts[5])
	if err != nil {
		return nil, err
	}
	return &Info{
		Provider:     ProviderAWS,
		AccountID:    parts[4],
		Service:      serviceFromAWS(parts[2]),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Region:       parts[3],
	}, nil
}

func awsService(s arn.Service) string {
	switch s {
	case arn.ServiceIAM:
		return "iam"
	case arn.ServiceSTS:
		return "sts"
	case arn.ServiceSSOAdmin:
		return "sso"
	default:
		return string(s)
	}
}

func serviceFromAWS(s string) arn.Service {
	if s == "sso" {
		return arn.ServiceSSOAdmin
	}
	return arn.ParseService(s)
}
