package transform

import (
	"fmt"
	"strings"

	"github.com/xraph/wami/arn"
)

type gcpTransformer struct{}

func (gcpTransformer) Provider() string { return ProviderGCP }

func (gcpTransformer) ToProviderARN(a arn.ARN) (string, error) {
	m, err := requireMapping(a, ProviderGCP)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("//%s.googleapis.com/projects/%s/%ss/%s",
		gcpService(a.Service), m.AccountID, a.Resource.Type, a.Resource.ID), nil
}

func (gcpTransformer) FromProviderARN(s string) (*Info, error) {
	rest, ok := strings.CutPrefix(s, "//")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a GCP resource name", arn.ErrInvalidParameter, s)
	}
	host, path, ok := strings.Cut(rest, "/")
	service, isAPI := strings.CutSuffix(host, ".googleapis.com")
	if !ok || !isAPI || service == "" {
		return nil, fmt.Errorf("%w: %q is not a GCP resource name", arn.ErrInvalidParameter, s)
	}
	parts := strings.SplitN(path, "/", 4)
	if len(parts) != 4 || parts[0] != "projects" || parts[1] == "" || parts[3] == "" {
		return nil, fmt.Errorf("%w: GCP resource name %q lacks projects/<account>/<type>s/<id>", arn.ErrInvalidParameter, s)
	}
	resourceType, plural := strings.CutSuffix(parts[2], "s")
	if !plural || resourceType == "" {
		return nil, fmt.Errorf("%w: GCP resource collection %q is not plural", arn.ErrInvalidParameter, parts[2])
	}
	return &Info{
		Provider:     ProviderGCP,
		AccountID:    parts[1],
		Service:      serviceFromGCP(service),
		ResourceType: resourceType,
		ResourceID:   parts[3],
	}, nil
}

func gcpService(s arn.Service) string {
	switch s {
	case arn.ServiceIAM:
		return "iam"
	case arn.ServiceSTS:
		return "sts"
	case arn.ServiceSSOAdmin:
		return "cloudidentity"
	default:
		return string(s)
	}
}

func serviceFromGCP(s string) arn.Service {
	if s == "cloudidentity" {
		return arn.ServiceSSOAdmin
	}
	return arn.ParseService(s)
}
