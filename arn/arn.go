// Package arn implements the WAMI addressable resource name: a structured,
// round-trippable identifier locating one resource within a service, tenant
// hierarchy, and instance scope, optionally mirrored to a cloud provider
// account.
//
// The canonical string grammar is colon-delimited:
//
//	native: arn:wami:<service>:<seg>[/<seg>...]:wami:<instance-id>:<type>/<id>
//	cloud:  arn:wami:<service>:<seg>[/<seg>...]:wami:<instance-id>:<provider>:<account>:<region|global>:<type>/<id>
//
// ARN values are immutable: they are produced by Parse or Builder.Build and
// never mutated in place.
package arn

import (
	"errors"
	"strings"

	"github.com/xraph/wami/tenant"
)

var (
	// ErrInvalidFormat is returned for a structurally malformed ARN string.
	ErrInvalidFormat = errors.New("arn: invalid format")

	// ErrMissingComponent is returned when a required ARN component is absent.
	ErrMissingComponent = errors.New("arn: missing component")

	// ErrInvalidComponent is returned when a component fails domain validation.
	ErrInvalidComponent = errors.New("arn: invalid component")

	// ErrInvalidParameter is returned for builder and transformer misuse.
	ErrInvalidParameter = errors.New("arn: invalid parameter")
)

// Service identifies the WAMI subsystem an ARN belongs to. Unrecognized
// tokens are preserved verbatim for forward compatibility.
type Service string

const (
	// ServiceIAM is the identity-and-access-management service.
	ServiceIAM Service = "iam"

	// ServiceSTS is the security token service.
	ServiceSTS Service = "sts"

	// ServiceSSOAdmin is the SSO administration service.
	ServiceSSOAdmin Service = "sso-admin"
)

// ParseService maps a service token to a Service. Unknown tokens pass
// through unchanged as custom services; parsing never fails.
func ParseService(s string) Service {
	switch strings.ToLower(s) {
	case "iam":
		return ServiceIAM
	case "sts":
		return ServiceSTS
	case "sso-admin":
		return ServiceSSOAdmin
	default:
		return Service(s)
	}
}

// IsKnown reports whether the service is one of the built-in subsystems.
func (s Service) IsKnown() bool {
	switch s {
	case ServiceIAM, ServiceSTS, ServiceSSOAdmin:
		return true
	default:
		return false
	}
}

// String returns the service token.
func (s Service) String() string { return string(s) }

// CloudMapping records that a resource is mirrored to a cloud provider
// account. An empty Region means the resource is global; it serializes as
// the literal token "global".
type CloudMapping struct {
	Provider  string `json:"provider"`
	AccountID string `json:"account_id"`
	Region    string `json:"region,omitempty"`
}

// Resource names the target of an ARN: a type and an identifier. The
// identifier may itself contain "/" (policy paths, for example).
type Resource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ARN is a WAMI addressable resource name. A nil CloudMapping means the
// resource is WAMI-native with no cloud counterpart.
type ARN struct {
	Service      Service       `json:"service"`
	TenantPath   tenant.Path   `json:"tenant_path"`
	InstanceID   string        `json:"instance_id"`
	CloudMapping *CloudMapping `json:"cloud_mapping,omitempty"`
	Resource     Resource      `json:"resource"`
}

// IsCloudSynced reports whether the ARN carries a cloud-provider mapping.
func (a ARN) IsCloudSynced() bool { return a.CloudMapping != nil }

// Provider returns the cloud provider name. ok is false for native ARNs.
func (a ARN) Provider() (provider string, ok bool) {
	if a.CloudMapping == nil {
		return "", false
	}
	return a.CloudMapping.Provider, true
}

// ResourceType returns the resource type component.
func (a ARN) ResourceType() string { return a.Resource.Type }

// ResourceID returns the resource identifier component.
func (a ARN) ResourceID() string { return a.Resource.ID }

// Equal reports structural equality of two ARNs.
func (a ARN) Equal(other ARN) bool {
	if a.Service != other.Service ||
		a.InstanceID != other.InstanceID ||
		a.Resource != other.Resource {
		return false
	}
	if !a.TenantPath.Equal(other.TenantPath) {
		return false
	}
	if (a.CloudMapping == nil) != (other.CloudMapping == nil) {
		return false
	}
	if a.CloudMapping != nil && *a.CloudMapping != *other.CloudMapping {
		return false
	}
	return true
}

// String renders the canonical colon-delimited form. Native ARNs omit the
// cloud segment entirely; cloud-synced ARNs always emit a region token,
// substituting "global" when no region is set.
func (a ARN) String() string {
	var b strings.Builder
	b.WriteString("arn:wami:")
	b.WriteString(string(a.Service))
	b.WriteByte(':')
	b.WriteString(a.TenantPath.String())
	b.WriteString(":wami:")
	b.WriteString(a.InstanceID)
	b.WriteByte(':')
	if a.CloudMapping != nil {
		region := a.CloudMapping.Region
		if region == "" {
			region = GlobalRegion
		}
		b.WriteString(a.CloudMapping.Provider)
		b.WriteByte(':')
		b.WriteString(a.CloudMapping.AccountID)
		b.WriteByte(':')
		b.WriteString(region)
		b.WriteByte(':')
	}
	b.WriteString(a.Resource.Type)
	b.WriteByte('/')
	b.WriteString(a.Resource.ID)
	return b.String()
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (a ARN) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ARN) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
