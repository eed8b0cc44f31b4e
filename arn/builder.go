package arn

import (
	"fmt"
	"strings"

	"github.com/xraph/wami/tenant"
)

// Builder is a fluent, validating constructor for ARN values. Setters
// accumulate; Build validates everything at once and returns an immutable
// ARN or an ErrInvalidParameter naming the offending field.
type Builder struct {
	service    Service
	tenantPath tenant.Path
	instanceID string
	cloud      *CloudMapping
	resource   *Resource
}

// NewBuilder creates an empty ARN builder.
func NewBuilder() *Builder { return &Builder{} }

// Service sets the ARN service.
func (b *Builder) Service(s Service) *Builder {
	b.service = s
	return b
}

// TenantPath sets the full tenant path. The path is copied; later changes
// to the argument do not affect the builder.
func (b *Builder) TenantPath(p tenant.Path) *Builder {
	cp := make(tenant.Path, len(p))
	copy(cp, p)
	b.tenantPath = cp
	return b
}

// Tenant sets a single-segment tenant path.
func (b *Builder) Tenant(segment string) *Builder {
	b.tenantPath = tenant.Path{segment}
	return b
}

// TenantHierarchy sets the tenant path from individual hierarchy segments,
// root first.
func (b *Builder) TenantHierarchy(segments ...string) *Builder {
	b.tenantPath = make(tenant.Path, len(segments))
	copy(b.tenantPath, segments)
	return b
}

// InstanceID sets the WAMI instance identifier.
func (b *Builder) InstanceID(instanceID string) *Builder {
	b.instanceID = instanceID
	return b
}

// CloudMapping marks the resource as synced to a provider account with no
// region (serialized as "global").
func (b *Builder) CloudMapping(provider, accountID string) *Builder {
	b.cloud = &CloudMapping{Provider: provider, AccountID: accountID}
	return b
}

// CloudMappingWithRegion marks the resource as synced to a provider
// account in a specific region.
func (b *Builder) CloudMappingWithRegion(provider, accountID, region string) *Builder {
	b.cloud = &CloudMapping{Provider: provider, AccountID: accountID, Region: region}
	return b
}

// NoCloudMapping clears any cloud mapping, making the ARN WAMI-native.
func (b *Builder) NoCloudMapping() *Builder {
	b.cloud = nil
	return b
}

// Resource sets the resource type and identifier.
func (b *Builder) Resource(resourceType, resourceID string) *Builder {
	b.resource = &Resource{Type: resourceType, ID: resourceID}
	return b
}

// Build validates the accumulated components and returns the ARN.
// Tenant segments must be unsigned integers, and segment-delimiting
// characters are rejected where they would shift segment positions in
// the string form (":" anywhere except the resource id, "/" in the
// resource type and cloud mapping fields), so that every built value
// survives a Parse round-trip.
func (b *Builder) Build() (ARN, error) {
	if b.service == "" {
		return ARN{}, fmt.Errorf("%w: service is required", ErrInvalidParameter)
	}
	if strings.Contains(string(b.service), ":") {
		return ARN{}, fmt.Errorf("%w: service must not contain %q", ErrInvalidParameter, ":")
	}
	if len(b.tenantPath) == 0 {
		return ARN{}, fmt.Errorf("%w: tenant path is required", ErrInvalidParameter)
	}
	for _, seg := range b.tenantPath {
		if !validTenantSegment(seg) {
			return ARN{}, fmt.Errorf("%w: tenant path segment %q is not an unsigned integer", ErrInvalidParameter, seg)
		}
	}
	if b.instanceID == "" {
		return ARN{}, fmt.Errorf("%w: instance id is required", ErrInvalidParameter)
	}
	if strings.Contains(b.instanceID, ":") {
		return ARN{}, fmt.Errorf("%w: instance id must not contain %q", ErrInvalidParameter, ":")
	}
	if b.cloud != nil {
		if b.cloud.Provider == "" {
			return ARN{}, fmt.Errorf("%w: cloud provider is required", ErrInvalidParameter)
		}
		if b.cloud.AccountID == "" {
			return ARN{}, fmt.Errorf("%w: cloud account id is required", ErrInvalidParameter)
		}
		if strings.ContainsAny(b.cloud.Provider, ":/") {
			return ARN{}, fmt.Errorf("%w: cloud provider must not contain %q or %q", ErrInvalidParameter, ":", "/")
		}
		if strings.ContainsAny(b.cloud.AccountID, ":/") {
			return ARN{}, fmt.Errorf("%w: cloud account id must not contain %q or %q", ErrInvalidParameter, ":", "/")
		}
		if strings.ContainsAny(b.cloud.Region, ":/") {
			return ARN{}, fmt.Errorf("%w: cloud region must not contain %q or %q", ErrInvalidParameter, ":", "/")
		}
	}
	if b.resource == nil {
		return ARN{}, fmt.Errorf("%w: resource is required", ErrInvalidParameter)
	}
	if b.resource.Type == "" {
		return ARN{}, fmt.Errorf("%w: resource type is required", ErrInvalidParameter)
	}
	if strings.ContainsAny(b.resource.Type, ":/") {
		return ARN{}, fmt.Errorf("%w: resource type must not contain %q or %q", ErrInvalidParameter, ":", "/")
	}
	if b.resource.ID == "" {
		return ARN{}, fmt.Errorf("%w: resource id is required", ErrInvalidParameter)
	}

	a := ARN{
		Service:    b.service,
		TenantPath: b.tenantPath,
		InstanceID: b.instanceID,
		Resource:   *b.resource,
	}
	if b.cloud != nil {
		cm := *b.cloud
		// "global" is the serialized form of an absent region; fold it so
		// the built value matches what Parse reconstructs.
		if cm.Region == GlobalRegion {
			cm.Region = ""
		}
		a.CloudMapping = &cm
	}
	return a, nil
}
