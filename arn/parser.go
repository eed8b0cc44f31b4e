package arn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xraph/wami/tenant"
)

// GlobalRegion is the region token emitted for cloud mappings without a
// region.
const GlobalRegion = "global"

// minSegments is the segment count of the shortest legal ARN (native form).
const minSegments = 7

// remainderForm identifies which grammar variant the segments after the
// instance id belong to.
type remainderForm int

const (
	formNative remainderForm = iota
	formCloudRegion
	formCloudLegacy
)

// remainderVariants drives classifyRemainder. Variants are tried in order;
// the first whose length constraint holds and whose leading slashFree
// segments contain no "/" wins, otherwise the remainder is native.
var remainderVariants = []struct {
	min       int
	exact     bool
	slashFree int
	form      remainderForm
}{
	// provider:account:region:<resource...> — total ARN length >= 10.
	{min: 4, exact: false, slashFree: 3, form: formCloudRegion},
	// provider:account:<resource> — legacy, total ARN length exactly 9.
	{min: 3, exact: true, slashFree: 2, form: formCloudLegacy},
}

// classifyRemainder decides between the native, cloud-with-region, and
// legacy cloud forms by segment count and slash placement. The length
// heuristic is kept bit-compatible with the historical format; every
// boundary is covered by parser tests.
func classifyRemainder(rest []string) remainderForm {
	for _, v := range remainderVariants {
		if v.exact && len(rest) != v.min {
			continue
		}
		if !v.exact && len(rest) < v.min {
			continue
		}
		slashed := false
		for i := 0; i < v.slashFree; i++ {
			if strings.Contains(rest[i], "/") {
				slashed = true
				break
			}
		}
		if !slashed {
			return v.form
		}
	}
	return formNative
}

// Parse decodes the canonical string form into an ARN. It is strict: every
// structural defect is reported as ErrInvalidFormat, ErrMissingComponent,
// or ErrInvalidComponent; there is no partially valid result. For every
// ARN produced by a Builder, Parse(a.String()) yields an equal value.
func Parse(s string) (ARN, error) {
	segs := strings.Split(s, ":")
	if len(segs) < minSegments {
		return ARN{}, fmt.Errorf("%w: expected at least %d segments, got %d", ErrInvalidFormat, minSegments, len(segs))
	}
	if segs[0] != "arn" {
		return ARN{}, fmt.Errorf("%w: must start with %q", ErrInvalidFormat, "arn")
	}
	if segs[1] != "wami" {
		return ARN{}, fmt.Errorf("%w: partition must be %q", ErrInvalidFormat, "wami")
	}
	if segs[4] != "wami" {
		return ARN{}, fmt.Errorf("%w: instance marker %q at position 4", ErrMissingComponent, "wami")
	}

	service := ParseService(segs[2])

	path, err := parseTenantPath(segs[3])
	if err != nil {
		return ARN{}, err
	}

	instanceID := segs[5]
	if instanceID == "" {
		return ARN{}, fmt.Errorf("%w: instance id", ErrMissingComponent)
	}

	rest := segs[6:]
	var mapping *CloudMapping
	var resourceToken string

	switch classifyRemainder(rest) {
	case formCloudRegion:
		region := rest[2]
		if region == GlobalRegion {
			region = ""
		}
		mapping = &CloudMapping{Provider: rest[0], AccountID: rest[1], Region: region}
		resourceToken = strings.Join(rest[3:], ":")
	case formCloudLegacy:
		mapping = &CloudMapping{Provider: rest[0], AccountID: rest[1]}
		resourceToken = strings.Join(rest[2:], ":")
	default:
		resourceToken = strings.Join(rest, ":")
	}

	if mapping != nil {
		if mapping.Provider == "" {
			return ARN{}, fmt.Errorf("%w: cloud provider", ErrInvalidComponent)
		}
		if mapping.AccountID == "" {
			return ARN{}, fmt.Errorf("%w: cloud account id", ErrInvalidComponent)
		}
	}

	resource, err := splitResource(resourceToken)
	if err != nil {
		return ARN{}, err
	}

	return ARN{
		Service:      service,
		TenantPath:   path,
		InstanceID:   instanceID,
		CloudMapping: mapping,
		Resource:     resource,
	}, nil
}

// parseTenantPath decodes the "/"-joined tenant segment list. Each segment
// must be an unsigned integer.
func parseTenantPath(token string) (tenant.Path, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: tenant path is empty", ErrInvalidComponent)
	}
	segments := strings.Split(token, "/")
	for _, seg := range segments {
		if !validTenantSegment(seg) {
			return nil, fmt.Errorf("%w: tenant path segment %q is not an unsigned integer", ErrInvalidComponent, seg)
		}
	}
	path, err := tenant.NewPath(segments...)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant path: %v", ErrInvalidComponent, err)
	}
	return path, nil
}

// validTenantSegment reports whether seg parses as an unsigned integer.
func validTenantSegment(seg string) bool {
	if seg == "" {
		return false
	}
	_, err := strconv.ParseUint(seg, 10, 64)
	return err == nil
}

// splitResource splits a resource token on the first "/". Everything before
// is the type, everything after (slashes included) is the identifier.
func splitResource(token string) (Resource, error) {
	idx := strings.Index(token, "/")
	if idx < 0 {
		return Resource{}, fmt.Errorf("%w: resource %q must be of the form type/id", ErrInvalidComponent, token)
	}
	r := Resource{Type: token[:idx], ID: token[idx+1:]}
	if r.Type == "" {
		return Resource{}, fmt.Errorf("%w: resource type is empty", ErrInvalidComponent)
	}
	if r.ID == "" {
		return Resource{}, fmt.Errorf("%w: resource id is empty", ErrInvalidComponent)
	}
	return r, nil
}
