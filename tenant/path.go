package tenant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPath is returned when constructing a tenant path with no segments.
var ErrEmptyPath = errors.New("tenant: path must have at least one segment")

// Path is an ordered, non-empty sequence of tenant segments expressing a
// position in the tenant hierarchy, rendered joined by "/".
// A Path is never mutated after construction; operations return new values.
type Path []string

// NewPath builds a Path from segments. At least one segment is required
// and every segment must be non-empty.
func NewPath(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyPath
	}
	for i, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("tenant: path segment %d is empty", i)
		}
	}
	p := make(Path, len(segments))
	copy(p, segments)
	return p, nil
}

// ParsePath parses a "/"-joined path string into a Path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, ErrEmptyPath
	}
	return NewPath(strings.Split(s, "/")...)
}

// String renders the path joined by "/".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// StartsWith reports whether other's segments are a prefix of this path's
// segments. A path starts with itself.
func (p Path) StartsWith(other Path) bool {
	if len(other) > len(p) {
		return false
	}
	for i, seg := range other {
		if p[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports whether two paths have identical segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, seg := range p {
		if other[i] != seg {
			return false
		}
	}
	return true
}

// Child returns a new path with name appended.
func (p Path) Child(name string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, name)
}
