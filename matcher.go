package wami

import "strings"

// wildcardMatch checks a value against an IAM-style pattern. A pattern
// without '*' matches only itself. With wildcards, the value must start
// with the text before the first '*', end with the text after the last
// '*', and contain every interior literal segment in order, scanning
// left to right without overlap. A bare "*" matches anything.
func wildcardMatch(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}

	parts := strings.Split(pattern, "*")
	prefix := parts[0]
	suffix := parts[len(parts)-1]

	if len(value) < len(prefix)+len(suffix) {
		return false
	}
	if !strings.HasPrefix(value, prefix) || !strings.HasSuffix(value, suffix) {
		return false
	}

	rest := value[len(prefix) : len(value)-len(suffix)]
	for _, seg := range parts[1 : len(parts)-1] {
		if seg == "" {
			continue
		}
		i := strings.Index(rest, seg)
		if i < 0 {
			return false
		}
		rest = rest[i+len(seg):]
	}
	return true
}

// matchesAction reports whether any pattern matches the action.
func matchesAction(patterns []string, action string) (string, bool) {
	for _, p := range patterns {
		if wildcardMatch(p, action) {
			return p, true
		}
	}
	return "", false
}

// matchesResource reports whether any pattern matches the resource.
func matchesResource(patterns []string, resource string) (string, bool) {
	for _, p := range patterns {
		if wildcardMatch(p, resource) {
			return p, true
		}
	}
	return "", false
}
