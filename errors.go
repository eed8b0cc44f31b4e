package wami

import "errors"

var (
	// ErrAccessDenied is returned when an authorization check fails.
	ErrAccessDenied = errors.New("wami: access denied")

	// ErrInvalidParameter is returned on malformed input: a non-user
	// caller ARN, or malformed policy-document JSON.
	ErrInvalidParameter = errors.New("wami: invalid parameter")

	// ErrSessionExpired is returned when a context's session has lapsed.
	ErrSessionExpired = errors.New("wami: session expired")
)
