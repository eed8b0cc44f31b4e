package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xraph/forge"

	"github.com/xraph/wami"
	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/store"
	"github.com/xraph/wami/tenant"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, wami.ErrInvalidParameter) || errors.Is(err, tenant.ErrEmptyPath) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, arn.ErrInvalidFormat) ||
		errors.Is(err, arn.ErrMissingComponent) ||
		errors.Is(err, arn.ErrInvalidComponent) ||
		errors.Is(err, arn.ErrInvalidParameter) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, wami.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, wami.ErrSessionExpired) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// newSecret generates an access key secret.
func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
