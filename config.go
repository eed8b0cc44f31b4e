package wami

import "time"

// Config holds configuration for the Authorizer.
type Config struct {
	// TolerateMalformedPolicies treats an unparseable stored policy
	// document as matching nothing instead of failing the whole check.
	// Defaults to true. A malformed policy can then never grant access,
	// only fail to.
	TolerateMalformedPolicies *bool `json:"tolerate_malformed_policies,omitempty"`

	// EnableDecisionLog records every authorization decision in the
	// decision log store. Defaults to false.
	EnableDecisionLog *bool `json:"enable_decision_log,omitempty"`

	// CacheTTL is the time-to-live for cached decisions.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		TolerateMalformedPolicies: &t,
	}
}

func (c Config) tolerateMalformed() bool {
	return c.TolerateMalformedPolicies == nil || *c.TolerateMalformedPolicies
}

func (c Config) decisionLogEnabled() bool {
	return c.EnableDecisionLog != nil && *c.EnableDecisionLog
}
