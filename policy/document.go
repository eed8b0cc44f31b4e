// Package policy defines the Policy entity, the IAM policy-document
// format, and the policy store interface.
package policy

import (
	"encoding/json"
	"fmt"
)

// Version is the policy-document language version this package emits.
const Version = "2012-10-17"

// Effect is a statement's disposition when it matches.
type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// Valid reports whether e is a recognized effect.
func (e Effect) Valid() bool { return e == EffectAllow || e == EffectDeny }

// StringList unmarshals either a single JSON string or an array of
// strings. Policy documents in the wild use both forms for Action and
// Resource.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("policy: value must be a string or array of strings: %w", err)
	}
	*l = many
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

// Statement is one rule inside a policy document.
type Statement struct {
	Sid       string         `json:"Sid,omitempty"`
	Effect    Effect         `json:"Effect"`
	Action    StringList     `json:"Action"`
	Resource  StringList     `json:"Resource"`
	Condition map[string]any `json:"Condition,omitempty"`
}

// Document is a parsed policy document.
type Document struct {
	Version   string      `json:"Version"`
	ID        string      `json:"Id,omitempty"`
	Statement []Statement `json:"Statement"`
}

// ParseDocument decodes and validates raw policy-document JSON. Every
// statement must carry a recognized effect and at least one action and
// one resource pattern.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("policy: malformed document: %w", err)
	}
	for i, stmt := range doc.Statement {
		if !stmt.Effect.Valid() {
			return nil, fmt.Errorf("policy: statement %d has invalid effect %q", i, stmt.Effect)
		}
		if len(stmt.Action) == 0 {
			return nil, fmt.Errorf("policy: statement %d has no actions", i)
		}
		if len(stmt.Resource) == 0 {
			return nil, fmt.Errorf("policy: statement %d has no resources", i)
		}
	}
	return &doc, nil
}
