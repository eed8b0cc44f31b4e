package wami

import (
	"context"
	"fmt"

	"github.com/xraph/wami/policy"
)

// Verdict is the outcome of evaluating one policy document against a
// single (action, resource) pair.
type Verdict int

const (
	// VerdictNoMatch means no statement in the document matched.
	VerdictNoMatch Verdict = iota

	// VerdictAllow means an Allow statement matched and no Deny did.
	VerdictAllow

	// VerdictDeny means a Deny statement matched.
	VerdictDeny
)

// Evaluator evaluates a policy document against an action and resource.
type Evaluator interface {
	Evaluate(ctx context.Context, doc *policy.Document, action, resource string) (Verdict, []StatementMatch)
}

// DefaultEvaluator returns the built-in document evaluator.
func DefaultEvaluator() Evaluator { return documentEvaluator{} }

type documentEvaluator struct{}

// Evaluate scans every statement. A matching Deny wins over any number
// of matching Allows in the same document.
func (documentEvaluator) Evaluate(_ context.Context, doc *policy.Document, action, resource string) (Verdict, []StatementMatch) {
	var matched []StatementMatch
	verdict := VerdictNoMatch

	for _, stmt := range doc.Statement {
		actionPat, ok := matchesAction(stmt.Action, action)
		if !ok {
			continue
		}
		resourcePat, ok := matchesResource(stmt.Resource, resource)
		if !ok {
			continue
		}

		matched = append(matched, StatementMatch{
			Effect:          stmt.Effect,
			MatchedAction:   actionPat,
			MatchedResource: resourcePat,
		})

		if stmt.Effect == policy.EffectDeny {
			verdict = VerdictDeny
		} else if verdict == VerdictNoMatch {
			verdict = VerdictAllow
		}
	}

	return verdict, matched
}

// SimulationInput is a batch of policy documents and (action, resource)
// combinations to evaluate against each other.
type SimulationInput struct {
	// PolicyDocuments are raw policy-document JSON texts.
	PolicyDocuments []string `json:"policy_documents"`

	// Actions and Resources form a cross product; every pair is
	// evaluated independently.
	Actions   []string `json:"actions"`
	Resources []string `json:"resources"`

	// ContextEntries are passed through to results unevaluated.
	ContextEntries map[string]string `json:"context_entries,omitempty"`
}

// SimulationResult is the decision for one (action, resource) pair.
type SimulationResult struct {
	Action               string           `json:"action"`
	Resource             string           `json:"resource"`
	Decision             string           `json:"decision"` // "allowed" or "denied"
	MatchedStatements    []StatementMatch `json:"matched_statements"`
	MissingContextValues []string         `json:"missing_context_values"`
}

// Simulate evaluates every action×resource combination against the
// supplied policy documents. Any malformed document fails the whole
// simulation with ErrInvalidParameter. Deny overrides Allow across
// documents; a pair no statement allows is denied.
func Simulate(ctx context.Context, ev Evaluator, input *SimulationInput) ([]SimulationResult, error) {
	if ev == nil {
		ev = DefaultEvaluator()
	}

	docs := make([]*policy.Document, 0, len(input.PolicyDocuments))
	for i, raw := range input.PolicyDocuments {
		doc, err := policy.ParseDocument([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: policy document %d: %w", ErrInvalidParameter, i, err)
		}
		docs = append(docs, doc)
	}

	results := make([]SimulationResult, 0, len(input.Actions)*len(input.Resources))
	for _, action := range input.Actions {
		for _, resource := range input.Resources {
			res := SimulationResult{
				Action:               action,
				Resource:             resource,
				Decision:             "denied",
				MatchedStatements:    []StatementMatch{},
				MissingContextValues: []string{},
			}

			allowed := false
			denied := false
			for _, doc := range docs {
				verdict, matched := ev.Evaluate(ctx, doc, action, resource)
				res.MatchedStatements = append(res.MatchedStatements, matched...)
				switch verdict {
				case VerdictDeny:
					denied = true
				case VerdictAllow:
					allowed = true
				}
			}
			if allowed && !denied {
				res.Decision = "allowed"
			}

			results = append(results, res)
		}
	}
	return results, nil
}
