package wami

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/wami/policy"
)

func mustDoc(t *testing.T, raw string) *policy.Document {
	t.Helper()
	doc, err := policy.ParseDocument([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestEvaluateAllow(t *testing.T) {
	doc := mustDoc(t, `{"Statement":[
		{"Effect":"Allow","Action":"s3:Get*","Resource":"*"}
	]}`)

	verdict, matched := DefaultEvaluator().Evaluate(context.Background(), doc, "s3:GetObject", "arn:r1")
	if verdict != VerdictAllow {
		t.Fatalf("verdict = %v, want allow", verdict)
	}
	if len(matched) != 1 || matched[0].MatchedAction != "s3:Get*" || matched[0].MatchedResource != "*" {
		t.Errorf("matched = %+v", matched)
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	doc := mustDoc(t, `{"Statement":[
		{"Effect":"Allow","Action":"s3:Get*","Resource":"*"}
	]}`)

	verdict, matched := DefaultEvaluator().Evaluate(context.Background(), doc, "s3:DeleteObject", "arn:r1")
	if verdict != VerdictNoMatch {
		t.Fatalf("verdict = %v, want no match", verdict)
	}
	if len(matched) != 0 {
		t.Errorf("matched = %+v", matched)
	}
}

// A Deny statement wins over an Allow in the same document regardless
// of statement order.
func TestEvaluateDenyOverridesAllow(t *testing.T) {
	docs := []string{
		`{"Statement":[
			{"Effect":"Allow","Action":"s3:*","Resource":"*"},
			{"Effect":"Deny","Action":"s3:DeleteObject","Resource":"*"}
		]}`,
		`{"Statement":[
			{"Effect":"Deny","Action":"s3:DeleteObject","Resource":"*"},
			{"Effect":"Allow","Action":"s3:*","Resource":"*"}
		]}`,
	}

	for i, raw := range docs {
		doc := mustDoc(t, raw)
		verdict, matched := DefaultEvaluator().Evaluate(context.Background(), doc, "s3:DeleteObject", "arn:r1")
		if verdict != VerdictDeny {
			t.Errorf("doc %d: verdict = %v, want deny", i, verdict)
		}
		if len(matched) != 2 {
			t.Errorf("doc %d: matched = %+v, want both statements", i, matched)
		}
	}
}

// A statement only matches when an action pattern AND a resource
// pattern match.
func TestEvaluateRequiresBothDimensions(t *testing.T) {
	doc := mustDoc(t, `{"Statement":[
		{"Effect":"Allow","Action":"s3:GetObject","Resource":"arn:bucket/a"}
	]}`)

	verdict, _ := DefaultEvaluator().Evaluate(context.Background(), doc, "s3:GetObject", "arn:bucket/b")
	if verdict != VerdictNoMatch {
		t.Fatalf("verdict = %v, want no match when resource differs", verdict)
	}
}

func TestSimulate(t *testing.T) {
	input := &SimulationInput{
		PolicyDocuments: []string{
			`{"Statement":[{"Effect":"Allow","Action":"s3:*","Resource":"*"}]}`,
			`{"Statement":[{"Effect":"Deny","Action":"s3:DeleteObject","Resource":"*"}]}`,
		},
		Actions:   []string{"s3:GetObject", "s3:DeleteObject", "iam:GetUser"},
		Resources: []string{"arn:r1"},
	}

	results, err := Simulate(context.Background(), nil, input)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	byAction := make(map[string]SimulationResult, len(results))
	for _, r := range results {
		byAction[r.Action] = r
	}

	if byAction["s3:GetObject"].Decision != "allowed" {
		t.Errorf("s3:GetObject = %q", byAction["s3:GetObject"].Decision)
	}
	// Deny in the second document overrides the first document's allow.
	if byAction["s3:DeleteObject"].Decision != "denied" {
		t.Errorf("s3:DeleteObject = %q", byAction["s3:DeleteObject"].Decision)
	}
	if byAction["iam:GetUser"].Decision != "denied" {
		t.Errorf("iam:GetUser = %q (implicit deny)", byAction["iam:GetUser"].Decision)
	}

	if byAction["s3:GetObject"].MissingContextValues == nil {
		t.Error("missing context values must be an empty slice, not nil")
	}
}

func TestSimulateMalformedDocument(t *testing.T) {
	input := &SimulationInput{
		PolicyDocuments: []string{`{not json`},
		Actions:         []string{"s3:GetObject"},
		Resources:       []string{"arn:r1"},
	}

	_, err := Simulate(context.Background(), nil, input)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}
