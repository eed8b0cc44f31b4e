package policy

import (
	"encoding/json"
	"testing"
)

func TestParseDocument(t *testing.T) {
	raw := []byte(`{
		"Version": "2012-10-17",
		"Statement": [
			{"Sid": "AllowRead", "Effect": "Allow", "Action": ["s3:Get*", "s3:List*"], "Resource": "*"},
			{"Effect": "Deny", "Action": "s3:DeleteObject", "Resource": ["arn:wami:iam:1:wami:9:bucket/secret"]}
		]
	}`)

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != Version {
		t.Errorf("Version = %q", doc.Version)
	}
	if len(doc.Statement) != 2 {
		t.Fatalf("got %d statements", len(doc.Statement))
	}

	first := doc.Statement[0]
	if first.Effect != EffectAllow || len(first.Action) != 2 || first.Action[0] != "s3:Get*" {
		t.Errorf("first statement = %+v", first)
	}
	if len(first.Resource) != 1 || first.Resource[0] != "*" {
		t.Errorf("single-string Resource = %v", first.Resource)
	}

	second := doc.Statement[1]
	if second.Effect != EffectDeny || len(second.Action) != 1 || second.Action[0] != "s3:DeleteObject" {
		t.Errorf("second statement = %+v", second)
	}
}

func TestParseDocumentRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not_json", `{`},
		{"bad_effect", `{"Statement":[{"Effect":"Maybe","Action":"a","Resource":"r"}]}`},
		{"no_actions", `{"Statement":[{"Effect":"Allow","Action":[],"Resource":"r"}]}`},
		{"no_resources", `{"Statement":[{"Effect":"Allow","Action":"a","Resource":[]}]}`},
		{"action_not_string", `{"Statement":[{"Effect":"Allow","Action":42,"Resource":"r"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(tt.raw)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestStringListMarshal(t *testing.T) {
	one, err := json.Marshal(StringList{"s3:GetObject"})
	if err != nil {
		t.Fatal(err)
	}
	if string(one) != `"s3:GetObject"` {
		t.Errorf("single element = %s, want bare string", one)
	}

	many, err := json.Marshal(StringList{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if string(many) != `["a","b"]` {
		t.Errorf("two elements = %s", many)
	}
}
