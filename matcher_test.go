package wami

import "testing"

func TestWildcardMatch(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"s3:GetObject", "s3:GetObject", true},
		{"s3:GetObject", "s3:PutObject", false},
		{"s3:Get*", "s3:GetObject", true},
		{"s3:Get*", "s3:GetBucketPolicy", true},
		{"s3:Get*", "s3:PutObject", false},
		{"s3:*", "s3:DeleteObject", true},
		{"s3:*", "iam:GetUser", false},
		{"*Object", "s3:GetObject", true},
		{"*Object", "s3:GetBucket", false},
		{"s3:*Object", "s3:GetObject", true},
		{"s3:*Object", "s3:ObjectGet", false},
		{"arn:wami:iam:*:wami:*:user/*", "arn:wami:iam:12345678:wami:999888777:user/77557755", true},
		{"arn:wami:iam:*:wami:*:user/*", "arn:wami:iam:12345678:wami:999888777:role/admin", false},
		// Interior segments must appear in order without overlap.
		{"a*b*c", "axbyc", true},
		{"a*b*c", "acb", false},
		{"a*bb*c", "abbc", true},
		{"a*bb*c", "abc", false},
		{"ab*ba", "aba", false},
		// Empty interior segments collapse.
		{"a**c", "abc", true},
		// Value shorter than prefix+suffix.
		{"abc*def", "abcef", false},
		{"", "", true},
		{"", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.value, func(t *testing.T) {
			if got := wildcardMatch(tt.pattern, tt.value); got != tt.want {
				t.Errorf("wildcardMatch(%q, %q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
			}
		})
	}
}

func TestMatchesAction(t *testing.T) {
	pat, ok := matchesAction([]string{"iam:Get*", "s3:*"}, "s3:PutObject")
	if !ok || pat != "s3:*" {
		t.Errorf("got (%q, %v), want (s3:*, true)", pat, ok)
	}
	if _, ok := matchesAction([]string{"iam:Get*"}, "s3:PutObject"); ok {
		t.Error("expected no match")
	}
	if _, ok := matchesAction(nil, "s3:PutObject"); ok {
		t.Error("empty pattern list must not match")
	}
}

func TestMatchesResource(t *testing.T) {
	patterns := []string{"arn:wami:iam:12345678:wami:*:bucket/*"}
	pat, ok := matchesResource(patterns, "arn:wami:iam:12345678:wami:999888777:bucket/reports")
	if !ok || pat != patterns[0] {
		t.Errorf("got (%q, %v)", pat, ok)
	}
	if _, ok := matchesResource(patterns, "arn:wami:iam:99999999:wami:999888777:bucket/reports"); ok {
		t.Error("expected no match for other tenant")
	}
}
