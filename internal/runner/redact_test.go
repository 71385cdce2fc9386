package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactionSet(t *testing.T) {
	tests := map[string]struct {
		secrets []string
		line    string
		expLine string
	}{
		"No secrets should leave the line untouched": {
			secrets: nil,
			line:    "hello world",
			expLine: "hello world",
		},

		"A single secret should be replaced everywhere in the line": {
			secrets: []string{"sk-123"},
			line:    "token sk-123 and again sk-123",
			expLine: "token [redacted] and again [redacted]",
		},

		"Secrets should apply in insertion order": {
			secrets: []string{"abcdef", "abc"},
			line:    "abcdef abc",
			expLine: "[redacted] [redacted]",
		},

		"Overlapping secrets should resolve to the earliest match in the line": {
			secrets: []string{"bc", "ab"},
			line:    "abc",
			expLine: "[redacted]c",
		},

		"Duplicated secrets should be ignored": {
			secrets: []string{"s3cret", "s3cret"},
			line:    "s3cret",
			expLine: "[redacted]",
		},

		"Empty secrets should be ignored": {
			secrets: []string{"", "pass"},
			line:    "my pass here",
			expLine: "my [redacted] here",
		},

		"A placeholder introduced by one secret should not be rescanned": {
			secrets: []string{"red", "act"},
			line:    "red act",
			expLine: "[redacted] [redacted]",
		},

		"A secret overlapping the placeholder text should not recurse": {
			secrets: []string{"[redacted]"},
			line:    "leak [redacted] leak",
			expLine: "leak [redacted] leak",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := &redactionSet{}
			s.add(test.secrets...)

			assert.Equal(t, test.expLine, s.redact(test.line))
		})
	}
}

func TestRedactionSetNoSecretSurvives(t *testing.T) {
	s := &redactionSet{}
	s.add("sk-123", "hunter2")

	got := s.redact("a sk-123 b hunter2 c sk-123hunter2")

	assert.NotContains(t, got, "sk-123")
	assert.NotContains(t, got, "hunter2")
}
