package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeToken(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"   ":               "",
		"abc123":            "abc123",
		"  abc123  ":        "abc123",
		"Bearer abc123":     "abc123",
		"bearer abc123":     "abc123",
		"BEARER   abc123  ": "abc123",
		"Bearerabc123":      "Bearerabc123",
		"Bearer  abc123":    "abc123",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeToken(in), "%q", in)
	}
}
