package auth

import (
	"testing"
	"time"

	jwtpkg "github.com/folio-space/core/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSessionIDFromToken(t *testing.T) {
	jwtToken, err := jwtpkg.SignWithOptions("user-1", time.Minute, jwtpkg.SignOptions{SessionID: "sess-42"})
	require.NoError(t, err)

	assert.Equal(t, "sess-42", resolveSessionIDFromToken(jwtToken))
	assert.Equal(t, "sess-42", resolveSessionIDFromToken("Bearer "+jwtToken))

	// a non-JWT value is treated as the session id itself
	assert.Equal(t, "raw-session-id", resolveSessionIDFromToken("raw-session-id"))
	assert.Equal(t, "", resolveSessionIDFromToken("   "))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane", displayName("Jane", "jdoe"))
	assert.Equal(t, "jdoe", displayName("", "jdoe"))
	assert.Equal(t, "jdoe", displayName("   ", "jdoe"))
}
