package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Init("test-secret", "1h")

	token, err := GenerateJWT("worker-1A2B3C4D", "max@example.com", "Max Muster", "worker")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "worker-1A2B3C4D", claims.UserID)
	assert.Equal(t, "max@example.com", claims.Email)
	assert.Equal(t, "worker", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	Init("secret-one", "1h")
	token, err := GenerateJWT("worker-1A2B3C4D", "max@example.com", "Max Muster", "worker")
	require.NoError(t, err)

	Init("secret-two", "1h")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("geheim123")
	require.NoError(t, err)
	assert.NotEqual(t, "geheim123", hash)

	assert.True(t, CheckPasswordHash("geheim123", hash))
	assert.False(t, CheckPasswordHash("falsch", hash))
}
