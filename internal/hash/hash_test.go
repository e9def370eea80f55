package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_NotPlaintext(t *testing.T) {
	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", h)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, Cost, cost)
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("Secret123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(h, "Secret123"))
	assert.False(t, CheckPassword(h, "secret123"))
}

func TestCheckPassword_SaltedDigestsDiffer(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, CheckPassword(a, "same"))
	assert.True(t, CheckPassword(b, "same"))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "whatever"))
	assert.False(t, CheckPassword("", ""))
}

func TestHashPassword_Empty(t *testing.T) {
	h, err := HashPassword("")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, ""))
	assert.False(t, CheckPassword(h, "x"))
}
