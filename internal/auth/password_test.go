package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Argon2id(t *testing.T) {
	hash, err := hashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, verifyPassword(hash, "hunter22"))
	assert.False(t, verifyPassword(hash, "hunter23"))

	again, err := hashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ per hash")
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	// seeded hashes of owner123 / test123
	assert.True(t, verifyPassword("$2b$10$au8F/IZPZ.KNOKgRekuJDeTuhj57HVFQ5NYbgiDpw9JwgJAXEnHYW", "owner123"))
	assert.True(t, verifyPassword("$2b$10$tnqSgmbwCKTZcKCWeBDu8Od03H29IzYMCbPbF5RmXIOzq/vXrrgc2", "test123"))
	assert.False(t, verifyPassword("$2b$10$tnqSgmbwCKTZcKCWeBDu8Od03H29IzYMCbPbF5RmXIOzq/vXrrgc2", "owner123"))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	assert.False(t, verifyPassword("", "x"))
	assert.False(t, verifyPassword("$argon2id$v=19$nonsense", "x"))
	assert.False(t, verifyPassword("plaintext", "plaintext"))
}

func TestResetTokenHelpers(t *testing.T) {
	tok, err := generateRandomToken()
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	assert.Len(t, hashToken(tok), 64)
	assert.Equal(t, hashToken(tok), hashToken(tok))
	assert.NotEqual(t, tok, hashToken(tok))
}
