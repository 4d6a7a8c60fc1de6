package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("MonMotDePasse42!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := VerifyPassword("MonMotDePasse42!", hash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyPasswordWrongPassword(t *testing.T) {
	hash, err := HashPassword("bon-mot-de-passe")
	require.NoError(t, err)

	valid, err := VerifyPassword("mauvais-mot-de-passe", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	h1, err := HashPassword("pareil")
	require.NoError(t, err)
	h2, err := HashPassword("pareil")
	require.NoError(t, err)

	// Deux hashs du même mot de passe doivent différer (sel aléatoire)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("peu-importe", "pas-un-hash")
	assert.Error(t, err)
}

func TestIsArgon2Hash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, IsArgon2Hash(hash))
	assert.False(t, IsArgon2Hash("$2a$10$abcdefghijklmnopqrstuv"))
	assert.False(t, IsArgon2Hash(""))
}
