package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetToken(t *testing.T) {
	token := generateResetToken()

	// 32 octets encodés base64 URL-safe : utilisable tel quel dans un lien
	require.NotEmpty(t, token)
	assert.GreaterOrEqual(t, len(token), 43)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.False(t, strings.ContainsAny(token, " \t\n"))
}

func TestGenerateResetTokenUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token := generateResetToken()
		require.False(t, seen[token], "token de réinitialisation dupliqué")
		seen[token] = true
	}
}
