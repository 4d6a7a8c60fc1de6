package utils

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokroom_back_end/internal/models"
)

func TestGenerateJWTClaims(t *testing.T) {
	os.Setenv("JWT_SECRET", "secret-de-test")
	defer os.Unsetenv("JWT_SECRET")

	user := models.User{
		ID:    "11111111-2222-3333-4444-555555555555",
		Email: "claire@example.com",
		Role:  "host",
	}

	tokenStr, err := GenerateJWT(user)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret-de-test"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)

	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, "host", claims["role"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.Greater(t, int64(exp), time.Now().Unix())
}

func TestGenerateCheckinQR(t *testing.T) {
	qr, err := GenerateCheckinQR("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)

	assert.Contains(t, qr, "data:image/png;base64,")
	assert.Greater(t, len(qr), 100)
}
