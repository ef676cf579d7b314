package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse_RoundTripConJTI(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token, err := jwt.Generate(secret, "custodia", "user-1", "usuario", "sess-1", now, now.Add(24*time.Hour))
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, token, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID())
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "usuario", claims.Role)
	assert.Equal(t, "custodia", claims.Issuer)
}

func TestParse_TokenExpirado(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token, err := jwt.Generate(secret, "custodia", "user-1", "admin", "sess-1", now, now.Add(24*time.Hour))
	require.NoError(t, err)

	_, err = jwt.Parse(secret, token, now.Add(25*time.Hour))
	assert.Error(t, err)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	now := time.Now()
	token, err := jwt.Generate(secret, "custodia", "user-1", "admin", "sess-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secret", token, now)
	assert.Error(t, err)
}

func TestParse_SinJTI(t *testing.T) {
	now := time.Now()
	token, err := jwt.Generate(secret, "custodia", "user-1", "admin", "", now, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = jwt.Parse(secret, token, now)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "custodia", "user-1", "admin", "sess-1", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}
