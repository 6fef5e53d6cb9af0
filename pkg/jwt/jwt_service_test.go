package jwt

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/utils"
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	svc := NewJWTServiceWithSecret("secret")

	token, err := svc.GenerateTokenUser("id-1", "alice", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.GetUserByToken(token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "id-1", Username: "alice", Role: domain.RoleAdmin}, claims)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewJWTServiceWithSecret("one").GenerateTokenUser("id", "bob", domain.RoleUser)
	require.NoError(t, err)

	_, err = NewJWTServiceWithSecret("two").GetUserByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestExpiredToken(t *testing.T) {
	svc := &jwtService{
		secretKey: "secret",
		issuer:    "PRICECROWD",
		now:       func() time.Time { return time.Now().Add(-48 * time.Hour) },
	}
	token, err := svc.GenerateTokenUser("id", "bob", domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.GetUserByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestGarbageToken(t *testing.T) {
	_, err := NewJWTServiceWithSecret("secret").GetUserByToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { utils.LoadConfigFile(missing) })

	t.Setenv("JWT_SECRET", "")
	utils.LoadConfigFile(missing)
	svc, err := NewJWTService()
	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, svc)

	t.Setenv("JWT_SECRET", "configured")
	utils.LoadConfigFile(missing)
	svc, err = NewJWTService()
	require.NoError(t, err)
	token, err := svc.GenerateTokenUser("id", "alice", domain.RoleUser)
	require.NoError(t, err)
	_, err = svc.GetUserByToken(token)
	assert.NoError(t, err)
}

func TestEmptySecretRejectsForgedAdminToken(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtUserClaim{
		UserID:   "x",
		Username: "mallory",
		Role:     domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "PRICECROWD",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte(""))
	require.NoError(t, err)

	svc := NewJWTServiceWithSecret("")
	_, err = svc.GetUserByToken(signed)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.GenerateTokenUser("id", "alice", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
