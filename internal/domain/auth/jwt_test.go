package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "weavebooks/internal/core/context"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, exp, err := svc.GenerateAccessToken(appctx.UserContext{UserID: "u-1", AccountID: "acct-1", Email: "a@b.c"})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "acct-1", user.AccountID)
	assert.Equal(t, "a@b.c", user.Email)
}

func TestJWT_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	other, _, err := NewJWTService(DefaultJWTConfig("other")).GenerateAccessToken(appctx.UserContext{AccountID: "acct-1"})
	require.NoError(t, err)

	expiredSvc := NewJWTService(DefaultJWTConfig("secret"))
	expiredSvc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := expiredSvc.GenerateAccessToken(appctx.UserContext{AccountID: "acct-1"})
	require.NoError(t, err)

	noAccount, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "weavebooks", Subject: "u-1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  other,
		"expired":       expired,
		"no account":    noAccount,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(tok)
			assert.Error(t, err)
		})
	}
}

func TestGenerateAccessToken_RequiresAccount(t *testing.T) {
	_, _, err := NewJWTService(DefaultJWTConfig("secret")).GenerateAccessToken(appctx.UserContext{UserID: "u-1"})
	assert.ErrorIs(t, err, ErrNoAccount)
}
