package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("super-secret")

func TestGetUserIDFromToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("user-123", testSecret, time.Hour)
	require.NoError(t, err)

	got, err := GetUserIDFromToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u1", testSecret, -time.Second)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, testSecret)
	assert.Equal(t, common.ErrTokenExpired, err)
}

func TestGetUserIDFromToken_Invalid(t *testing.T) {
	t.Parallel()

	good, err := GenerateToken("u2", testSecret, time.Hour)
	require.NoError(t, err)
	noSubject, err := GenerateToken("", testSecret, time.Hour)
	require.NoError(t, err)

	tests := map[string]struct {
		token  string
		secret []byte
	}{
		"wrong secret":  {good, []byte("wrong-secret")},
		"malformed":     {"not.a.jwt", testSecret},
		"empty":         {"", testSecret},
		"no subject":    {noSubject, testSecret},
		"foreign":       {sign(t, jwt.RegisteredClaims{Issuer: "someone-else", Subject: "u2", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}), testSecret},
		"no expiration": {sign(t, jwt.RegisteredClaims{Issuer: Issuer, Subject: "u2"}), testSecret},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := GetUserIDFromToken(tt.token, tt.secret)
			require.ErrorIs(t, err, common.ErrInvalidToken)
			assert.NotErrorIs(t, err, common.ErrTokenExpired)
		})
	}
}

func TestGetUserIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{Issuer: Issuer, Subject: "u3", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, testSecret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func sign(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return tok
}
