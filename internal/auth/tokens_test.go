package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour, 24*time.Hour)
	pair, err := tok.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	id, err := tok.Parse(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	id, err = tok.Parse(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokens_WrongType(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour, 24*time.Hour)
	pair, err := tok.Issue("user-1")
	require.NoError(t, err)

	_, err = tok.Parse(pair.AccessToken, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tok.Parse(pair.RefreshToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour, 24*time.Hour)
	issued := time.Now()
	tok.now = func() time.Time { return issued }
	pair, err := tok.Issue("user-1")
	require.NoError(t, err)

	tok.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tok.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tok.Parse(pair.RefreshToken, TypeRefresh)
	assert.NoError(t, err)
}

func TestTokens_WrongSecretAndAlgorithm(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour, time.Hour)
	other := NewTokens([]byte("other"), time.Hour, time.Hour)
	pair, err := other.Issue("user-1")
	require.NoError(t, err)
	_, err = tok.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Type: TypeAccess, RegisteredClaims: jwt.RegisteredClaims{
		Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tok.Parse(s, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tok.Parse("garbage", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
