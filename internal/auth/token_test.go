package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ana = Identity{ID: "42", UserName: "ana", Email: "ana@x.com", Role: RoleClient}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()
	s := NewTokenService("super-secret", time.Hour)

	tok, err := s.Issue(ana)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, ana, claims.Identity)
	assert.Equal(t, "42", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	t.Parallel()
	tok, err := NewTokenService("right-secret", time.Hour).Issue(ana)
	require.NoError(t, err)

	_, err = NewTokenService("wrong-secret", time.Hour).Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()
	s := NewTokenService("secret", time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := s.Issue(ana)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	t.Parallel()
	_, err := NewTokenService("k", time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	t.Parallel()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Identity: ana,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("k", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	t.Parallel()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Identity: ana}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenService("k", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
