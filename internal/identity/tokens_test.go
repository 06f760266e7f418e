package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTrip(t *testing.T) {
	tok := NewTokens("test-secret", time.Hour)
	u := User{ID: uuid.New(), Email: "a@b.co", Username: "abc"}

	signed, exp, err := tok.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := tok.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, u, *got)
}

func TestTokensRejectExpired(t *testing.T) {
	tok := NewTokens("test-secret", time.Minute)
	tok.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, _, err := tok.Issue(User{ID: uuid.New()})
	require.NoError(t, err)

	tok.now = time.Now
	_, err = tok.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectWrongSecret(t *testing.T) {
	signed, _, err := NewTokens("secret-a", time.Hour).Issue(User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectNoneAlgorithm(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("test-secret", time.Hour).Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectGarbage(t *testing.T) {
	_, err := NewTokens("test-secret", time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
