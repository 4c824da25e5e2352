package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("super-secret", 7*24*time.Hour)

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := issuer.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("super-secret", -1*time.Second)

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = issuer.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("right-secret", time.Hour)
	other := NewTokenIssuer("wrong-secret", time.Hour)

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = other.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		_, err := issuer.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenIssuer_TamperedPayload(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	tok, err := issuer.Issue("user-123")
	require.NoError(t, err)

	tampered := tok[:len(tok)-4] + "AAAA"
	_, err = issuer.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
