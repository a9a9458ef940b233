package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	issuer := TokenIssuer{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "sodaclicker", TTL: time.Hour, Now: func() time.Time { return now }}

	token, expires, err := issuer.Issue("ply_1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	playerID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ply_1", playerID)
}

func TestTokenIssuerRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	issuer := TokenIssuer{Secret: []byte("secret-a"), TTL: time.Minute, Now: func() time.Time { return now }}
	token, _, err := issuer.Issue("ply_1")
	require.NoError(t, err)

	later := issuer
	later.Now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := issuer
	other.Secret = []byte("secret-b")
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
