package token

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	iss := NewIssuer("test-secret", 7*24*time.Hour)

	tok, err := iss.Sign("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	good, err := iss.Sign("user-1")
	require.NoError(t, err)

	expired := NewIssuer("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Sign("user-1")
	require.NoError(t, err)

	none := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := iss.Sign("")
	require.NoError(t, err)

	tests := []struct {
		name  string
		iss   *Issuer
		token string
	}{
		{"wrong secret", NewIssuer("other-secret", time.Hour), good},
		{"expired", iss, old},
		{"garbage", iss, "not.a.token"},
		{"alg none", iss, unsigned},
		{"empty subject", iss, noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.iss.Parse(tt.token)
			assert.Error(t, err)
		})
	}
}
