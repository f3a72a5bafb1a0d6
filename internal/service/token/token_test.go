package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret")}

	raw, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	id, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret")}

	claims := jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.Secret)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := &Service{Secret: []byte("issuer-secret")}
	verifier := &Service{Secret: []byte("other-secret")}

	raw, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret")}

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}
}

func TestVerifyRejectsUnsignedAlg(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret")}

	claims := jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}
