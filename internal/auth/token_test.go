package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vdellis/inkpost/internal/apperr"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc, err := NewTokenService("super-secret", time.Hour)
	require.NoError(t, err)

	token, exp, err := svc.Issue(42)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), got)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("right-secret", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("wrong-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue(1)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc, err := NewTokenService("k", time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "not.a.jwt", "abc"} {
		_, err := svc.Verify(token)
		require.ErrorIs(t, err, apperr.ErrUnauthorized, "token %q", token)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	svc, err := NewTokenService("k", time.Hour)
	require.NoError(t, err)

	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, _, err := svc.Issue(7)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	got, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), got)

	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	require.Error(t, err)
}
