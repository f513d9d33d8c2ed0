package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "numcheck/pkg/domain-errors"
)

func newTestService(opts ...Option) *Service {
	return NewService("test-signing-key", "test-issuer", "test-audience", opts...)
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService()

	signed, expiresAt, err := svc.Issue("caller-1")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "caller-1", claims.CallerID)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestValidateRejectsExpired(t *testing.T) {
	current := time.Now()
	svc := newTestService(WithTTL(time.Minute), WithClock(func() time.Time { return current }))

	signed, _, err := svc.Issue("caller-1")
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = svc.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsWrongKey(t *testing.T) {
	signed, _, err := newTestService().Issue("caller-1")
	require.NoError(t, err)

	other := NewService("different-key", "test-issuer", "test-audience")
	_, err = other.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := newTestService().Validate("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestExchange(t *testing.T) {
	hash, err := HashAPIKey("s3cret")
	require.NoError(t, err)

	svc := newTestService()
	ex := NewExchanger(svc, map[string]string{"caller-1": hash})

	t.Run("valid key issues token", func(t *testing.T) {
		signed, _, err := ex.Exchange("caller-1", "s3cret")
		require.NoError(t, err)

		claims, err := svc.Validate(signed)
		require.NoError(t, err)
		assert.Equal(t, "caller-1", claims.CallerID)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		_, _, err := ex.Exchange("caller-1", "wrong")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown caller rejected", func(t *testing.T) {
		_, _, err := ex.Exchange("nobody", "s3cret")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
