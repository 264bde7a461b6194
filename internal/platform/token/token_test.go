package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "fdm", time.Hour)

	signed, err := svc.Generate("user-1", "admin", time.Now())
	require.NoError(t, err)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "fdm", time.Minute)

	signed, err := svc.Generate("user-1", "", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuing := NewService("key-one", "fdm", time.Hour)
	validating := NewService("key-two", "fdm", time.Hour)

	signed, err := issuing.Generate("user-1", "", time.Now())
	require.NoError(t, err)

	_, err = validating.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	issuing := NewService("test-signing-key", "other-service", time.Hour)
	validating := NewService("test-signing-key", "fdm", time.Hour)

	signed, err := issuing.Generate("user-1", "", time.Now())
	require.NoError(t, err)

	_, err = validating.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "fdm", time.Hour)
	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}

func TestMiddlewareAdapter(t *testing.T) {
	svc := NewService("test-signing-key", "fdm", time.Hour)
	adapter := NewMiddlewareAdapter(svc)

	signed, err := svc.Generate("user-1", "admin", time.Now())
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}
