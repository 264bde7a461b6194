package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	t.Run("uses message when present", func(t *testing.T) {
		err := New(CodeAlreadyReviewed, "record already reviewed")
		assert.Equal(t, "record already reviewed", err.Error())
	})

	t.Run("falls back to code when message empty", func(t *testing.T) {
		err := New(CodeStorageFailure, "")
		assert.Equal(t, "storage_failure", err.Error())
	})
}

func TestWrapPreservesCode(t *testing.T) {
	inner := New(CodeAlreadyVerified, "user already verified")
	outer := Wrap(inner, CodeInternal, "submission failed")

	assert.True(t, HasCode(outer, CodeAlreadyVerified), "wrapping must not overwrite the original domain code")
	assert.False(t, HasCode(outer, CodeInternal))
}

func TestWrapNonDomainError(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	outer := Wrap(inner, CodeStorageFailure, "asset upload failed")

	assert.True(t, HasCode(outer, CodeStorageFailure))
	assert.True(t, errors.Is(outer, inner) || errors.Unwrap(outer) == inner)
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeMissingReason, "rejection reason required")
	require.True(t, errors.Is(err, &Error{Code: CodeMissingReason}))
	require.False(t, errors.Is(err, &Error{Code: CodeValidation}))
}

func TestHasCodeOnPlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("boom"), CodeInternal))
}
