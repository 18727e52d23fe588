package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	typed := Clone(ErrNotFound, "lesson not found")
	wrapped := fmt.Errorf("load: %w", typed)

	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, "lesson not found", got.Message)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromErrorHidesUnknownError(t *testing.T) {
	got := FromError(stderrors.New("pq: connection refused"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.Nil(t, FromError(nil))
}

func TestCloneAndDetailsDoNotMutateOriginal(t *testing.T) {
	detailed := Clone(ErrValidation, "invalid payment").WithDetails(map[string]string{"amount": "amount is required"})
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, ErrValidation.Details)
	assert.Equal(t, "amount is required", detailed.Details["amount"])
}

func TestInternalUnwraps(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause, "failed to delete lesson series")
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "failed to delete lesson series: boom", err.Error())
}
