package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsAppError_WrappedChain(t *testing.T) {
	base := NewNotFound("purchase", "PUR-1")
	wrapped := fmt.Errorf("receive: %w", base)

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestIsDuplicate(t *testing.T) {
	dup := NewDuplicate("mobile", "imei_number1", "3566")
	assert.True(t, IsDuplicate(fmt.Errorf("line 1: %w", dup)))
	assert.False(t, IsDuplicate(NewValidation("bad")))
	assert.False(t, IsDuplicate(errors.New("plain")))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestInternal_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("dealerId is required").WithDetail("field", "dealerId")
	assert.Equal(t, "dealerId", err.Details["field"])
}
