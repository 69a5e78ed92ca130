package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMessages(t *testing.T) {
	err := NewValidationError("download archive", ErrNoSession)
	assert.Equal(t, "No active session. Generate code first", err.Error())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NotErrorIs(t, err, ErrService)

	bare := &ValidationError{Op: "x", Err: errors.New("bad")}
	assert.Equal(t, "x: bad", bare.Error())
}

func TestServiceErrorString(t *testing.T) {
	assert.Equal(t, "generate code: Invalid session (status: 404)",
		(&ServiceError{Op: "generate code", Status: 404, Detail: "Invalid session"}).Error())
	assert.Equal(t, "optimize prompt: dial failed",
		(&ServiceError{Op: "optimize prompt", Err: errors.New("dial failed")}).Error())
	assert.Equal(t, "download file: request failed (status: 500)",
		(&ServiceError{Op: "download file", Status: 500}).Error())
}

func TestServiceErrorMatchesThroughWrapping(t *testing.T) {
	inner := errors.New("connection reset")
	err := fmt.Errorf("workflow: %w", &ServiceError{Op: "generate code", Err: inner})

	assert.ErrorIs(t, err, ErrService)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "Failed to generate code", UserMessage(err, "Failed to generate code"))
}
