package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "required field error",
			field:    "title",
			message:  "title is required",
			expected: "validation error on field 'title': title is required",
		},
		{
			name:     "empty field name",
			field:    "",
			message:  "test message",
			expected: "validation error on field '': test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{Field: tt.field, Message: tt.message}
			assert.Equal(t, tt.expected, err.Error())
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestRequestError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &RequestError{StatusCode: 400, Message: "bad input"}
		assert.Equal(t, "summarize request failed: HTTP 400: bad input", err.Error())
	})

	t.Run("transport failure", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := &RequestError{Message: "post", Err: cause}
		assert.Equal(t, "summarize request failed: post", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		err := fmt.Errorf("chunk 2: %w", &RequestError{StatusCode: 500})
		assert.True(t, IsRequestError(err))
		assert.False(t, IsTransient(err))
	})
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrTransientUnavailable))
	assert.True(t, IsTransient(fmt.Errorf("model loading: %w", ErrTransientUnavailable)))
	assert.False(t, IsTransient(errors.New("other")))
	assert.False(t, IsTransient(nil))
}
