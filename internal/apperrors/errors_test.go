package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("bad %s", "input"), ErrValidation},
		{"not found", NotFound("movement %s not found", "m1"), ErrNotFound},
		{"authentication", Authentication("incorrect credentials"), ErrAuthentication},
		{"conflict", Conflict("email already exists"), ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
		})
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("service: %w", Validation("username already exists"))
	assert.Equal(t, "username already exists", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("pq: connection refused"), "fallback"))
}
