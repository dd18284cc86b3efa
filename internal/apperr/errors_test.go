package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"wrapped conflict", fmt.Errorf("create: %w", Conflict("dup")), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load report", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "failed to load report: connection reset", err.Error())
}
