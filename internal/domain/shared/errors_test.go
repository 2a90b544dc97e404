package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainErrorf("AMBIGUOUS", "Order #%s matches %d orders", "ABC", 2)

	assert.True(t, errors.Is(err, ErrAmbiguous))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrAmbiguous))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Order #ABC matches 2 orders", err.Error())
}

func TestValidationError(t *testing.T) {
	var empty *ValidationError
	assert.False(t, empty.HasErrors())

	verr := NewValidationError()
	assert.False(t, verr.HasErrors())

	verr.Add("days", "must be at most 365")
	verr.Add("orderId", "is required")

	assert.True(t, verr.HasErrors())
	assert.Equal(t, "Invalid input:\n- days: must be at most 365\n- orderId: is required", verr.Error())
	assert.True(t, errors.Is(verr, ErrInvalidInput))

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("ctx: %w", verr), &target))
	assert.Len(t, target.Fields, 2)
}
