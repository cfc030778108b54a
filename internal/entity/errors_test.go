package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrSlotAlreadyBooked, ErrConflict))
	assert.True(t, errors.Is(ErrCourseAlreadyOwned, ErrConflict))
	assert.True(t, errors.Is(ErrInvalidBookingTransition, ErrInvalidState))
	assert.True(t, errors.Is(ErrSlotTimeRange, ErrValidation))
	assert.True(t, errors.Is(ErrNotOwner, ErrForbidden))
	assert.True(t, errors.Is(ErrBookingNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrBookingNotFound, ErrConflict))
	assert.True(t, errors.Is(Invalidf("bad %s", "input"), ErrValidation))
}
