package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReviewList(t *testing.T) {
	empty := NewReviewList(nil)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Reviews)
	assert.Zero(t, empty.AverageRating)

	list := NewReviewList([]*Review{{Rating: 5}, {Rating: 4}, {Rating: 3}})
	assert.Equal(t, 3, list.Count)
	assert.InDelta(t, 4.0, list.AverageRating, 0.0001)
}
