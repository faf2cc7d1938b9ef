package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRating(t *testing.T) {
	for _, v := range []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5} {
		assert.True(t, validRating(v), "%.1f should be valid", v)
	}
	for _, v := range []float64{0, 0.25, 0.4, 5.5, 6, -1, 3.7, 4.99} {
		assert.False(t, validRating(v), "%.2f should be invalid", v)
	}
}
