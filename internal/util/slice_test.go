package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	// GIVEN
	values := []float64{3, -1, 7, 2}

	// THEN
	assert.Equal(t, -1.0, Min(values))
	assert.Equal(t, 7.0, Max(values))
	assert.Equal(t, 0.0, Min(nil))
	assert.Equal(t, 0.0, Max(nil))
}

func TestSortedKeys(t *testing.T) {
	// GIVEN
	input := map[string]int{
		"steering": 1,
		"altitude": 2,
		"heading":  3,
	}

	// WHEN
	result := SortedKeys(input)

	// THEN
	assert.Equal(t, []string{"altitude", "heading", "steering"}, result)
}
