package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetWindowAvg(t *testing.T) {
	// GIVEN
	window := CreateRollingWindow(4)
	FillWindow(window, 4, 2)
	window.Append(6)

	// WHEN
	avg := GetWindowAvg(window)

	// THEN
	assert.Equal(t, 3.0, avg)
}
