package util

import "math"

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	if len(values) <= 0 {
		return 0
	}
	return Sum(values) / (float64(len(values)))
}

// Sum calculates the sum of all values in the given array
func Sum(values []float64) float64 {
	sum := 0.0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return sum
}

// Coerce returns a value that is at least min and at most max, otherwise equal to value
func Coerce(value float64, min float64, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}
