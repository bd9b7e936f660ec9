package utils

import "math"

// ProgressPercentage is current/target as a percentage clamped to [0, 100].
// A non-positive target yields 0.
func ProgressPercentage(currentValue, targetValue float64) float64 {
	if targetValue <= 0 {
		return 0
	}
	percentage := currentValue / targetValue * 100
	return math.Min(100, math.Max(0, percentage))
}
