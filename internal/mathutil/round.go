package mathutil

import "math"

// RoundHalfUp rounds to the nearest integer with ties going towards +Inf,
// so -2.5 rounds to -2. math.Round would give -3 and shift every shadow
// pixel that lands on a half coordinate left of the origin.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// UnitToByte converts a [0, 1] value to a byte, rounding half-up.
func UnitToByte(v float64) uint8 {
	return uint8(RoundHalfUp(Clamp01(v) * 255))
}
