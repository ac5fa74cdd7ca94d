package mathutil

import "math"

// Vec2 is a 2-component vector in background pixel space (x right, y down).
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Round rounds both components half-up to integer pixel coordinates.
func (v Vec2) Round() (int, int) {
	return RoundHalfUp(v[0]), RoundHalfUp(v[1])
}

// Polar returns the vector of the given length pointing along angle (radians).
func Polar(angle, length float64) Vec2 {
	return Vec2{math.Cos(angle) * length, math.Sin(angle) * length}
}
