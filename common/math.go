package common

import "math"

// Epsilon is the tolerance used when comparing keyframe times.
const Epsilon float32 = 1e-4

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Approximately reports whether a and b differ by less than Epsilon.
func Approximately(a, b float32) bool {
	return Abs(a-b) < Epsilon
}

func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Repeat wraps t into [0, length). A non-positive length yields 0.
func Repeat(t, length float32) float32 {
	if length <= 0 {
		return 0
	}
	r := float32(math.Mod(float64(t), float64(length)))
	if r < 0 {
		r += length
	}
	return r
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
