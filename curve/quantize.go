package curve

import "math"

// ToMilliseconds quantises a time in seconds to whole milliseconds.
func ToMilliseconds(t float32) int64 {
	return int64(math.Round(float64(t) * 1000))
}

func FromMilliseconds(ms int64) float32 {
	return float32(float64(ms) / 1000)
}

// RoundToMilliseconds drops sub-millisecond noise from t.
func RoundToMilliseconds(t float32) float32 {
	return FromMilliseconds(ToMilliseconds(t))
}

// Snap rounds t to the nearest multiple of step, then to milliseconds. A
// non-positive step only rounds to milliseconds.
func Snap(t, step float32) float32 {
	if step <= 0 {
		return RoundToMilliseconds(t)
	}
	snapped := math.Round(float64(t)/float64(step)) * float64(step)
	return RoundToMilliseconds(float32(snapped))
}
