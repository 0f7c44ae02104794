package curve

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/milk9111/animengine/common"
)

// NotAdded is returned by the insertion methods when a key already exists at
// the requested time.
const NotAdded = -1

// Curve is the time-ordered keyframe list of one scalar channel. Keyframes
// are addressed by index; times are strictly increasing.
type Curve struct {
	keys []Keyframe
}

// New builds a curve from keys, skipping any whose time is already taken.
func New(keys ...Keyframe) *Curve {
	c := &Curve{keys: make([]Keyframe, 0, len(keys))}
	for _, k := range keys {
		c.AddKeyframe(k)
	}
	return c
}

func (c *Curve) Len() int {
	return len(c.keys)
}

// Key returns the keyframe at index i. It panics if i is out of range.
func (c *Curve) Key(i int) Keyframe {
	return c.keys[i]
}

// Keys returns a copy of the keyframes.
func (c *Curve) Keys() []Keyframe {
	return slices.Clone(c.keys)
}

// KeyTimes returns the time of every keyframe, ascending.
func (c *Curve) KeyTimes() []float32 {
	times := make([]float32, len(c.keys))
	for i, k := range c.keys {
		times[i] = k.Time
	}
	return times
}

// Duration returns the time of the last keyframe, or 0 for an empty curve.
func (c *Curve) Duration() float32 {
	if len(c.keys) == 0 {
		return 0
	}
	return c.keys[len(c.keys)-1].Time
}

func (c *Curve) Clone() *Curve {
	return &Curve{keys: slices.Clone(c.keys)}
}

func (c *Curve) Clear() {
	c.keys = c.keys[:0]
}

// AddKey inserts a smooth keyframe at time with control points on value.
func (c *Curve) AddKey(time, value float32) int {
	return c.AddKeyframe(NewKeyframe(time, value, TypeSmooth))
}

// AddKeyframe inserts k keeping ascending order and returns its index, or
// NotAdded when a key already exists at k.Time (within common.Epsilon) or the
// time is invalid.
func (c *Curve) AddKeyframe(k Keyframe) int {
	if !validTime(k.Time) {
		return NotAdded
	}
	if c.KeyframeBinarySearch(k.Time, false) != -1 {
		return NotAdded
	}
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time > k.Time })
	c.keys = slices.Insert(c.keys, i, k)
	return i
}

// SetKeyframe writes value at time, updating the existing key in place when
// one is there (its curve type and control points are kept).
func (c *Curve) SetKeyframe(time, value float32, ct Type) int {
	if i := c.KeyframeBinarySearch(time, false); i != -1 {
		c.keys[i].Value = value
		return i
	}
	return c.AddKeyframe(NewKeyframe(time, value, ct))
}

// SetKeyframeAt replaces the value fields of the key at index i without
// moving it in time.
func (c *Curve) SetKeyframeAt(i int, k Keyframe) error {
	if i < 0 || i >= len(c.keys) {
		return fmt.Errorf("curve: set %d of %d: %w", i, len(c.keys), ErrIndexOutOfRange)
	}
	k.Time = c.keys[i].Time
	c.keys[i] = k
	return nil
}

// MoveKey replaces the key at index i with k. A key whose time is unchanged is
// replaced in place; otherwise it is removed and reinserted. When the new time
// collides with another key the curve is left untouched and NotAdded returned.
func (c *Curve) MoveKey(i int, k Keyframe) int {
	if i < 0 || i >= len(c.keys) {
		return NotAdded
	}
	old := c.keys[i]
	if common.Approximately(old.Time, k.Time) {
		k.Time = old.Time
		c.keys[i] = k
		return i
	}
	c.keys = slices.Delete(c.keys, i, i+1)
	if idx := c.AddKeyframe(k); idx != NotAdded {
		return idx
	}
	c.keys = slices.Insert(c.keys, i, old)
	return NotAdded
}

// RemoveKey deletes the key at index i.
func (c *Curve) RemoveKey(i int) error {
	if i < 0 || i >= len(c.keys) {
		return fmt.Errorf("curve: remove %d of %d: %w", i, len(c.keys), ErrIndexOutOfRange)
	}
	c.keys = slices.Delete(c.keys, i, i+1)
	return nil
}

// KeyframeBinarySearch finds the key at time within common.Epsilon. On a miss
// it returns the nearer bracketing index when returnClosest is set, -1
// otherwise.
func (c *Curve) KeyframeBinarySearch(time float32, returnClosest bool) int {
	n := len(c.keys)
	if n == 0 {
		return -1
	}
	lo, hi := 0, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		kt := c.keys[mid].Time
		switch {
		case time > kt+common.Epsilon:
			lo = mid + 1
		case time < kt-common.Epsilon:
			hi = mid - 1
		default:
			return mid
		}
	}
	if !returnClosest {
		return -1
	}
	if lo >= n {
		return n - 1
	}
	if hi < 0 {
		return 0
	}
	if time-c.keys[hi].Time <= c.keys[lo].Time-time {
		return hi
	}
	return lo
}

// Evaluate samples the curve at time. The time is clamped to the key span; the
// Bezier parameter is the linear position of time within its segment.
func (c *Curve) Evaluate(time float32) float32 {
	n := len(c.keys)
	switch {
	case n == 0:
		return 0
	case n == 1:
		return c.keys[0].Value
	}
	if math.IsNaN(float64(time)) || time <= c.keys[0].Time {
		return c.keys[0].Value
	}
	last := c.keys[n-1]
	if time >= last.Time {
		return last.Value
	}
	// first key strictly after time; keys[i-1] starts the segment
	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > time })
	return EvaluateSegment(c.keys[i-1], c.keys[i], time)
}

// EvaluateSegment evaluates the cubic Bezier (from.Value, from.ControlPointOut,
// to.ControlPointIn, to.Value) at time.
func EvaluateSegment(from, to Keyframe, time float32) float32 {
	span := to.Time - from.Time
	if span <= 0 {
		return from.Value
	}
	t := (time - from.Time) / span
	u := 1 - t
	return u*u*u*from.Value +
		3*u*u*t*from.ControlPointOut +
		3*u*t*t*to.ControlPointIn +
		t*t*t*to.Value
}

func validTime(t float32) bool {
	return t >= 0 && !math.IsNaN(float64(t)) && !math.IsInf(float64(t), 0)
}
