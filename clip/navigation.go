package clip

import "github.com/milk9111/animengine/common"

// NextFrame returns the nearest key time after time across the selected
// targets (all targets when none is selected). On a looping clip, stepping
// past the last key wraps to the first.
func (c *Clip) NextFrame(time float32) (float32, bool) {
	best, found := float32(0), false
	first, seen := float32(0), false
	for _, t := range c.SelectedTargets() {
		for _, kt := range t.KeyTimes() {
			if !seen || kt < first {
				first, seen = kt, true
			}
			if kt > time+common.Epsilon && (!found || kt < best) {
				best, found = kt, true
			}
		}
	}
	if !found && c.loop && seen {
		return first, true
	}
	return best, found
}

// PreviousFrame returns the nearest key time before time. On a looping clip,
// stepping back from the start wraps to the last key before the loop point.
func (c *Clip) PreviousFrame(time float32) (float32, bool) {
	best, found := float32(0), false
	last, seen := float32(0), false
	for _, t := range c.SelectedTargets() {
		for _, kt := range t.KeyTimes() {
			if kt < c.length-common.Epsilon && (!seen || kt > last) {
				last, seen = kt, true
			}
			if kt < time-common.Epsilon && (!found || kt > best) {
				best, found = kt, true
			}
		}
	}
	if !found && c.loop && seen {
		return last, true
	}
	return best, found
}
