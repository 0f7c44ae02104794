package clip

import (
	"github.com/milk9111/animengine/common"
	"github.com/milk9111/animengine/curve"
)

// RebuildOptions tune how curve types are re-derived.
type RebuildOptions struct {
	// Uniform smooths with the uniform-spacing solver instead of the
	// segment-weighted one.
	Uniform bool
}

// Validate makes sure every dirty target has keys at 0 and at the clip length,
// and drops keys past the length. Missing edges copy the curve's value at that
// time, or the target default for an empty curve.
func (c *Clip) Validate() {
	done := c.silence()
	defer done()
	for _, t := range c.targets {
		if t.dirty {
			c.validateTarget(t)
		}
	}
}

func (c *Clip) validateTarget(t *Target) {
	if t.ref.Kind == KindTriggerTrack {
		for i := len(t.triggers) - 1; i >= 0; i-- {
			if t.triggers[i].Time > c.length+common.Epsilon {
				t.triggers = t.triggers[:i]
			}
		}
		return
	}
	for i, cv := range t.curves {
		c.ensureEdge(t, i, cv, 0)
		c.ensureEdge(t, i, cv, c.length)
		for j := cv.Len() - 1; j >= 0; j-- {
			if cv.Key(j).Time <= c.length+common.Epsilon {
				break
			}
			_ = cv.RemoveKey(j)
		}
	}
}

func (c *Clip) ensureEdge(t *Target, channel int, cv *curve.Curve, time float32) {
	if cv.KeyframeBinarySearch(time, false) != -1 {
		return
	}
	v := t.defaults[channel]
	if cv.Len() > 0 {
		v = cv.Evaluate(time)
	}
	cv.AddKeyframe(curve.NewKeyframe(time, v, t.CurveTypeAt(time)))
}

// RebuildCurves re-derives control points for every dirty target from the
// curve types assigned to its keyframe times. Looping clips copy the first
// value onto the last key, and smooth with the cyclic solver when the key at
// 0 is smooth.
func (c *Clip) RebuildCurves(opts RebuildOptions) {
	done := c.silence()
	defer done()
	for _, t := range c.targets {
		if t.dirty {
			c.rebuildTarget(t, opts)
		}
	}
}

func (c *Clip) rebuildTarget(t *Target, opts RebuildOptions) {
	applyOpts := curve.ApplyOptions{
		Loop:    c.loop && t.CurveTypeAt(0) == curve.TypeSmooth,
		Uniform: opts.Uniform,
	}
	for _, cv := range t.curves {
		n := cv.Len()
		for i := 0; i < n; i++ {
			k := cv.Key(i)
			k.CurveType = t.CurveTypeAt(k.Time)
			_ = cv.SetKeyframeAt(i, k)
		}
		if c.loop && n > 1 {
			last := cv.Key(n - 1)
			last.Value = cv.Key(0).Value
			_ = cv.SetKeyframeAt(n-1, last)
		}
		cv.ApplyTypes(applyOpts)
	}
}

// RebuildTransition stitches the clip's edges to its neighbours: the end of
// prev is pasted at 0 and the start of next at the clip length. It only runs
// when the clip or a neighbour is dirty, and reports whether it did.
func (c *Clip) RebuildTransition(prev, next *Clip, opts RebuildOptions) bool {
	if !c.IsTransition() {
		return false
	}
	if !c.IsDirty() && !prev.dirtyOrNil() && !next.dirtyOrNil() {
		return false
	}
	done := c.silence()
	defer done()

	touched := make(map[*Target]bool)
	stitch := func(from *Clip, fromTime, toTime float32) {
		entry := from.Copy(fromTime, from.targets)
		for _, snap := range entry.Snapshots {
			if t, err := c.paste(toTime, snap); err == nil && t != nil {
				touched[t] = true
			}
		}
	}
	if c.transitionPrevious && prev != nil {
		stitch(prev, prev.length, 0)
	}
	if c.transitionNext && next != nil {
		stitch(next, 0, c.length)
	}
	for _, t := range c.targets {
		if !touched[t] {
			continue
		}
		t.fixQuaternionContinuity()
		c.rebuildTarget(t, opts)
	}
	return len(touched) > 0
}

func (c *Clip) dirtyOrNil() bool {
	return c != nil && c.IsDirty()
}
