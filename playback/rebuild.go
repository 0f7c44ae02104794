package playback

import (
	"fmt"
	"time"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
)

func (e *Engine) clipDirtied(*clip.Clip) {
	e.MarkDirty()
}

// nextChanged dirties the transition clips that start from the clip whose
// next name moved, both the one it left and the one it now leads into.
func (e *Engine) nextChanged(ch clip.NextChange) {
	for _, o := range e.clips {
		if o == ch.Clip || o.Layer() != ch.Clip.Layer() || !o.TransitionPrevious() {
			continue
		}
		if o.Name() == ch.From || o.Name() == ch.To {
			o.DirtyAll()
		}
	}
}

// MarkDirty schedules a rebuild for the next tick. Any number of calls before
// that tick result in one rebuild. Edits made while a rebuild is running are
// an error reported by that rebuild.
func (e *Engine) MarkDirty() {
	if e.rebuilding {
		e.reentrant = true
		return
	}
	e.rebuildPending = true
}

// RebuildPending reports whether a rebuild is scheduled.
func (e *Engine) RebuildPending() bool {
	return e.rebuildPending
}

// RebuildNow runs the rebuild immediately instead of waiting for the next
// tick, then replays a sample that was deferred by the pending rebuild.
func (e *Engine) RebuildNow() error {
	if e.rebuilding {
		return fmt.Errorf("playback: rebuild: %w", ErrRebuildInProgress)
	}
	err := e.rebuild()
	if err == nil && e.sampleAfterRebuild {
		e.Sample()
	}
	return err
}

// rebuild validates every clip, re-derives curves, stitches transitions and
// clears dirty flags. Failures are logged and leave the engine usable.
func (e *Engine) rebuild() (err error) {
	start := time.Now()
	e.rebuilding = true
	e.rebuildPending = false
	e.reentrant = false
	logger := common.Logger()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("playback: rebuild panicked: %v", r)
		}
		if err == nil && e.reentrant {
			err = fmt.Errorf("playback: clips edited during rebuild: %w", ErrRebuildInProgress)
		}
		e.rebuilding = false
		elapsed := time.Since(start)
		if err != nil {
			// whatever was left dirty gets another attempt next tick
			e.rebuildPending = e.anyDirty()
			logger.Warn("rebuild failed", "error", err, "elapsed", elapsed)
		}
		if elapsed > e.cfg.RebuildWarnAfter {
			logger.Warn("slow rebuild", "elapsed", elapsed, "threshold", e.cfg.RebuildWarnAfter, "clips", len(e.clips))
		}
	}()

	opts := clip.RebuildOptions{Uniform: e.cfg.UniformTangents}
	for _, c := range e.clips {
		c.Validate()
	}
	for _, c := range e.clips {
		c.RebuildCurves(opts)
	}
	for _, c := range e.clips {
		if !c.IsTransition() {
			continue
		}
		prev, next := e.transitionNeighbours(c)
		if c.RebuildTransition(prev, next, opts) {
			logger.Debug("stitched transition", "clip", c.QualifiedName())
		}
	}
	for _, c := range e.clips {
		c.ClearDirty()
	}
	e.index.Rebuild(e.clips)

	info := RebuildInfo{Clips: len(e.clips), Duration: time.Since(start)}
	logger.Debug("rebuilt clips", "clips", info.Clips, "elapsed", info.Duration)
	e.onRebuilt.Emit(info)
	return nil
}

// transitionNeighbours finds the clip that sequences into c and the clip c
// sequences to. Only literal next names are followed.
func (e *Engine) transitionNeighbours(c *clip.Clip) (prev, next *clip.Clip) {
	if c.TransitionPrevious() {
		for _, other := range e.clips {
			if other != c && other.Layer() == c.Layer() && other.NextName() == c.Name() {
				prev = other
				break
			}
		}
	}
	if c.TransitionNext() && c.NextName() != "" {
		for _, other := range e.clips {
			if other != c && other.Layer() == c.Layer() && other.Name() == c.NextName() {
				next = other
				break
			}
		}
	}
	return prev, next
}

func (e *Engine) anyDirty() bool {
	for _, c := range e.clips {
		if c.IsDirty() {
			return true
		}
	}
	return false
}
