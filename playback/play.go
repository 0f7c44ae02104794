package playback

import (
	"fmt"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
)

// PlayClip starts c. When another clip is main in c's layer the two are
// cross-faded over c's blend-in duration; otherwise c ramps up on its own.
// With sequencing enabled, c's next clip is scheduled.
func (e *Engine) PlayClip(c *clip.Clip, sequencing bool) error {
	if !e.owns(c) {
		return fmt.Errorf("playback: play %v: %w", c, ErrForeignClip)
	}
	e.sequencing = sequencing
	e.playing = true
	if main := e.mainInLayer(c.Layer()); main != nil && main != c {
		e.TransitionAnimation(main, c)
		return nil
	}
	if !c.Playback.MainInLayer {
		e.start(c)
	}
	if e.sequencing {
		e.AssignNextAnimation(c)
	}
	e.onPlaybackChanged.Emit(c)
	return nil
}

// PlayByName plays the clip with the given name, or "layer/name".
func (e *Engine) PlayByName(name string) error {
	c, err := e.GetClipQualified(name)
	if err != nil {
		if c, err = e.GetClip(name); err != nil {
			return err
		}
	}
	return e.PlayClip(c, e.cfg.Sequencing)
}

// Play plays the current clip.
func (e *Engine) Play() error {
	if e.current == nil {
		return fmt.Errorf("playback: play: %w", ErrNoCurrentClip)
	}
	return e.PlayClip(e.current, e.cfg.Sequencing)
}

// TransitionAnimation fades from out to in over in's blend-in duration and
// hands the layer's main flag to in.
func (e *Engine) TransitionAnimation(out, in *clip.Clip) {
	e.unschedule(out)
	out.Playback.MainInLayer = false
	e.ramp(out, 0, in.BlendIn())
	e.start(in)
	common.Logger().Info("transition", "from", out.QualifiedName(), "to", in.QualifiedName(), "blend", in.BlendIn())
	if e.sequencing {
		e.AssignNextAnimation(in)
	}
	e.onPlaybackChanged.Emit(out)
	e.onPlaybackChanged.Emit(in)
}

func (e *Engine) start(c *clip.Clip) {
	for _, other := range e.clips {
		if other != c && other.Layer() == c.Layer() && other.Playback.MainInLayer {
			other.Playback.MainInLayer = false
		}
	}
	if !c.Playback.Enabled {
		c.Playback.Weight = 0
	}
	c.Playback.Enabled = true
	c.Playback.MainInLayer = true
	c.SetClipTime(0)
	c.ResetSampling()
	e.ramp(c, c.Weight(), c.BlendIn())
	common.Logger().Info("play clip", "clip", c.QualifiedName())
}

// ramp sets c's blend rate so its weight reaches target after duration. A
// non-positive duration jumps straight there.
func (e *Engine) ramp(c *clip.Clip, target, duration float32) {
	if duration <= 0 {
		c.Playback.Weight = target
		c.Playback.BlendRate = 0
		if target <= 0 {
			e.disable(c)
		}
		return
	}
	c.Playback.BlendRate = (target - c.Playback.Weight) / duration
	if c.Playback.BlendRate == 0 && target <= 0 {
		e.disable(c)
	}
}

// applyRamp advances c's weight by its blend rate over dt.
func (e *Engine) applyRamp(c *clip.Clip, dt float32) {
	rate := c.Playback.BlendRate
	if rate == 0 || dt <= 0 {
		return
	}
	w := c.Playback.Weight + rate*dt
	switch {
	case rate < 0 && w <= common.Epsilon:
		c.Playback.Weight = 0
		c.Playback.BlendRate = 0
		e.disable(c)
		e.onPlaybackChanged.Emit(c)
	case rate > 0 && w >= c.Weight()-common.Epsilon:
		c.Playback.Weight = c.Weight()
		c.Playback.BlendRate = 0
	default:
		c.Playback.Weight = w
	}
}

func (e *Engine) disable(c *clip.Clip) {
	c.Playback.Enabled = false
	c.Playback.MainInLayer = false
	c.Playback.Weight = 0
	c.Playback.BlendRate = 0
	e.unschedule(c)
}

// StopClip fades c out over its blend-in duration.
func (e *Engine) StopClip(c *clip.Clip) error {
	if !e.owns(c) {
		return fmt.Errorf("playback: stop %v: %w", c, ErrForeignClip)
	}
	if !c.Playback.Enabled {
		return nil
	}
	c.Playback.MainInLayer = false
	e.unschedule(c)
	e.ramp(c, 0, c.BlendIn())
	e.onPlaybackChanged.Emit(c)
	return nil
}

// Stop halts the clock and disables every clip immediately.
func (e *Engine) Stop() {
	e.playing = false
	for _, c := range e.clips {
		if c.Playback.Enabled {
			e.disable(c)
			e.onPlaybackChanged.Emit(c)
		}
	}
}

// StopAndReset stops playback and rewinds the clock and every clip.
func (e *Engine) StopAndReset() {
	e.Stop()
	e.playTime = 0
	for _, c := range e.clips {
		c.SetClipTime(0)
		c.ResetSampling()
	}
}

// SetPlayTime moves the clock to t, advancing every enabled clip by the
// difference. Weight ramps only run forward.
func (e *Engine) SetPlayTime(t float32) {
	e.advanceClock(t - e.playTime)
}

// Advance moves the clock by dt scaled by the engine speed.
func (e *Engine) Advance(dt float32) {
	e.advanceClock(dt * e.speed)
}

func (e *Engine) advanceClock(d float32) {
	e.playTime += d
	for _, c := range e.clips {
		if !c.Playback.Enabled {
			continue
		}
		c.Advance(d)
		e.applyRamp(c, d)
	}
}

func (e *Engine) mainInLayer(layer string) *clip.Clip {
	for _, c := range e.clips {
		if c.Layer() == layer && c.Playback.MainInLayer {
			return c
		}
	}
	return nil
}

// MainInLayer returns the clip driving layer, or nil.
func (e *Engine) MainInLayer(layer string) *clip.Clip {
	return e.mainInLayer(layer)
}

// Sample pushes every enabled clip into the sink in list order. While a
// rebuild is pending the sample is deferred until the rebuild finishes and
// Sample reports false.
func (e *Engine) Sample() bool {
	if e.rebuildPending || e.rebuilding {
		e.sampleAfterRebuild = true
		return false
	}
	e.sampleAfterRebuild = false
	frame, framed := e.sink.(FrameSink)
	if framed {
		frame.BeginFrame()
	}
	for _, c := range e.clips {
		if c.Playback.Enabled && c.Playback.Weight > 0 {
			c.Sample(c.Playback.Weight, e.sink)
		}
	}
	if framed {
		frame.EndFrame()
	}
	return true
}
