package playback

import (
	"strings"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
)

const (
	// RandomizeToken picks any other clip at random.
	RandomizeToken = "(Randomize)"
	// GroupSuffix marks a "prefix/*" group name.
	GroupSuffix = "*"
	// ScriptPrefix selects the next clip with a tengo script.
	ScriptPrefix = "script:"
)

// AssignNextAnimation schedules c's next clip when c is playing, sequencing
// is on and c has a next name and delay. It returns the scheduled clip.
func (e *Engine) AssignNextAnimation(c *clip.Clip) *clip.Clip {
	e.unschedule(c)
	if !e.sequencing || !c.Playback.Enabled || c.NextName() == "" || c.NextTime() <= 0 {
		return nil
	}
	next, err := e.SelectNext(c)
	if err != nil {
		common.Logger().Warn("next clip unavailable", "clip", c.QualifiedName(), "next", c.NextName(), "error", err)
		return nil
	}
	delay := c.NextTime()
	if r := c.NextTimeRandomize(); r > 0 {
		delay += e.rng.Float32() * r
	}
	c.Playback.Scheduled = true
	c.Playback.ScheduledNext = next.QualifiedName()
	c.Playback.ScheduledAt = e.playTime + delay
	common.Logger().Debug("scheduled next clip", "clip", c.QualifiedName(), "next", c.Playback.ScheduledNext, "at", c.Playback.ScheduledAt)
	return next
}

// SelectNext resolves c's next name to a clip without scheduling anything.
func (e *Engine) SelectNext(c *clip.Clip) (*clip.Clip, error) {
	name := c.NextName()
	switch {
	case name == RandomizeToken:
		return e.pick(c, name, func(*clip.Clip) bool { return true })
	case strings.HasSuffix(name, "/"+GroupSuffix):
		prefix := strings.TrimSuffix(name, GroupSuffix)
		return e.pick(c, name, func(o *clip.Clip) bool { return strings.HasPrefix(o.Name(), prefix) })
	case strings.HasPrefix(name, ScriptPrefix):
		return e.selectScripted(c, strings.TrimPrefix(name, ScriptPrefix))
	default:
		return e.resolve(c, name)
	}
}

// pick chooses uniformly among the clips other than c that match.
func (e *Engine) pick(c *clip.Clip, token string, match func(*clip.Clip) bool) (*clip.Clip, error) {
	var candidates []*clip.Clip
	for _, o := range e.clips {
		if o != c && match(o) {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil, e.notFound("clip group", token)
	}
	return candidates[e.rng.IntN(len(candidates))], nil
}

// resolve finds a literal next name: same layer first, then any layer, then
// "layer/name".
func (e *Engine) resolve(c *clip.Clip, name string) (*clip.Clip, error) {
	var other *clip.Clip
	for _, o := range e.clips {
		if o.Name() != name {
			continue
		}
		if o.Layer() == c.Layer() {
			return o, nil
		}
		if other == nil {
			other = o
		}
	}
	if other != nil {
		return other, nil
	}
	return e.GetClipQualified(name)
}

func (e *Engine) selectScripted(c *clip.Clip, script string) (*clip.Clip, error) {
	var candidates []string
	for _, o := range e.clips {
		if o != c {
			candidates = append(candidates, o.Name())
		}
	}
	name, err := e.scripts.Select(script, SelectInput{
		Candidates: candidates,
		Current:    c.Name(),
		Layer:      c.Layer(),
		PlayTime:   e.playTime,
		Roll:       e.rng.Float64(),
	})
	if err != nil {
		return nil, err
	}
	return e.resolve(c, name)
}

func (e *Engine) unschedule(c *clip.Clip) {
	c.Playback.Scheduled = false
	c.Playback.ScheduledNext = ""
	c.Playback.ScheduledAt = 0
}

// fireScheduled plays every clip whose scheduled transition time has come. A
// clip that sequences into another layer fades itself out, since nothing in
// its own layer takes over.
func (e *Engine) fireScheduled() {
	type due struct {
		from *clip.Clip
		to   string
	}
	var ready []due
	for _, c := range e.clips {
		if c.Playback.Scheduled && c.Playback.Enabled && e.playTime >= c.Playback.ScheduledAt {
			ready = append(ready, due{c, c.Playback.ScheduledNext})
			e.unschedule(c)
		}
	}
	for _, d := range ready {
		next, err := e.GetClipQualified(d.to)
		if err != nil {
			common.Logger().Warn("scheduled clip missing", "clip", d.from.QualifiedName(), "next", d.to, "error", err)
			continue
		}
		if err := e.PlayClip(next, true); err != nil {
			common.Logger().Warn("scheduled play failed", "clip", d.from.QualifiedName(), "next", d.to, "error", err)
			continue
		}
		if next.Layer() != d.from.Layer() && d.from.Playback.MainInLayer {
			d.from.Playback.MainInLayer = false
			e.ramp(d.from, 0, next.BlendIn())
			e.onPlaybackChanged.Emit(d.from)
		}
	}
}
