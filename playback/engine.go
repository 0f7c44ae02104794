package playback

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
	"github.com/milk9111/animengine/curve"
)

// RebuildInfo describes a finished rebuild.
type RebuildInfo struct {
	Clips    int
	Duration time.Duration
}

// Engine owns the clips, the play clock and per-clip playback state. It is
// single threaded: every method must be called from the host's tick thread.
type Engine struct {
	cfg Config

	clips   []*clip.Clip
	index   *ClipIndex
	current *clip.Clip

	playTime   float32
	speed      float32
	playing    bool
	sequencing bool

	rng     *rand.Rand
	scripts *ScriptSelector

	sink      clip.Sink
	scheduler *Scheduler

	rebuildPending     bool
	rebuilding         bool
	reentrant          bool
	sampleAfterRebuild bool

	onRebuilt         common.Event[RebuildInfo]
	onClipsChanged    common.Event[*Engine]
	onCurrentChanged  common.Event[*clip.Clip]
	onPlaybackChanged common.Event[*clip.Clip]
}

// NewEngine creates an engine that samples into sink. A nil sink discards
// output.
func NewEngine(cfg Config, sink clip.Sink) *Engine {
	cfg = cfg.withDefaults()
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if sink == nil {
		sink = clip.SinkFuncs{}
	}
	e := &Engine{
		cfg:        cfg,
		index:      NewClipIndex(),
		speed:      cfg.Speed,
		sequencing: cfg.Sequencing,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		sink:       sink,
	}
	e.scripts = NewScriptSelector(nil)
	e.scheduler = NewScheduler(
		RebuildSystem{},
		ClockSystem{},
		SequenceSystem{},
		SampleSystem{},
	)
	return e
}

func (e *Engine) Config() Config { return e.cfg }

// Scheduler exposes the tick systems so hosts can append their own.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// Scripts returns the selector used for "script:" next-clip names.
func (e *Engine) Scripts() *ScriptSelector { return e.scripts }

// SetSink replaces the sampling output.
func (e *Engine) SetSink(sink clip.Sink) {
	if sink == nil {
		sink = clip.SinkFuncs{}
	}
	e.sink = sink
}

// Index returns the clip projection.
func (e *Engine) Index() *ClipIndex { return e.index }

// Clips returns the clips in list order.
func (e *Engine) Clips() []*clip.Clip {
	return slices.Clone(e.clips)
}

// NewClip creates a clip and adds it to the engine.
func (e *Engine) NewClip(name, layer string, length float32) (*clip.Clip, error) {
	c := clip.New(name, layer, length)
	if err := e.AddClip(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewTarget creates an empty target using the configured default curve type.
func (e *Engine) NewTarget(ref clip.Ref) *clip.Target {
	t := clip.NewTarget(ref)
	if e.cfg.DefaultCurveType != curve.TypeSmooth {
		t.SetDefaultCurveType(e.cfg.DefaultCurveType)
	}
	return t
}

// AddClip appends c. Names are unique per layer. The first clip added
// becomes current.
func (e *Engine) AddClip(c *clip.Clip) error {
	for _, other := range e.clips {
		if other == c || (other.Layer() == c.Layer() && other.Name() == c.Name()) {
			return fmt.Errorf("playback: add clip %v: %w", c, ErrDuplicateClip)
		}
	}
	e.clips = append(e.clips, c)
	c.OnDirty(e.clipDirtied)
	c.OnNextChanged(e.nextChanged)
	e.index.Rebuild(e.clips)
	if c.IsDirty() {
		e.MarkDirty()
	}
	e.onClipsChanged.Emit(e)
	if e.current == nil {
		e.setCurrent(c)
	}
	return nil
}

// RemoveClip removes and disposes c.
func (e *Engine) RemoveClip(c *clip.Clip) error {
	i := slices.Index(e.clips, c)
	if i == -1 {
		return fmt.Errorf("playback: remove clip %v: %w", c, ErrForeignClip)
	}
	e.clips = slices.Delete(e.clips, i, i+1)
	for _, other := range e.clips {
		if other.Playback.Scheduled && other.Playback.ScheduledNext == c.QualifiedName() {
			e.unschedule(other)
		}
	}
	c.Dispose()
	e.index.Rebuild(e.clips)
	e.MarkDirty()
	e.onClipsChanged.Emit(e)
	if e.current == c {
		var next *clip.Clip
		if len(e.clips) > 0 {
			next = e.clips[min(i, len(e.clips)-1)]
		}
		e.setCurrent(next)
	}
	return nil
}

// BeginBulkUpdate suspends index rebuilds while many clips are added.
func (e *Engine) BeginBulkUpdate() {
	e.index.BeginBulkUpdate()
}

func (e *Engine) EndBulkUpdate() {
	e.index.EndBulkUpdate()
}

// GetClip looks a clip up by name, preferring the current clip's layer.
func (e *Engine) GetClip(name string) (*clip.Clip, error) {
	matches := e.index.ByName(name)
	if len(matches) == 0 {
		return nil, e.notFound("clip", name)
	}
	if e.current != nil {
		for _, c := range matches {
			if c.Layer() == e.current.Layer() {
				return c, nil
			}
		}
	}
	return matches[0], nil
}

// GetClipsInLayer returns the clips of a layer in list order.
func (e *Engine) GetClipsInLayer(layer string) ([]*clip.Clip, error) {
	clips := e.index.ByLayer(layer)
	if len(clips) == 0 {
		return nil, &NotFoundError{Kind: "layer", Name: layer, Known: e.index.Layers()}
	}
	return clips, nil
}

// GetClipQualified looks a clip up by "layer/name". The name part may itself
// contain slashes.
func (e *Engine) GetClipQualified(qualified string) (*clip.Clip, error) {
	layer, name, ok := strings.Cut(qualified, "/")
	if ok {
		for _, c := range e.index.ByLayer(layer) {
			if c.Name() == name {
				return c, nil
			}
		}
	}
	return nil, e.notFound("clip", qualified)
}

func (e *Engine) notFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name, Known: e.index.Names()}
}

func (e *Engine) Current() (*clip.Clip, error) {
	if e.current == nil {
		return nil, ErrNoCurrentClip
	}
	return e.current, nil
}

// SelectClip makes c the current clip.
func (e *Engine) SelectClip(c *clip.Clip) error {
	if !e.owns(c) {
		return fmt.Errorf("playback: select %v: %w", c, ErrForeignClip)
	}
	e.setCurrent(c)
	return nil
}

func (e *Engine) setCurrent(c *clip.Clip) {
	if e.current == c {
		return
	}
	e.current = c
	e.onCurrentChanged.Emit(c)
}

func (e *Engine) owns(c *clip.Clip) bool {
	return c != nil && slices.Contains(e.clips, c)
}

func (e *Engine) PlayTime() float32 { return e.playTime }
func (e *Engine) Speed() float32    { return e.speed }
func (e *Engine) Playing() bool     { return e.playing }
func (e *Engine) Sequencing() bool  { return e.sequencing }

func (e *Engine) SetSpeed(s float32) {
	e.speed = s
}

// SnapTime rounds t onto the configured time grid.
func (e *Engine) SnapTime(t float32) float32 {
	return curve.Snap(t, e.cfg.Snap)
}

// OnRebuilt registers h to run after every successful rebuild. Handlers run
// before the rebuild finishes, so edits they make fail that rebuild with
// ErrRebuildInProgress and are picked up by the next one.
func (e *Engine) OnRebuilt(h func(RebuildInfo)) { e.onRebuilt.Add(h) }

// OnClipsChanged registers h to run when clips are added or removed.
func (e *Engine) OnClipsChanged(h func(*Engine)) { e.onClipsChanged.Add(h) }

// OnCurrentChanged registers h to run when the current clip changes.
func (e *Engine) OnCurrentChanged(h func(*clip.Clip)) { e.onCurrentChanged.Add(h) }

// OnPlaybackChanged registers h to run when a clip starts or stops playing.
func (e *Engine) OnPlaybackChanged(h func(*clip.Clip)) { e.onPlaybackChanged.Add(h) }

// Tick runs one host frame: pending rebuild, clock, sequencing, sampling.
func (e *Engine) Tick(dt float32) {
	e.scheduler.Update(e, dt)
}
