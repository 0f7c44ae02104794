package clip

import (
	"fmt"
	"slices"

	"github.com/milk9111/animengine/common"
)

// DefaultLayer is used for clips created without a layer.
const DefaultLayer = "Base"

// PlaybackState is the runtime playback data the engine keeps on each clip.
type PlaybackState struct {
	Enabled     bool
	Weight      float32
	BlendRate   float32
	MainInLayer bool

	// Scheduled is set while a sequencing transition is pending.
	Scheduled     bool
	ScheduledNext string
	ScheduledAt   float32
}

// Clip is a named, time-bounded collection of targets.
type Clip struct {
	name  string
	layer string

	length             float32
	loop               bool
	blendIn            float32
	nextName           string
	nextTime           float32
	nextTimeRandomize  float32
	transitionPrevious bool
	transitionNext     bool
	speed              float32
	weight             float32

	targets  []*Target
	clipTime float32

	Playback PlaybackState

	disposed bool
	quiet    int

	onDirty            common.Event[*Clip]
	onSelectionChanged common.Event[*Target]
	onNextChanged      common.Event[NextChange]
}

// NextChange describes a clip's next name moving from From to To.
type NextChange struct {
	Clip     *Clip
	From, To string
}

// New creates an empty clip. An empty layer selects DefaultLayer.
func New(name, layer string, length float32) *Clip {
	if layer == "" {
		layer = DefaultLayer
	}
	if length < 0 || !common.IsFinite(float64(length)) {
		length = 0
	}
	return &Clip{
		name:    name,
		layer:   layer,
		length:  length,
		blendIn: 1,
		speed:   1,
		weight:  1,
	}
}

func (c *Clip) Name() string  { return c.name }
func (c *Clip) Layer() string { return c.layer }

// QualifiedName returns "layer/name".
func (c *Clip) QualifiedName() string {
	return c.layer + "/" + c.name
}

func (c *Clip) String() string {
	return c.QualifiedName()
}

func (c *Clip) Length() float32 { return c.length }

// SetLength changes the clip span. Keys beyond the new length are trimmed on
// the next validation.
func (c *Clip) SetLength(length float32) {
	if length < 0 || !common.IsFinite(float64(length)) {
		length = 0
	}
	if c.length == length {
		return
	}
	c.length = length
	c.clipTime = c.wrap(c.clipTime)
	c.DirtyAll()
}

func (c *Clip) Loop() bool { return c.loop }

func (c *Clip) SetLoop(loop bool) {
	if c.loop == loop {
		return
	}
	c.loop = loop
	c.DirtyAll()
}

// BlendIn is the cross-fade duration used when this clip starts playing.
func (c *Clip) BlendIn() float32 { return c.blendIn }

func (c *Clip) SetBlendIn(d float32) {
	c.blendIn = max(d, 0)
}

// NextName is the sequencing pointer: a clip name, the "(Randomize)" token, a
// "prefix/*" group or a "script:" selector.
func (c *Clip) NextName() string { return c.nextName }

// NextTime is the delay after playback starts before the next clip is played.
func (c *Clip) NextTime() float32 { return c.nextTime }

// NextTimeRandomize is an upper bound on a random extra delay added to
// NextTime.
func (c *Clip) NextTimeRandomize() float32 { return c.nextTimeRandomize }

func (c *Clip) SetNext(name string, after float32) {
	from := c.nextName
	c.nextName = name
	c.nextTime = max(after, 0)
	c.markTransitionDirty()
	if from != name {
		c.onNextChanged.Emit(NextChange{Clip: c, From: from, To: name})
	}
}

func (c *Clip) SetNextTimeRandomize(r float32) {
	c.nextTimeRandomize = max(r, 0)
}

// TransitionPrevious reports whether the clip's first frame is stitched to
// the end of the clip that sequences into it.
func (c *Clip) TransitionPrevious() bool { return c.transitionPrevious }

// TransitionNext reports whether the clip's last frame is stitched to the
// start of its next clip.
func (c *Clip) TransitionNext() bool { return c.transitionNext }

func (c *Clip) SetTransition(previous, next bool) {
	if c.transitionPrevious == previous && c.transitionNext == next {
		return
	}
	c.transitionPrevious = previous
	c.transitionNext = next
	c.markTransitionDirty()
}

// IsTransition reports whether either edge of the clip is stitched.
func (c *Clip) IsTransition() bool {
	return c.transitionPrevious || c.transitionNext
}

func (c *Clip) markTransitionDirty() {
	if c.IsTransition() {
		c.DirtyAll()
	}
}

func (c *Clip) Speed() float32 { return c.speed }

func (c *Clip) SetSpeed(s float32) {
	c.speed = s
}

// Weight is the weight the clip ramps up to when played.
func (c *Clip) Weight() float32 { return c.weight }

func (c *Clip) SetWeight(w float32) {
	c.weight = common.Clamp01(w)
}

// ClipTime is the clip-local playback position, always within [0, Length].
func (c *Clip) ClipTime() float32 { return c.clipTime }

// SetClipTime moves the playback position, wrapping on looping clips and
// clamping otherwise.
func (c *Clip) SetClipTime(t float32) {
	c.clipTime = c.wrap(t)
}

// Advance moves the playback position by dt scaled by the clip speed.
func (c *Clip) Advance(dt float32) {
	c.SetClipTime(c.clipTime + dt*c.speed)
}

func (c *Clip) wrap(t float32) float32 {
	if !common.IsFinite(float64(t)) {
		return 0
	}
	if c.loop {
		return common.Repeat(t, c.length)
	}
	return common.Clamp(t, 0, c.length)
}

// OnDirty registers h to run whenever a target of the clip is marked dirty.
func (c *Clip) OnDirty(h func(*Clip)) {
	c.onDirty.Add(h)
}

// OnNextChanged registers h to run when the clip's next name changes.
func (c *Clip) OnNextChanged(h func(NextChange)) {
	c.onNextChanged.Add(h)
}

// OnSelectionChanged registers h to run when a target's selection flips.
func (c *Clip) OnSelectionChanged(h func(*Target)) {
	c.onSelectionChanged.Add(h)
}

func (c *Clip) targetDirtied(*Target) {
	if c.quiet > 0 {
		return
	}
	c.onDirty.Emit(c)
}

// silence suppresses dirty notifications until the returned func runs.
func (c *Clip) silence() func() {
	c.quiet++
	return func() { c.quiet-- }
}

// AddTarget attaches t to the clip. Only one target per Ref is allowed.
func (c *Clip) AddTarget(t *Target) error {
	if c.disposed {
		return fmt.Errorf("clip: add target to %s: %w", c, ErrDisposed)
	}
	if t.clip != nil && t.clip != c {
		return fmt.Errorf("clip: add %s to %s: owned by %s: %w", t.ref, c, t.clip, ErrTargetExists)
	}
	if c.Target(t.ref) != nil {
		return fmt.Errorf("clip: add %s to %s: %w", t.ref, c, ErrTargetExists)
	}
	t.clip = c
	c.targets = append(c.targets, t)
	t.SetDirty()
	return nil
}

// EnsureTarget returns the target for ref, creating an empty one if missing.
func (c *Clip) EnsureTarget(ref Ref) (*Target, error) {
	if t := c.Target(ref); t != nil {
		return t, nil
	}
	t := NewTarget(ref)
	if err := c.AddTarget(t); err != nil {
		return nil, err
	}
	return t, nil
}

// RemoveTarget detaches the target for ref.
func (c *Clip) RemoveTarget(ref Ref) error {
	i := slices.IndexFunc(c.targets, func(t *Target) bool { return t.ref == ref })
	if i == -1 {
		return fmt.Errorf("clip: remove %s from %s: %w", ref, c, ErrTargetNotFound)
	}
	t := c.targets[i]
	c.targets = slices.Delete(c.targets, i, i+1)
	t.detach()
	c.targetDirtied(nil)
	return nil
}

// Target returns the target for ref or nil.
func (c *Clip) Target(ref Ref) *Target {
	for _, t := range c.targets {
		if t.ref == ref {
			return t
		}
	}
	return nil
}

// Targets returns the clip's targets in insertion order.
func (c *Clip) Targets() []*Target {
	return slices.Clone(c.targets)
}

func (c *Clip) TargetsOfKind(k Kind) []*Target {
	var out []*Target
	for _, t := range c.targets {
		if t.ref.Kind == k {
			out = append(out, t)
		}
	}
	return out
}

// SelectedTargets returns the selected targets, or all targets when none is
// selected.
func (c *Clip) SelectedTargets() []*Target {
	var out []*Target
	for _, t := range c.targets {
		if t.selected {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return c.Targets()
	}
	return out
}

// IsDirty reports whether any target is dirty. A clip without targets is
// never dirty.
func (c *Clip) IsDirty() bool {
	for _, t := range c.targets {
		if t.dirty {
			return true
		}
	}
	return false
}

// DirtyAll marks every target dirty.
func (c *Clip) DirtyAll() {
	if len(c.targets) == 0 {
		return
	}
	done := c.silence()
	for _, t := range c.targets {
		t.SetDirty()
	}
	done()
	c.targetDirtied(nil)
}

// ClearDirty resets the dirty flag of every target.
func (c *Clip) ClearDirty() {
	for _, t := range c.targets {
		t.clearDirty()
	}
}

// ResetSampling forgets trigger sampling state on every target.
func (c *Clip) ResetSampling() {
	for _, t := range c.targets {
		t.ResetSampling()
	}
}

// Sample pushes every target's state at the current clip time into sink.
func (c *Clip) Sample(weight float32, sink Sink) {
	for _, t := range c.targets {
		t.Sample(c.clipTime, weight, sink)
	}
}

// Dispose detaches every target. The clip rejects further targets.
func (c *Clip) Dispose() {
	for _, t := range c.targets {
		t.detach()
	}
	c.targets = nil
	c.disposed = true
	c.Playback = PlaybackState{}
	c.onDirty.Clear()
	c.onSelectionChanged.Clear()
	c.onNextChanged.Clear()
}

func (c *Clip) Disposed() bool { return c.disposed }
