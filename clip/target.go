package clip

import (
	"fmt"
	"slices"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/animengine/common"
	"github.com/milk9111/animengine/curve"
)

// Kind is the closed set of animatable property kinds.
type Kind int

const (
	// KindPose is a position + rotation quaternion, seven curves.
	KindPose Kind = iota
	// KindScalar is a single float parameter.
	KindScalar
	// KindTriggerTrack is a discrete event track without curves.
	KindTriggerTrack
)

func (k Kind) String() string {
	switch k {
	case KindPose:
		return "pose"
	case KindScalar:
		return "scalar"
	case KindTriggerTrack:
		return "triggers"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindPose, KindScalar, KindTriggerTrack} {
		if k.String() == s {
			return k, nil
		}
	}
	return KindScalar, fmt.Errorf("clip: unknown target kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Pose channel indices.
const (
	PosX = iota
	PosY
	PosZ
	RotX
	RotY
	RotZ
	RotW
	PoseChannels
)

// Ref identifies a target across clips.
type Ref struct {
	Kind Kind   `yaml:"kind"`
	Name string `yaml:"name"`
}

func (r Ref) String() string {
	return r.Kind.String() + ":" + r.Name
}

// TriggerKey is a keyframe on a trigger track. Validation trims keys past the
// clip length and adds no edge keys.
type TriggerKey struct {
	Time  float32
	Names []string
}

// Target is one animatable property: a fixed set of curves sharing keyframe
// times, plus the curve type assigned to each keyframe time.
type Target struct {
	ref         Ref
	curves      []*curve.Curve
	defaults    []float32
	curveTypes  map[int64]curve.Type
	defaultType curve.Type
	triggers    []TriggerKey

	dirty    bool
	selected bool

	lastSample float32
	sampled    bool

	clip *Clip
}

// NewPoseTarget creates a target with position and rotation curves. Empty
// curves default to the origin and the identity rotation.
func NewPoseTarget(name string) *Target {
	t := newTarget(Ref{Kind: KindPose, Name: name}, PoseChannels)
	t.defaults[RotW] = 1
	return t
}

func NewScalarTarget(name string, defaultValue float32) *Target {
	t := newTarget(Ref{Kind: KindScalar, Name: name}, 1)
	t.defaults[0] = defaultValue
	return t
}

func NewTriggerTarget(name string) *Target {
	return newTarget(Ref{Kind: KindTriggerTrack, Name: name}, 0)
}

// NewTarget creates an empty target of the given kind.
func NewTarget(ref Ref) *Target {
	switch ref.Kind {
	case KindPose:
		return NewPoseTarget(ref.Name)
	case KindTriggerTrack:
		return NewTriggerTarget(ref.Name)
	default:
		return NewScalarTarget(ref.Name, 0)
	}
}

func newTarget(ref Ref, channels int) *Target {
	t := &Target{
		ref:        ref,
		curves:     make([]*curve.Curve, channels),
		defaults:   make([]float32, channels),
		curveTypes: make(map[int64]curve.Type),
		dirty:      true,
	}
	for i := range t.curves {
		t.curves[i] = curve.New()
	}
	return t
}

func (t *Target) Ref() Ref     { return t.ref }
func (t *Target) Name() string { return t.ref.Name }
func (t *Target) Kind() Kind   { return t.ref.Kind }

// Curves returns the target's curves. Trigger tracks have none.
func (t *Target) Curves() []*curve.Curve {
	return t.curves
}

func (t *Target) Dirty() bool { return t.dirty }

// SetDirty flags the target for the next rebuild and notifies its clip.
func (t *Target) SetDirty() {
	t.dirty = true
	if t.clip != nil {
		t.clip.targetDirtied(t)
	}
}

func (t *Target) clearDirty() {
	t.dirty = false
}

func (t *Target) Selected() bool { return t.selected }

func (t *Target) SetSelected(selected bool) {
	if t.selected == selected {
		return
	}
	t.selected = selected
	if t.clip != nil {
		t.clip.onSelectionChanged.Emit(t)
	}
}

// Defaults returns the value each empty curve evaluates to.
func (t *Target) Defaults() []float32 {
	return slices.Clone(t.defaults)
}

// DefaultCurveType is used for keyframe times with no explicit curve type.
func (t *Target) DefaultCurveType() curve.Type {
	return t.defaultType
}

func (t *Target) SetDefaultCurveType(ct curve.Type) {
	t.defaultType = ct
	t.SetDirty()
}

// CurveTypeAt returns the curve type assigned to the keyframe time.
func (t *Target) CurveTypeAt(time float32) curve.Type {
	if ct, ok := t.curveTypes[curve.ToMilliseconds(time)]; ok {
		return ct
	}
	return t.defaultType
}

// SetCurveType assigns ct to every curve's keyframe at time.
func (t *Target) SetCurveType(time float32, ct curve.Type) {
	t.curveTypes[curve.ToMilliseconds(time)] = ct
	t.SetDirty()
}

// SetKeyframe writes one value per curve at time.
func (t *Target) SetKeyframe(time float32, values ...float32) error {
	if t.ref.Kind == KindTriggerTrack {
		return fmt.Errorf("clip: set keyframe on %s: %w", t.ref, ErrKindMismatch)
	}
	if len(values) != len(t.curves) {
		return fmt.Errorf("clip: set keyframe on %s: %w: got %d, want %d", t.ref, ErrChannelCount, len(values), len(t.curves))
	}
	time = curve.RoundToMilliseconds(time)
	ct := t.CurveTypeAt(time)
	for i, c := range t.curves {
		if c.SetKeyframe(time, values[i], ct) == curve.NotAdded {
			return fmt.Errorf("clip: set keyframe on %s at %v: %w", t.ref, time, curve.ErrInvalidTime)
		}
	}
	t.SetDirty()
	return nil
}

// SetPose writes a position and rotation keyframe on a pose target.
func (t *Target) SetPose(time float32, position [3]float32, rotation [4]float32) error {
	if t.ref.Kind != KindPose {
		return fmt.Errorf("clip: set pose on %s: %w", t.ref, ErrKindMismatch)
	}
	return t.SetKeyframe(time, position[0], position[1], position[2], rotation[0], rotation[1], rotation[2], rotation[3])
}

// SetValue writes a scalar keyframe.
func (t *Target) SetValue(time, value float32) error {
	if t.ref.Kind != KindScalar {
		return fmt.Errorf("clip: set value on %s: %w", t.ref, ErrKindMismatch)
	}
	return t.SetKeyframe(time, value)
}

// SetTriggers replaces the trigger names at time on a trigger track.
func (t *Target) SetTriggers(time float32, names ...string) error {
	if t.ref.Kind != KindTriggerTrack {
		return fmt.Errorf("clip: set triggers on %s: %w", t.ref, ErrKindMismatch)
	}
	t.putTriggers(curve.RoundToMilliseconds(time), names)
	t.SetDirty()
	return nil
}

func (t *Target) putTriggers(time float32, names []string) {
	names = slices.Clone(names)
	if i := t.triggerIndex(time); i != -1 {
		t.triggers[i].Names = names
		return
	}
	i := sort.Search(len(t.triggers), func(i int) bool { return t.triggers[i].Time > time })
	t.triggers = slices.Insert(t.triggers, i, TriggerKey{Time: time, Names: names})
}

// TriggersAt returns the trigger names at time.
func (t *Target) TriggersAt(time float32) []string {
	if i := t.triggerIndex(time); i != -1 {
		return slices.Clone(t.triggers[i].Names)
	}
	return nil
}

// Triggers returns a copy of the trigger keys.
func (t *Target) Triggers() []TriggerKey {
	out := make([]TriggerKey, len(t.triggers))
	for i, k := range t.triggers {
		out[i] = TriggerKey{Time: k.Time, Names: slices.Clone(k.Names)}
	}
	return out
}

func (t *Target) triggerIndex(time float32) int {
	for i, k := range t.triggers {
		if common.Approximately(k.Time, time) {
			return i
		}
	}
	return -1
}

// DeleteFrame removes the keyframe at time from every curve. It reports
// whether anything was removed.
func (t *Target) DeleteFrame(time float32) bool {
	removed := false
	for _, c := range t.curves {
		if i := c.KeyframeBinarySearch(time, false); i != -1 {
			_ = c.RemoveKey(i)
			removed = true
		}
	}
	if i := t.triggerIndex(time); i != -1 {
		t.triggers = slices.Delete(t.triggers, i, i+1)
		removed = true
	}
	if removed {
		delete(t.curveTypes, curve.ToMilliseconds(time))
		t.SetDirty()
	}
	return removed
}

// KeyTimes returns the keyframe times shared by the target's curves.
func (t *Target) KeyTimes() []float32 {
	if t.ref.Kind == KindTriggerTrack {
		times := make([]float32, len(t.triggers))
		for i, k := range t.triggers {
			times[i] = k.Time
		}
		return times
	}
	if len(t.curves) == 0 {
		return nil
	}
	return t.curves[0].KeyTimes()
}

// HasKeyAt reports whether a keyframe exists at time.
func (t *Target) HasKeyAt(time float32) bool {
	if t.ref.Kind == KindTriggerTrack {
		return t.triggerIndex(time) != -1
	}
	return len(t.curves) > 0 && t.curves[0].KeyframeBinarySearch(time, false) != -1
}

// Evaluate returns one value per curve at time. Empty curves yield their
// default value.
func (t *Target) Evaluate(time float32) []float32 {
	out := make([]float32, len(t.curves))
	for i, c := range t.curves {
		if c.Len() == 0 {
			out[i] = t.defaults[i]
			continue
		}
		out[i] = c.Evaluate(time)
	}
	return out
}

// Sample pushes the target's state at clipTime with weight into sink. Trigger
// tracks fire every trigger crossed since the previous sample.
func (t *Target) Sample(clipTime, weight float32, sink Sink) {
	if sink == nil {
		return
	}
	switch t.ref.Kind {
	case KindPose:
		v := t.Evaluate(clipTime)
		pos := [3]float32{v[PosX], v[PosY], v[PosZ]}
		rot := QuatArray(NormalizeQuat(Quat([4]float32{v[RotX], v[RotY], v[RotZ], v[RotW]})))
		sink.WritePose(t.ref, pos, rot, weight)
	case KindScalar:
		sink.WriteScalar(t.ref, t.Evaluate(clipTime)[0], weight)
	case KindTriggerTrack:
		t.sampleTriggers(clipTime, weight, sink)
	}
}

func (t *Target) sampleTriggers(clipTime, weight float32, sink Sink) {
	if !t.sampled {
		t.sampled = true
		t.lastSample = clipTime
		for _, k := range t.triggers {
			if common.Approximately(k.Time, clipTime) {
				fire(t.ref, k.Names, weight, sink)
			}
		}
		return
	}
	last := t.lastSample
	t.lastSample = clipTime
	if common.Approximately(last, clipTime) {
		return
	}
	for _, k := range t.triggers {
		crossed := false
		if clipTime > last {
			crossed = k.Time > last && k.Time <= clipTime
		} else {
			// wrapped around the loop point
			crossed = k.Time > last || k.Time <= clipTime
		}
		if crossed {
			fire(t.ref, k.Names, weight, sink)
		}
	}
}

func fire(ref Ref, names []string, weight float32, sink Sink) {
	for _, name := range names {
		sink.FireTrigger(ref, name, weight)
	}
}

// ResetSampling forgets the previous sample time so the next sample does not
// fire the triggers between the old and new positions.
func (t *Target) ResetSampling() {
	t.sampled = false
}

// fixQuaternionContinuity negates rotation keys whose quaternion points away
// from the previous key so interpolation takes the shortest path.
func (t *Target) fixQuaternionContinuity() {
	if t.ref.Kind != KindPose {
		return
	}
	rot := t.curves[RotX : RotW+1]
	n := rot[0].Len()
	for _, c := range rot[1:] {
		if c.Len() != n {
			return
		}
	}
	keyQuat := func(i int) mgl32.Quat {
		return Quat([4]float32{rot[0].Key(i).Value, rot[1].Key(i).Value, rot[2].Key(i).Value, rot[3].Key(i).Value})
	}
	for i := 1; i < n; i++ {
		if keyQuat(i-1).Dot(keyQuat(i)) >= 0 {
			continue
		}
		for _, c := range rot {
			k := c.Key(i)
			k.Value = -k.Value
			k.ControlPointIn = -k.ControlPointIn
			k.ControlPointOut = -k.ControlPointOut
			_ = c.SetKeyframeAt(i, k)
		}
	}
}

// detach releases the target from its clip.
func (t *Target) detach() {
	t.clip = nil
	t.sampled = false
}
