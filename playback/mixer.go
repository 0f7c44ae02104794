package playback

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
)

// FrameSink is a Sink that wants to know where a sample pass begins and ends.
type FrameSink interface {
	clip.Sink
	BeginFrame()
	EndFrame()
}

// TriggerEvent is a trigger fired during a sample pass.
type TriggerEvent struct {
	Ref    clip.Ref
	Name   string
	Weight float32
}

type poseAccum struct {
	pos    mgl32.Vec3
	rot    mgl32.Quat
	weight float32
}

type scalarAccum struct {
	sum    float32
	weight float32
}

// Mixer composes the writes of one sample pass into a weighted average per
// target. Rotations are averaged on the hemisphere of the first write and
// renormalised.
type Mixer struct {
	poses    map[clip.Ref]*poseAccum
	scalars  map[clip.Ref]*scalarAccum
	triggers []TriggerEvent

	onTrigger common.Event[TriggerEvent]
	onFrame   common.Event[*Mixer]
}

func NewMixer() *Mixer {
	return &Mixer{
		poses:   map[clip.Ref]*poseAccum{},
		scalars: map[clip.Ref]*scalarAccum{},
	}
}

func (m *Mixer) BeginFrame() {
	clear(m.poses)
	clear(m.scalars)
	m.triggers = m.triggers[:0]
}

func (m *Mixer) EndFrame() {
	m.onFrame.Emit(m)
}

// OnTrigger registers h to run for every fired trigger.
func (m *Mixer) OnTrigger(h func(TriggerEvent)) { m.onTrigger.Add(h) }

// OnFrame registers h to run once a sample pass is complete.
func (m *Mixer) OnFrame(h func(*Mixer)) { m.onFrame.Add(h) }

func (m *Mixer) WritePose(ref clip.Ref, position [3]float32, rotation [4]float32, weight float32) {
	if weight <= 0 {
		return
	}
	acc, ok := m.poses[ref]
	if !ok {
		acc = &poseAccum{}
		m.poses[ref] = acc
	}
	rot := clip.Quat(rotation)
	if acc.weight > 0 && acc.rot.Dot(rot) < 0 {
		rot = rot.Scale(-1)
	}
	acc.rot = acc.rot.Add(rot.Scale(weight))
	acc.pos = acc.pos.Add(mgl32.Vec3(position).Mul(weight))
	acc.weight += weight
}

func (m *Mixer) WriteScalar(ref clip.Ref, value, weight float32) {
	if weight <= 0 {
		return
	}
	acc, ok := m.scalars[ref]
	if !ok {
		acc = &scalarAccum{}
		m.scalars[ref] = acc
	}
	acc.sum += value * weight
	acc.weight += weight
}

func (m *Mixer) FireTrigger(ref clip.Ref, name string, weight float32) {
	ev := TriggerEvent{Ref: ref, Name: name, Weight: weight}
	m.triggers = append(m.triggers, ev)
	m.onTrigger.Emit(ev)
}

// Pose returns the blended pose of ref and whether anything wrote it.
func (m *Mixer) Pose(ref clip.Ref) (position [3]float32, rotation [4]float32, ok bool) {
	acc, found := m.poses[ref]
	if !found || acc.weight <= 0 {
		return position, [4]float32{0, 0, 0, 1}, false
	}
	position = acc.pos.Mul(1 / acc.weight)
	return position, clip.QuatArray(clip.NormalizeQuat(acc.rot)), true
}

// Scalar returns the blended value of ref and whether anything wrote it.
func (m *Mixer) Scalar(ref clip.Ref) (float32, bool) {
	acc, ok := m.scalars[ref]
	if !ok || acc.weight <= 0 {
		return 0, false
	}
	return acc.sum / acc.weight, true
}

// Weight returns the summed weight written to ref this frame.
func (m *Mixer) Weight(ref clip.Ref) float32 {
	if acc, ok := m.scalars[ref]; ok {
		return acc.weight
	}
	if acc, ok := m.poses[ref]; ok {
		return acc.weight
	}
	return 0
}

// Triggers returns the triggers fired this frame.
func (m *Mixer) Triggers() []TriggerEvent {
	return append([]TriggerEvent(nil), m.triggers...)
}
