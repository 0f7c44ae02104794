package prefabs

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/curve"
	"github.com/milk9111/animengine/playback"
)

type ClipSpec struct {
	Name       string         `yaml:"name"`
	Layer      string         `yaml:"layer,omitempty"`
	Length     float32        `yaml:"length"`
	Loop       bool           `yaml:"loop,omitempty"`
	BlendIn    *float32       `yaml:"blend_in,omitempty"`
	Speed      *float32       `yaml:"speed,omitempty"`
	Weight     *float32       `yaml:"weight,omitempty"`
	Next       NextSpec       `yaml:"next,omitempty"`
	Transition TransitionSpec `yaml:"transition,omitempty"`
	Targets    []TargetSpec   `yaml:"targets"`
}

type NextSpec struct {
	Name      string  `yaml:"name,omitempty"`
	After     float32 `yaml:"after,omitempty"`
	Randomize float32 `yaml:"randomize,omitempty"`
}

type TransitionSpec struct {
	Previous bool `yaml:"previous,omitempty"`
	Next     bool `yaml:"next,omitempty"`
}

// TargetSpec describes one target. Curves holds one delta-encoded record
// list per channel, in channel order.
type TargetSpec struct {
	Kind         clip.Kind        `yaml:"kind"`
	Name         string           `yaml:"name"`
	Default      float32          `yaml:"default,omitempty"`
	DefaultCurve *curve.Type      `yaml:"default_curve,omitempty"`
	CurveTypes   []CurveTypeSpec  `yaml:"curve_types,omitempty"`
	Curves       [][]curve.Record `yaml:"curves,omitempty"`
	Triggers     []TriggerSpec    `yaml:"triggers,omitempty"`
}

type CurveTypeSpec struct {
	Time float32    `yaml:"t"`
	Type curve.Type `yaml:"c"`
}

type TriggerSpec struct {
	Time  float32  `yaml:"t"`
	Names []string `yaml:"names,flow"`
}

func LoadClipSpec(filename string) (ClipSpec, error) {
	return LoadSpec[ClipSpec](filename)
}

// DecodeClipSpec parses a clip prefab held in memory.
func DecodeClipSpec(data []byte) (ClipSpec, error) {
	var spec ClipSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return ClipSpec{}, fmt.Errorf("prefabs: unmarshal clip: %w", err)
	}
	return spec, nil
}

// EncodeClipSpec renders spec as YAML.
func EncodeClipSpec(spec ClipSpec) ([]byte, error) {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("prefabs: marshal clip %s: %w", spec.Name, err)
	}
	return data, nil
}

var ErrInvalidClip = errors.New("invalid clip spec")

// BuildClip turns spec into a clip. Targets without their own default curve
// type use cfg.DefaultCurveType.
func BuildClip(spec ClipSpec, cfg playback.Config) (*clip.Clip, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("prefabs: build clip: missing name: %w", ErrInvalidClip)
	}
	c := clip.New(spec.Name, spec.Layer, spec.Length)
	c.SetLoop(spec.Loop)
	if spec.BlendIn != nil {
		c.SetBlendIn(*spec.BlendIn)
	}
	if spec.Speed != nil {
		c.SetSpeed(*spec.Speed)
	}
	if spec.Weight != nil {
		c.SetWeight(*spec.Weight)
	}
	c.SetNext(spec.Next.Name, spec.Next.After)
	c.SetNextTimeRandomize(spec.Next.Randomize)
	c.SetTransition(spec.Transition.Previous, spec.Transition.Next)

	for _, ts := range spec.Targets {
		t, err := buildTarget(ts, cfg)
		if err != nil {
			return nil, fmt.Errorf("prefabs: build clip %s: %w", c.QualifiedName(), err)
		}
		if err := c.AddTarget(t); err != nil {
			return nil, fmt.Errorf("prefabs: build clip %s: %w", c.QualifiedName(), err)
		}
	}
	return c, nil
}

func buildTarget(ts TargetSpec, cfg playback.Config) (*clip.Target, error) {
	ref := clip.Ref{Kind: ts.Kind, Name: ts.Name}
	var t *clip.Target
	if ts.Kind == clip.KindScalar {
		t = clip.NewScalarTarget(ts.Name, ts.Default)
	} else {
		t = clip.NewTarget(ref)
	}

	ct := cfg.DefaultCurveType
	if ts.DefaultCurve != nil {
		ct = *ts.DefaultCurve
	}
	t.SetDefaultCurveType(ct)

	curves := t.Curves()
	if len(ts.Curves) > 0 && len(ts.Curves) != len(curves) {
		return nil, fmt.Errorf("target %s: %d curves, want %d: %w", ref, len(ts.Curves), len(curves), ErrInvalidClip)
	}
	for i, records := range ts.Curves {
		if err := curves[i].Load(records); err != nil {
			return nil, fmt.Errorf("target %s channel %d: %w", ref, i, err)
		}
	}
	for _, cts := range ts.CurveTypes {
		t.SetCurveType(cts.Time, cts.Type)
	}
	for _, trig := range ts.Triggers {
		if err := t.SetTriggers(trig.Time, trig.Names...); err != nil {
			return nil, fmt.Errorf("target %s: %w", ref, err)
		}
	}
	return t, nil
}

// ExportClip captures c as a spec. Curve types are written only where they
// differ from the target default.
func ExportClip(c *clip.Clip) ClipSpec {
	blendIn, speed, weight := c.BlendIn(), c.Speed(), c.Weight()
	spec := ClipSpec{
		Name:    c.Name(),
		Layer:   c.Layer(),
		Length:  c.Length(),
		Loop:    c.Loop(),
		BlendIn: &blendIn,
		Speed:   &speed,
		Weight:  &weight,
		Next: NextSpec{
			Name:      c.NextName(),
			After:     c.NextTime(),
			Randomize: c.NextTimeRandomize(),
		},
		Transition: TransitionSpec{
			Previous: c.TransitionPrevious(),
			Next:     c.TransitionNext(),
		},
	}
	for _, t := range c.Targets() {
		def := t.DefaultCurveType()
		ts := TargetSpec{
			Kind:         t.Kind(),
			Name:         t.Name(),
			DefaultCurve: &def,
		}
		if t.Kind() == clip.KindScalar {
			ts.Default = t.Defaults()[0]
		}
		for _, kt := range t.KeyTimes() {
			if ct := t.CurveTypeAt(kt); ct != def {
				ts.CurveTypes = append(ts.CurveTypes, CurveTypeSpec{Time: kt, Type: ct})
			}
		}
		for _, cv := range t.Curves() {
			ts.Curves = append(ts.Curves, cv.Records())
		}
		for _, k := range t.Triggers() {
			ts.Triggers = append(ts.Triggers, TriggerSpec{Time: k.Time, Names: k.Names})
		}
		spec.Targets = append(spec.Targets, ts)
	}
	return spec
}

// LoadClips builds every named clip prefab into e in one bulk update.
func LoadClips(e *playback.Engine, filenames ...string) ([]*clip.Clip, error) {
	e.BeginBulkUpdate()
	defer e.EndBulkUpdate()

	var clips []*clip.Clip
	for _, name := range filenames {
		spec, err := LoadClipSpec(name)
		if err != nil {
			return clips, err
		}
		c, err := BuildClip(spec, e.Config())
		if err != nil {
			return clips, err
		}
		if err := e.AddClip(c); err != nil {
			return clips, fmt.Errorf("prefabs: %s: %w", name, err)
		}
		clips = append(clips, c)
	}
	return clips, nil
}
