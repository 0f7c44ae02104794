package curve

import "fmt"

// Record is the serialised form of a keyframe. Omitted fields take the value
// of the previous record, which keeps delta-encoded streams short.
type Record struct {
	Time      *float32 `yaml:"t,omitempty"`
	Value     *float32 `yaml:"v,omitempty"`
	CurveType *Type    `yaml:"c,omitempty"`
	In        *float32 `yaml:"i,omitempty"`
	Out       *float32 `yaml:"o,omitempty"`
}

// Encode converts keys to records, omitting every field equal to the previous
// keyframe's (the zero Keyframe for the first one).
func Encode(keys []Keyframe) []Record {
	out := make([]Record, len(keys))
	var prev Keyframe
	for i, k := range keys {
		var r Record
		if k.Time != prev.Time {
			r.Time = ptr(k.Time)
		}
		if k.Value != prev.Value {
			r.Value = ptr(k.Value)
		}
		if k.CurveType != prev.CurveType {
			r.CurveType = ptr(k.CurveType)
		}
		if k.ControlPointIn != prev.ControlPointIn {
			r.In = ptr(k.ControlPointIn)
		}
		if k.ControlPointOut != prev.ControlPointOut {
			r.Out = ptr(k.ControlPointOut)
		}
		out[i] = r
		prev = k
	}
	return out
}

// Decode restores the keyframes produced by Encode.
func Decode(records []Record) ([]Keyframe, error) {
	keys := make([]Keyframe, 0, len(records))
	var prev Keyframe
	for i, r := range records {
		k := prev
		if r.Time != nil {
			k.Time = *r.Time
		}
		if r.Value != nil {
			k.Value = *r.Value
		}
		if r.CurveType != nil {
			k.CurveType = *r.CurveType
		}
		if r.In != nil {
			k.ControlPointIn = *r.In
		}
		if r.Out != nil {
			k.ControlPointOut = *r.Out
		}
		if !validTime(k.Time) {
			return nil, fmt.Errorf("curve: record %d: %w: %v", i, ErrInvalidTime, k.Time)
		}
		if i > 0 && k.Time <= prev.Time {
			return nil, fmt.Errorf("curve: record %d at %v: %w", i, k.Time, ErrDuplicateKey)
		}
		keys = append(keys, k)
		prev = k
	}
	return keys, nil
}

// Load replaces the curve's keys with the decoded records. On error the curve
// keeps its previous keys.
func (c *Curve) Load(records []Record) error {
	keys, err := Decode(records)
	if err != nil {
		return err
	}
	loaded := &Curve{keys: make([]Keyframe, 0, len(keys))}
	for _, k := range keys {
		if loaded.AddKeyframe(k) == NotAdded {
			return fmt.Errorf("curve: load key at %v: %w", k.Time, ErrDuplicateKey)
		}
	}
	c.keys = loaded.keys
	return nil
}

// Records encodes the curve's keys.
func (c *Curve) Records() []Record {
	return Encode(c.keys)
}

func ptr[T any](v T) *T {
	return &v
}
