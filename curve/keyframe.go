package curve

import (
	"fmt"
	"strings"
)

// Type selects how a keyframe's control points are derived on rebuild.
type Type int

const (
	// TypeSmooth derives control points from the auto-tangent solver.
	TypeSmooth Type = iota
	// TypeSmoothLocal derives control points from the two neighbouring keys only.
	TypeSmoothLocal
	TypeLinear
	TypeFlat
	// TypeCopyPrevious holds the previous key's value up to this key.
	TypeCopyPrevious
	// TypeLeaveAsIs keeps whatever control points the key already carries.
	TypeLeaveAsIs
)

var typeNames = map[Type]string{
	TypeSmooth:       "smooth",
	TypeSmoothLocal:  "smooth-local",
	TypeLinear:       "linear",
	TypeFlat:         "flat",
	TypeCopyPrevious: "copy-previous",
	TypeLeaveAsIs:    "leave-as-is",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses the names produced by Type.String, case-insensitively.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return TypeSmooth, fmt.Errorf("curve: %w: %q", ErrUnknownType, s)
}

func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("curve: %w: %d", ErrUnknownType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Keyframe is a single sample on a curve. The control points are Bezier
// control values, not tangent slopes.
type Keyframe struct {
	Time            float32 `yaml:"time"`
	Value           float32 `yaml:"value"`
	CurveType       Type    `yaml:"curve_type"`
	ControlPointIn  float32 `yaml:"in"`
	ControlPointOut float32 `yaml:"out"`
}

// NewKeyframe returns a keyframe whose control points sit on its own value.
func NewKeyframe(time, value float32, ct Type) Keyframe {
	return Keyframe{
		Time:            time,
		Value:           value,
		CurveType:       ct,
		ControlPointIn:  value,
		ControlPointOut: value,
	}
}

// WithTime returns a copy of k moved to time.
func (k Keyframe) WithTime(time float32) Keyframe {
	k.Time = time
	return k
}
