package playback

import (
	"time"

	"github.com/milk9111/animengine/curve"
)

// Config holds engine settings. Start from DefaultConfig; a zero Speed
// freezes the clock.
type Config struct {
	// Speed scales every clock advance.
	Speed float32 `yaml:"speed"`
	// Snap is the time grid used by SnapTime. Zero snaps to milliseconds.
	Snap float32 `yaml:"snap"`
	// RebuildWarnAfter is how long a rebuild may take before it is logged
	// as an anomaly.
	RebuildWarnAfter time.Duration `yaml:"rebuild_warn_after"`
	// RandomSeed seeds sequencing picks. Zero seeds from the clock.
	RandomSeed uint64 `yaml:"random_seed"`
	// DefaultCurveType is assigned to new targets.
	DefaultCurveType curve.Type `yaml:"default_curve_type"`
	// Sequencing enables auto-advance for PlayByName.
	Sequencing bool `yaml:"sequencing"`
	// UniformTangents smooths without weighting by segment duration.
	UniformTangents bool `yaml:"uniform_tangents"`
}

func DefaultConfig() Config {
	return Config{
		Speed:            1,
		RebuildWarnAfter: time.Second,
		DefaultCurveType: curve.TypeSmooth,
		Sequencing:       true,
	}
}

func (c Config) withDefaults() Config {
	if c.RebuildWarnAfter <= 0 {
		c.RebuildWarnAfter = time.Second
	}
	return c
}
