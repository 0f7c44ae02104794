package clip

import (
	"fmt"
	"slices"

	"github.com/milk9111/animengine/common"
	"github.com/milk9111/animengine/curve"
)

// TargetSnapshot is one target's keyframes at a single time.
type TargetSnapshot struct {
	Ref       Ref              `yaml:"target"`
	CurveType curve.Type       `yaml:"curve_type"`
	Keyframes []curve.Keyframe `yaml:"keyframes,omitempty"`
	Triggers  []string         `yaml:"triggers,omitempty"`
}

// ClipboardEntry holds snapshots taken by Copy.
type ClipboardEntry struct {
	Time      float32          `yaml:"time"`
	Snapshots []TargetSnapshot `yaml:"snapshots"`
}

func (e ClipboardEntry) Empty() bool {
	return len(e.Snapshots) == 0
}

// Copy snapshots each target at time. Channels with a key at time copy it as
// is; others copy the evaluated value.
func (c *Clip) Copy(time float32, targets []*Target) ClipboardEntry {
	entry := ClipboardEntry{Time: time}
	for _, t := range targets {
		snap := TargetSnapshot{Ref: t.ref, CurveType: t.CurveTypeAt(time)}
		if t.ref.Kind == KindTriggerTrack {
			snap.Triggers = t.TriggersAt(time)
			entry.Snapshots = append(entry.Snapshots, snap)
			continue
		}
		values := t.Evaluate(time)
		snap.Keyframes = make([]curve.Keyframe, len(t.curves))
		for i, cv := range t.curves {
			if j := cv.KeyframeBinarySearch(time, false); j != -1 {
				snap.Keyframes[i] = cv.Key(j)
				continue
			}
			snap.Keyframes[i] = curve.NewKeyframe(time, values[i], snap.CurveType)
		}
		entry.Snapshots = append(entry.Snapshots, snap)
	}
	return entry
}

// Paste writes every snapshot in entry at time, snapped to milliseconds and
// clamped to the clip span. Targets missing from the clip are created with
// edge frames. Pasting an empty entry is a logged no-op.
func (c *Clip) Paste(time float32, entry ClipboardEntry) error {
	if entry.Empty() {
		common.Logger().Warn("paste skipped: clipboard is empty", "clip", c.QualifiedName())
		return nil
	}
	if c.disposed {
		return fmt.Errorf("clip: paste into %s: %w", c, ErrDisposed)
	}
	time = common.Clamp(curve.RoundToMilliseconds(time), 0, c.length)
	var touched []*Target
	func() {
		done := c.silence()
		defer done()
		for _, snap := range entry.Snapshots {
			t, err := c.paste(time, snap)
			if err != nil {
				common.Logger().Warn("paste skipped target", "clip", c.QualifiedName(), "target", snap.Ref.String(), "error", err)
				continue
			}
			touched = append(touched, t)
		}
	}()
	if len(touched) > 0 {
		c.targetDirtied(nil)
	}
	return nil
}

func (c *Clip) paste(time float32, snap TargetSnapshot) (*Target, error) {
	created := c.Target(snap.Ref) == nil
	t, err := c.EnsureTarget(snap.Ref)
	if err != nil {
		return nil, err
	}
	if t.ref.Kind == KindTriggerTrack {
		if snap.Triggers != nil {
			t.putTriggers(time, snap.Triggers)
		}
		t.dirty = true
		return t, nil
	}
	if len(snap.Keyframes) != len(t.curves) {
		return nil, fmt.Errorf("clip: paste %s: %w: got %d, want %d", snap.Ref, ErrChannelCount, len(snap.Keyframes), len(t.curves))
	}
	for i, cv := range t.curves {
		k := snap.Keyframes[i].WithTime(time)
		if j := cv.KeyframeBinarySearch(time, false); j != -1 {
			_ = cv.SetKeyframeAt(j, k)
		} else {
			cv.AddKeyframe(k)
		}
	}
	t.curveTypes[curve.ToMilliseconds(time)] = snap.CurveType
	t.dirty = true
	if created {
		c.validateTarget(t)
	}
	return t, nil
}

// Clone returns a deep copy of the entry.
func (e ClipboardEntry) Clone() ClipboardEntry {
	out := ClipboardEntry{Time: e.Time, Snapshots: make([]TargetSnapshot, len(e.Snapshots))}
	for i, s := range e.Snapshots {
		s.Keyframes = slices.Clone(s.Keyframes)
		s.Triggers = slices.Clone(s.Triggers)
		out.Snapshots[i] = s
	}
	return out
}
