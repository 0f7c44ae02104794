package playback

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
)

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) < float64(eps)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RandomSeed = 42
	return cfg
}

func mustClip(t *testing.T, e *Engine, name, layer string, length float32) *clip.Clip {
	t.Helper()
	c, err := e.NewClip(name, layer, length)
	if err != nil {
		t.Fatalf("NewClip(%q): %v", name, err)
	}
	return c
}

func TestAddClipDuplicate(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	mustClip(t, e, "Idle", "", 1)
	if _, err := e.NewClip("Idle", "", 1); !errors.Is(err, ErrDuplicateClip) {
		t.Fatalf("got %v, want ErrDuplicateClip", err)
	}
	if _, err := e.NewClip("Idle", "Face", 1); err != nil {
		t.Fatalf("same name in another layer: %v", err)
	}
}

func TestLookups(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	idle := mustClip(t, e, "Idle", "", 1)
	smile := mustClip(t, e, "Smile", "Face", 1)

	tests := []struct {
		name  string
		found func() (*clip.Clip, error)
		want  *clip.Clip
	}{
		{"by name", func() (*clip.Clip, error) { return e.GetClip("Smile") }, smile},
		{"qualified", func() (*clip.Clip, error) { return e.GetClipQualified("Base/Idle") }, idle},
		{"qualified wrong layer", func() (*clip.Clip, error) { return e.GetClipQualified("Face/Idle") }, nil},
		{"missing", func() (*clip.Clip, error) { return e.GetClip("Run") }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.found()
			if tt.want == nil {
				var nf *NotFoundError
				if !errors.As(err, &nf) || !errors.Is(err, ErrNotFound) {
					t.Fatalf("got %v, want NotFoundError", err)
				}
				if !slices.Contains(nf.Known, "Base/Idle") || !slices.Contains(nf.Known, "Face/Smile") {
					t.Fatalf("known names %v", nf.Known)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got (%v, %v), want %v", got, err, tt.want)
			}
		})
	}

	if clips, err := e.GetClipsInLayer("Face"); err != nil || len(clips) != 1 || clips[0] != smile {
		t.Fatalf("GetClipsInLayer(Face) = %v, %v", clips, err)
	}
	if _, err := e.GetClipsInLayer("Body"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCurrentClip(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	if _, err := e.Current(); !errors.Is(err, ErrNoCurrentClip) {
		t.Fatalf("got %v, want ErrNoCurrentClip", err)
	}
	if err := e.Play(); !errors.Is(err, ErrNoCurrentClip) {
		t.Fatalf("got %v, want ErrNoCurrentClip", err)
	}

	var changes []*clip.Clip
	e.OnCurrentChanged(func(c *clip.Clip) { changes = append(changes, c) })
	a := mustClip(t, e, "A", "", 1)
	b := mustClip(t, e, "B", "", 1)
	if cur, _ := e.Current(); cur != a {
		t.Fatalf("current %v, want first added clip", cur)
	}
	if err := e.SelectClip(b); err != nil {
		t.Fatalf("SelectClip: %v", err)
	}
	if err := e.RemoveClip(b); err != nil {
		t.Fatalf("RemoveClip: %v", err)
	}
	if cur, _ := e.Current(); cur != a {
		t.Fatalf("current %v after removing it, want A", cur)
	}
	if !b.Disposed() {
		t.Fatal("removed clip was not disposed")
	}
	if len(changes) != 3 {
		t.Fatalf("got %d current changes, want 3", len(changes))
	}
	if err := e.SelectClip(b); !errors.Is(err, ErrForeignClip) {
		t.Fatalf("got %v, want ErrForeignClip", err)
	}
}

func TestRebuildCoalescing(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	c := mustClip(t, e, "Idle", "", 2)
	x, y := clip.NewScalarTarget("x", 0), clip.NewScalarTarget("y", 0)
	for _, tg := range []*clip.Target{x, y} {
		if err := c.AddTarget(tg); err != nil {
			t.Fatalf("AddTarget: %v", err)
		}
	}

	rebuilds := 0
	e.OnRebuilt(func(RebuildInfo) { rebuilds++ })
	for i := range 10 {
		if err := x.SetValue(float32(i)/10, float32(i)); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
		if err := y.SetValue(float32(i)/5, float32(-i)); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
	}
	if !e.RebuildPending() {
		t.Fatal("edits did not schedule a rebuild")
	}
	if rebuilds != 0 {
		t.Fatalf("rebuild ran before the tick boundary")
	}

	e.Tick(1.0 / 60)
	if rebuilds != 1 {
		t.Fatalf("got %d rebuilds, want 1", rebuilds)
	}
	if x.Dirty() || y.Dirty() || c.IsDirty() {
		t.Fatal("targets still dirty after rebuild")
	}

	e.Tick(1.0 / 60)
	if rebuilds != 1 {
		t.Fatalf("clean tick rebuilt again: %d rebuilds", rebuilds)
	}
}

func TestRebuildReentrancy(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	c := mustClip(t, e, "Idle", "", 1)
	x := clip.NewScalarTarget("x", 0)
	if err := c.AddTarget(x); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}

	var nested error
	edit := true
	e.OnRebuilt(func(RebuildInfo) {
		nested = e.RebuildNow()
		if edit {
			edit = false
			_ = x.SetValue(0.5, 1)
		}
	})

	err := e.RebuildNow()
	if !errors.Is(nested, ErrRebuildInProgress) {
		t.Fatalf("nested rebuild returned %v, want ErrRebuildInProgress", nested)
	}
	if !errors.Is(err, ErrRebuildInProgress) {
		t.Fatalf("edit during rebuild returned %v, want ErrRebuildInProgress", err)
	}
	if !e.RebuildPending() {
		t.Fatal("dirty clip was not rescheduled after a failed rebuild")
	}
	if err := e.RebuildNow(); err != nil {
		t.Fatalf("recovery rebuild: %v", err)
	}
	if x.Dirty() {
		t.Fatal("target still dirty after recovery")
	}
}

func TestRebuildRecoversFromPanic(t *testing.T) {
	var got []float32
	sink := clip.SinkFuncs{Scalar: func(_ clip.Ref, v, _ float32) { got = append(got, v) }}
	e := NewEngine(testConfig(), sink)
	c := mustClip(t, e, "Idle", "", 1)
	c.SetBlendIn(0)
	x := clip.NewScalarTarget("x", 0)
	if err := c.AddTarget(x); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	for _, tm := range []float32{0, 1} {
		if err := x.SetValue(tm, 3); err != nil {
			t.Fatalf("SetValue(%v): %v", tm, err)
		}
	}
	if err := e.PlayClip(c, false); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}

	panicked := false
	e.OnRebuilt(func(RebuildInfo) {
		if !panicked {
			panicked = true
			panic("boom")
		}
	})

	err := e.RebuildNow()
	if err == nil || !strings.Contains(err.Error(), "rebuild panicked: boom") {
		t.Fatalf("RebuildNow = %v, want recovered panic", err)
	}
	if e.RebuildPending() {
		t.Fatal("rebuild rescheduled although every clip was clean")
	}

	e.Tick(0.1)
	if len(got) == 0 || got[len(got)-1] != 3 {
		t.Fatalf("tick after recovered panic wrote %v, want a sample of 3", got)
	}
	if err := e.RebuildNow(); err != nil {
		t.Fatalf("rebuild after recovery: %v", err)
	}
}

func TestSlowRebuildLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	defer common.SetLogger(nil)

	cfg := testConfig()
	cfg.RebuildWarnAfter = time.Nanosecond
	e := NewEngine(cfg, nil)
	c := mustClip(t, e, "Idle", "", 1)
	if err := c.AddTarget(clip.NewScalarTarget("x", 0)); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}

	if err := e.RebuildNow(); err != nil {
		t.Fatalf("RebuildNow: %v", err)
	}
	if !strings.Contains(buf.String(), "slow rebuild") {
		t.Fatalf("log output %q has no slow rebuild record", buf.String())
	}
	if strings.Contains(buf.String(), "rebuild failed") {
		t.Fatalf("slow rebuild logged as a failure: %q", buf.String())
	}
	if c.IsDirty() {
		t.Fatal("clip still dirty after slow rebuild")
	}
}

func TestNextChangeDirtiesTransition(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 1)
	tr := mustClip(t, e, "Into", "", 1)
	tr.SetTransition(true, false)
	for _, c := range []*clip.Clip{a, tr} {
		if err := c.AddTarget(clip.NewScalarTarget("x", 0)); err != nil {
			t.Fatalf("AddTarget: %v", err)
		}
	}
	if err := e.RebuildNow(); err != nil {
		t.Fatalf("RebuildNow: %v", err)
	}

	tests := []struct {
		name string
		next string
	}{
		{"points at transition", "Into"},
		{"points away", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.SetNext(tt.next, 1)
			if !tr.IsDirty() || !e.RebuildPending() {
				t.Fatalf("transition dirty=%v pending=%v after SetNext(%q)", tr.IsDirty(), e.RebuildPending(), tt.next)
			}
			if err := e.RebuildNow(); err != nil {
				t.Fatalf("RebuildNow: %v", err)
			}
		})
	}

	a.SetNext("", 2)
	if tr.IsDirty() {
		t.Fatal("unchanged next name dirtied the transition")
	}
}

func TestSampleAfterRebuild(t *testing.T) {
	var got []float32
	sink := clip.SinkFuncs{Scalar: func(_ clip.Ref, v, _ float32) { got = append(got, v) }}
	e := NewEngine(testConfig(), sink)
	c := mustClip(t, e, "Idle", "", 1)
	c.SetBlendIn(0)
	x := clip.NewScalarTarget("x", 0)
	if err := c.AddTarget(x); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	if err := x.SetValue(0, 3); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := e.PlayClip(c, false); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}

	if e.Sample() {
		t.Fatal("sample ran with a rebuild pending")
	}
	if len(got) != 0 {
		t.Fatalf("sink written before rebuild: %v", got)
	}
	if err := e.RebuildNow(); err != nil {
		t.Fatalf("RebuildNow: %v", err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("deferred sample wrote %v, want [3]", got)
	}
}

func TestBlendRampBounds(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	walk := mustClip(t, e, "Walk", "", 1)
	run := mustClip(t, e, "Run", "", 1)
	walk.SetLoop(true)
	run.SetLoop(true)
	walk.SetBlendIn(0)
	run.SetBlendIn(0.5)

	if err := e.PlayClip(walk, false); err != nil {
		t.Fatalf("PlayClip(walk): %v", err)
	}
	if walk.Playback.Weight != 1 || !walk.Playback.MainInLayer {
		t.Fatalf("walk playback %+v, want main at full weight", walk.Playback)
	}
	if err := e.PlayClip(run, false); err != nil {
		t.Fatalf("PlayClip(run): %v", err)
	}
	if walk.Playback.MainInLayer || !run.Playback.MainInLayer {
		t.Fatal("main flag did not move to the incoming clip")
	}

	e.Tick(0.125)
	e.Tick(0.125)
	if !near(walk.Playback.Weight, 0.5, 1e-5) || !near(run.Playback.Weight, 0.5, 1e-5) {
		t.Fatalf("midway weights walk=%v run=%v, want 0.5 each", walk.Playback.Weight, run.Playback.Weight)
	}
	e.Tick(0.125)
	e.Tick(0.125)
	if walk.Playback.Weight != 0 || walk.Playback.Enabled {
		t.Fatalf("outgoing clip %+v, want disabled at weight 0", walk.Playback)
	}
	if run.Playback.Weight != run.Weight() || run.Playback.BlendRate != 0 {
		t.Fatalf("incoming clip %+v, want weight %v with no rate", run.Playback, run.Weight())
	}

	e.Tick(0.125)
	if run.Playback.Weight != run.Weight() {
		t.Fatalf("incoming weight overshot to %v", run.Playback.Weight)
	}
}

func TestOneMainPerLayer(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	var clips []*clip.Clip
	for _, name := range []string{"A", "B", "C"} {
		clips = append(clips, mustClip(t, e, name, "", 1))
	}
	face := mustClip(t, e, "Smile", "Face", 1)
	for _, c := range append(clips, face) {
		if err := e.PlayClip(c, false); err != nil {
			t.Fatalf("PlayClip(%v): %v", c, err)
		}
	}
	mains := map[string]int{}
	for _, c := range e.Clips() {
		if c.Playback.MainInLayer {
			mains[c.Layer()]++
		}
	}
	if mains["Base"] != 1 || mains["Face"] != 1 {
		t.Fatalf("main clips per layer %v, want one each", mains)
	}
	if e.MainInLayer("Base") != clips[2] {
		t.Fatalf("main in Base is %v, want C", e.MainInLayer("Base"))
	}
}

func TestSequencingGroup(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	walkA := mustClip(t, e, "Walk/A", "", 1)
	mustClip(t, e, "Walk/B", "", 1)
	mustClip(t, e, "Idle", "", 1)
	walkA.SetNext("Walk/*", 1)

	if err := e.PlayClip(walkA, true); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	for range 200 {
		next := e.AssignNextAnimation(walkA)
		if next == nil || next.Name() != "Walk/B" {
			t.Fatalf("selected %v, want Walk/B", next)
		}
	}
	if walkA.Playback.ScheduledNext != "Base/Walk/B" {
		t.Fatalf("scheduled %q", walkA.Playback.ScheduledNext)
	}
}

func TestRandomPick(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	index := map[*clip.Clip]int{}
	var clips []*clip.Clip
	for i, name := range []string{"A", "B", "C", "D", "E"} {
		c := mustClip(t, e, name, "", 1)
		index[c] = i
		clips = append(clips, c)
	}
	self := clips[2]
	self.SetNext(RandomizeToken, 1)
	if err := e.PlayClip(self, true); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}

	seen := map[int]int{}
	for range 1000 {
		next := e.AssignNextAnimation(self)
		if next == nil {
			t.Fatal("no clip selected")
		}
		seen[index[next]]++
	}
	if seen[2] != 0 {
		t.Fatalf("picked itself %d times", seen[2])
	}
	for _, i := range []int{0, 1, 3, 4} {
		if seen[i] == 0 {
			t.Fatalf("index %d never picked: %v", i, seen)
		}
	}
}

func TestScheduledTransitionFires(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 1)
	b := mustClip(t, e, "B", "", 1)
	a.SetBlendIn(0)
	b.SetBlendIn(0)
	a.SetNext("B", 0.5)

	if err := e.PlayClip(a, true); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	if !a.Playback.Scheduled || a.Playback.ScheduledAt != 0.5 {
		t.Fatalf("playback %+v, want transition scheduled at 0.5", a.Playback)
	}
	e.Tick(0.25)
	if !a.Playback.MainInLayer {
		t.Fatal("transition fired early")
	}
	e.Tick(0.25)
	if a.Playback.Enabled || !b.Playback.MainInLayer || b.Playback.Weight != 1 {
		t.Fatalf("a=%+v b=%+v, want b playing", a.Playback, b.Playback)
	}
}

func TestCrossLayerSequenceHandsOff(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 1)
	b := mustClip(t, e, "B", "Upper", 1)
	a.SetBlendIn(0)
	b.SetBlendIn(0)
	a.SetNext(RandomizeToken, 0.5)
	b.SetNext("A", 0.5)

	if err := e.PlayClip(a, true); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	if a.Playback.ScheduledNext != "Upper/B" {
		t.Fatalf("scheduled %q, want Upper/B", a.Playback.ScheduledNext)
	}
	e.Tick(0.5)
	if a.Playback.Enabled || a.Playback.MainInLayer {
		t.Fatalf("a=%+v, want a faded out after handing off to another layer", a.Playback)
	}
	if !b.Playback.MainInLayer || !b.Playback.Scheduled {
		t.Fatalf("b=%+v, want b playing with its next clip scheduled", b.Playback)
	}
	e.Tick(0.5)
	if !a.Playback.MainInLayer || b.Playback.Enabled {
		t.Fatalf("a=%+v b=%+v, want the sequence back on a", a.Playback, b.Playback)
	}
}

func TestNextTimeRandomize(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 1)
	mustClip(t, e, "B", "", 1)
	a.SetNext("B", 1)
	a.SetNextTimeRandomize(0.5)
	if err := e.PlayClip(a, true); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	for range 100 {
		e.AssignNextAnimation(a)
		at := a.Playback.ScheduledAt
		if at < 1 || at > 1.5 {
			t.Fatalf("scheduled at %v, want within [1, 1.5]", at)
		}
	}
}

func TestUnknownNextClip(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 1)
	a.SetNext("Missing", 1)
	if err := e.PlayClip(a, true); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	if a.Playback.Scheduled {
		t.Fatal("scheduled a transition to a missing clip")
	}
	if _, err := e.SelectNext(a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestScriptSelector(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 1)
	mustClip(t, e, "B", "", 1)
	c := mustClip(t, e, "C", "", 1)
	e.Scripts().SetLoader(func(name string) ([]byte, error) {
		if name != "last.tengo" {
			return nil, errors.New("no such script")
		}
		return []byte(`next = candidates[len(candidates)-1]`), nil
	})

	a.SetNext(ScriptPrefix+"last.tengo", 1)
	got, err := e.SelectNext(a)
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if got != c {
		t.Fatalf("script picked %v, want C", got)
	}

	a.SetNext(ScriptPrefix+"missing.tengo", 1)
	if _, err := e.SelectNext(a); err == nil {
		t.Fatal("missing script did not fail")
	}
}

func TestStopAndReset(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 2)
	a.SetBlendIn(0)
	if err := e.PlayClip(a, false); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	e.Tick(0.5)
	if a.ClipTime() != 0.5 || e.PlayTime() != 0.5 {
		t.Fatalf("clip time %v play time %v, want 0.5", a.ClipTime(), e.PlayTime())
	}
	e.StopAndReset()
	if e.Playing() || a.Playback.Enabled || a.ClipTime() != 0 || e.PlayTime() != 0 {
		t.Fatalf("after reset: playing=%v playback=%+v clip=%v play=%v", e.Playing(), a.Playback, a.ClipTime(), e.PlayTime())
	}
	e.Tick(0.5)
	if e.PlayTime() != 0 {
		t.Fatal("stopped clock advanced")
	}
}

func TestSpeedScalesClock(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	a := mustClip(t, e, "A", "", 4)
	a.SetBlendIn(0)
	a.SetSpeed(2)
	e.SetSpeed(0.5)
	if err := e.PlayClip(a, false); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}
	e.Tick(1)
	if e.PlayTime() != 0.5 || a.ClipTime() != 1 {
		t.Fatalf("play time %v clip time %v, want 0.5 and 1", e.PlayTime(), a.ClipTime())
	}
	e.SetPlayTime(1.5)
	if a.ClipTime() != 3 {
		t.Fatalf("clip time %v after SetPlayTime, want 3", a.ClipTime())
	}
}

func TestClipIndexBulkUpdate(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	before := e.Index().Rebuilds()
	e.BeginBulkUpdate()
	for _, name := range []string{"A", "B", "C", "D"} {
		c := mustClip(t, e, name, "Body", 1)
		if err := c.AddTarget(clip.NewPoseTarget("hip")); err != nil {
			t.Fatalf("AddTarget: %v", err)
		}
	}
	if got := e.Index().Rebuilds(); got != before {
		t.Fatalf("index rebuilt %d times during bulk update", got-before)
	}
	e.EndBulkUpdate()
	if got := e.Index().Rebuilds(); got != before+1 {
		t.Fatalf("index rebuilt %d times after bulk update, want 1", got-before)
	}
	if got := len(e.Index().ByLayer("Body")); got != 4 {
		t.Fatalf("got %d clips in Body, want 4", got)
	}
	if got := len(e.Index().ByTarget(clip.Ref{Kind: clip.KindPose, Name: "hip"})); got != 4 {
		t.Fatalf("got %d clips animating hip, want 4", got)
	}
}

func TestTickSamplesWithMixer(t *testing.T) {
	mixer := NewMixer()
	e := NewEngine(testConfig(), mixer)
	ref := clip.Ref{Kind: clip.KindScalar, Name: "x"}
	for _, spec := range []struct {
		layer string
		value float32
	}{{"Base", 2}, {"Over", 6}} {
		c := mustClip(t, e, "Hold", spec.layer, 1)
		c.SetBlendIn(0)
		x := clip.NewScalarTarget("x", 0)
		if err := c.AddTarget(x); err != nil {
			t.Fatalf("AddTarget: %v", err)
		}
		if err := x.SetValue(0, spec.value); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
		if err := e.PlayClip(c, false); err != nil {
			t.Fatalf("PlayClip: %v", err)
		}
	}
	frames := 0
	mixer.OnFrame(func(*Mixer) { frames++ })
	e.Tick(0.1)
	v, ok := mixer.Scalar(ref)
	if !ok || !near(v, 4, 1e-5) || mixer.Weight(ref) != 2 {
		t.Fatalf("mixed %v (ok=%v weight=%v), want 4 from two full-weight clips", v, ok, mixer.Weight(ref))
	}
	if frames != 1 {
		t.Fatalf("got %d frames, want 1", frames)
	}
}

func TestMixerPoseHemisphere(t *testing.T) {
	m := NewMixer()
	ref := clip.Ref{Kind: clip.KindPose, Name: "hand"}
	m.BeginFrame()
	m.WritePose(ref, [3]float32{0, 0, 0}, [4]float32{0, 0, 0, 1}, 1)
	m.WritePose(ref, [3]float32{2, 0, 0}, [4]float32{0, 0, 0, -1}, 1)
	m.EndFrame()
	pos, rot, ok := m.Pose(ref)
	if !ok || pos[0] != 1 || rot != [4]float32{0, 0, 0, 1} {
		t.Fatalf("got pos %v rot %v ok %v", pos, rot, ok)
	}
}

func TestSchedulerRunsHostSystemsLast(t *testing.T) {
	e := NewEngine(testConfig(), nil)
	c := mustClip(t, e, "Idle", "", 1)
	if err := e.PlayClip(c, false); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}

	var seen []float32
	e.Scheduler().Add(SystemFunc(func(e *Engine, dt float32) {
		seen = append(seen, e.PlayTime())
	}))
	if got := len(e.Scheduler().Systems()); got != 5 {
		t.Fatalf("got %d systems, want 5", got)
	}

	e.Tick(0.25)
	e.Tick(0.25)
	if len(seen) != 2 || !near(seen[0], 0.25, 1e-6) || !near(seen[1], 0.5, 1e-6) {
		t.Fatalf("host system saw play times %v, want [0.25 0.5]", seen)
	}
}
