package playback

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptLoader returns the source of a named selector script.
type ScriptLoader func(name string) ([]byte, error)

// SelectInput is what a selector script sees.
type SelectInput struct {
	Candidates []string
	Current    string
	Layer      string
	PlayTime   float32
	// Roll is a uniform random number in [0, 1) from the engine's source.
	Roll float64
}

// ScriptSelector runs tengo scripts that choose a next clip. A script reads
// the globals candidates, current, layer, play_time and roll, and assigns the
// chosen clip name to next.
type ScriptSelector struct {
	load     ScriptLoader
	compiled map[string]*tengo.Compiled
}

func NewScriptSelector(load ScriptLoader) *ScriptSelector {
	return &ScriptSelector{load: load, compiled: map[string]*tengo.Compiled{}}
}

// SetLoader replaces the script source and drops compiled scripts.
func (s *ScriptSelector) SetLoader(load ScriptLoader) {
	s.load = load
	s.Invalidate("")
}

// Invalidate drops the compiled copy of name, or of every script when name
// is empty. Hot reload calls it when a script changes on disk.
func (s *ScriptSelector) Invalidate(name string) {
	if name == "" {
		clear(s.compiled)
		return
	}
	delete(s.compiled, name)
}

// Select runs the script and returns the name it picked.
func (s *ScriptSelector) Select(name string, in SelectInput) (string, error) {
	compiled, err := s.compile(name)
	if err != nil {
		return "", err
	}
	candidates := make([]any, len(in.Candidates))
	for i, c := range in.Candidates {
		candidates[i] = c
	}
	vars := []struct {
		name  string
		value any
	}{
		{"candidates", candidates},
		{"current", in.Current},
		{"layer", in.Layer},
		{"play_time", float64(in.PlayTime)},
		{"roll", in.Roll},
		{"next", ""},
	}
	for _, v := range vars {
		if err := compiled.Set(v.name, v.value); err != nil {
			return "", fmt.Errorf("playback: script %s: set %s: %w", name, v.name, err)
		}
	}
	if err := compiled.Run(); err != nil {
		return "", fmt.Errorf("playback: script %s: %w", name, err)
	}
	next := strings.TrimSpace(compiled.Get("next").String())
	if next == "" {
		return "", fmt.Errorf("playback: script %s chose no clip: %w", name, ErrNotFound)
	}
	return next, nil
}

func (s *ScriptSelector) compile(name string) (*tengo.Compiled, error) {
	if c, ok := s.compiled[name]; ok {
		return c, nil
	}
	if s.load == nil {
		return nil, fmt.Errorf("playback: script %s: no script loader", name)
	}
	src, err := s.load(name)
	if err != nil {
		return nil, fmt.Errorf("playback: load script %s: %w", name, err)
	}
	script := tengo.NewScript(src)
	_ = script.Add("candidates", []any{})
	_ = script.Add("current", "")
	_ = script.Add("layer", "")
	_ = script.Add("play_time", 0.0)
	_ = script.Add("roll", 0.0)
	_ = script.Add("next", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("playback: compile script %s: %w", name, err)
	}
	s.compiled[name] = compiled
	return compiled, nil
}
