package prefabs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/common"
	"github.com/milk9111/animengine/playback"
)

// Reload applies a changed prefab file to e. Scripts are recompiled on next
// use; a clip prefab replaces the clip with the same layer and name, keeping
// it current if it was. It returns the rebuilt clip, or nil for scripts and
// the engine config.
func Reload(e *playback.Engine, ch Change) (*clip.Clip, error) {
	if ch.Kind == ScriptChange {
		name := filepath.Base(ch.Path)
		e.Scripts().Invalidate(name)
		common.Logger().Info("script changed", "script", name)
		return nil, nil
	}
	name := cleanPrefabPath(ch.Path)
	if !strings.HasPrefix(name, "clips/") {
		return nil, nil
	}
	spec, err := LoadClipSpec(name)
	if err != nil {
		return nil, err
	}
	c, err := BuildClip(spec, e.Config())
	if err != nil {
		return nil, err
	}

	old, err := e.GetClipQualified(c.QualifiedName())
	var nf *playback.NotFoundError
	if err != nil && !errors.As(err, &nf) {
		return nil, err
	}
	wasCurrent := false
	if old != nil {
		cur, _ := e.Current()
		wasCurrent = cur == old
		if err := e.RemoveClip(old); err != nil {
			return nil, fmt.Errorf("prefabs: reload %s: %w", name, err)
		}
	}
	if err := e.AddClip(c); err != nil {
		return nil, fmt.Errorf("prefabs: reload %s: %w", name, err)
	}
	if wasCurrent {
		_ = e.SelectClip(c)
	}
	common.Logger().Info("clip reloaded", "clip", c.QualifiedName(), "file", name)
	return c, nil
}
