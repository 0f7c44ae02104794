package main

import (
	"errors"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/prefabs"
)

func ctrlPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

// handleInput maps keys to engine and clip edits:
//
//	Space        play or stop the current clip
//	Enter        play the current clip with sequencing
//	R            stop and reset the clock
//	Left/Right   step the cursor between keys
//	Tab          select the next target (Shift clears the selection)
//	K            key the selected targets at the cursor
//	Delete       remove the keys at the cursor
//	Ctrl+C/V     copy or paste keys at the cursor
//	Ctrl+S       save the clip under prefabs/clips
//	-/=          halve or double the engine speed
func (g *Game) handleInput() {
	c, err := g.engine.Current()
	if err != nil {
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if err := g.engine.PlayClip(c, true); err != nil {
			g.setStatus("play: %v", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.engine.StopAndReset()
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		if t, ok := c.PreviousFrame(g.cursor); ok {
			g.cursor = t
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		if t, ok := c.NextFrame(g.cursor); ok {
			g.cursor = t
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.cycleSelection(c, ebiten.IsKeyPressed(ebiten.KeyShift))
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.keySelected(c)
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		g.deleteSelected(c)
	case inpututil.IsKeyJustPressed(ebiten.KeyC) && ctrlPressed():
		g.copyKeys(c)
	case inpututil.IsKeyJustPressed(ebiten.KeyV) && ctrlPressed():
		g.pasteKeys(c)
	case inpututil.IsKeyJustPressed(ebiten.KeyS) && ctrlPressed():
		g.save(c)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.engine.SetSpeed(g.engine.Speed() / 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.engine.SetSpeed(g.engine.Speed() * 2)
	}
}

func (g *Game) togglePlay() {
	if g.engine.Playing() {
		g.engine.Stop()
		return
	}
	if err := g.engine.Play(); err != nil {
		g.setStatus("play: %v", err)
	}
}

func (g *Game) cycleSelection(c *clip.Clip, clearAll bool) {
	targets := c.Targets()
	if len(targets) == 0 {
		return
	}
	next := 0
	if i := slices.IndexFunc(targets, (*clip.Target).Selected); i >= 0 {
		next = (i + 1) % len(targets)
	}
	for i, t := range targets {
		t.SetSelected(!clearAll && i == next)
	}
}

func (g *Game) keySelected(c *clip.Clip) {
	for _, t := range c.SelectedTargets() {
		if t.Kind() == clip.KindTriggerTrack {
			continue
		}
		if err := t.SetKeyframe(g.cursor, t.Evaluate(g.cursor)...); err != nil {
			g.reportEditError("key", err)
			return
		}
	}
}

func (g *Game) deleteSelected(c *clip.Clip) {
	removed := 0
	for _, t := range c.SelectedTargets() {
		if t.DeleteFrame(g.cursor) {
			removed++
		}
	}
	g.setStatus("removed keys on %d targets at %.3f", removed, g.cursor)
}

// copyKeys snapshots the selected targets at the cursor. The snapshot goes to
// the system clipboard as YAML when it is available.
func (g *Game) copyKeys(c *clip.Clip) {
	entry := c.Copy(g.cursor, c.SelectedTargets())
	g.copied = entry
	if !g.clipboard {
		return
	}
	data, err := yaml.Marshal(entry)
	if err != nil {
		g.setStatus("copy: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
}

func (g *Game) pasteKeys(c *clip.Clip) {
	entry := g.copied.Clone()
	if g.clipboard {
		var fromSystem clip.ClipboardEntry
		if data := clipboard.Read(clipboard.FmtText); len(data) > 0 && yaml.Unmarshal(data, &fromSystem) == nil && !fromSystem.Empty() {
			entry = fromSystem
		}
	}
	if err := c.Paste(g.engine.SnapTime(g.cursor), entry); err != nil {
		g.reportEditError("paste", err)
	}
}

func (g *Game) save(c *clip.Clip) {
	path, err := prefabs.SaveClip(c)
	if err != nil {
		g.setStatus("save: %v", err)
		return
	}
	if mt, ok := prefabs.ModTime(path); ok {
		g.saved[path] = mt
	}
	g.setStatus("saved %s to %s", c.QualifiedName(), path)
}

func (g *Game) reportEditError(op string, err error) {
	if errors.Is(err, clip.ErrDisposed) {
		g.setStatus("%s: clip was removed by a reload", op)
		return
	}
	g.setStatus("%s: %v", op, err)
}
