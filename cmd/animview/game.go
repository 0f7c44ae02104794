package main

import (
	"fmt"
	"log"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/animengine/clip"
	"github.com/milk9111/animengine/playback"
	"github.com/milk9111/animengine/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	maxRecentTriggers = 8
)

type Game struct {
	frames int

	engine  *playback.Engine
	mixer   *playback.Mixer
	watcher *prefabs.Watcher

	ui    *ebitenui.UI
	panel *clipPanel

	// edit cursor in clip time
	cursor    float32
	copied    clip.ClipboardEntry
	clipboard bool
	// mod times of files this viewer saved, so their watch events are skipped
	saved map[string]time.Time

	triggers []string
	status   string
}

func NewGame(configName, clipName string) (*Game, error) {
	cfg, err := prefabs.LoadEngineConfig(configName)
	if err != nil {
		return nil, err
	}

	mixer := playback.NewMixer()
	engine := playback.NewEngine(cfg, mixer)
	engine.Scripts().SetLoader(prefabs.LoadScript)

	files, err := prefabs.ClipFiles()
	if err != nil {
		return nil, err
	}
	if _, err := prefabs.LoadClips(engine, files...); err != nil {
		return nil, err
	}

	g := &Game{
		engine: engine,
		mixer:  mixer,
		saved:  map[string]time.Time{},
	}

	if clipName != "" {
		c, err := g.findClip(clipName)
		if err != nil {
			return nil, err
		}
		if err := engine.SelectClip(c); err != nil {
			return nil, err
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("system clipboard unavailable, copy and paste stay in this window: %v", err)
	} else {
		g.clipboard = true
	}

	g.ui, g.panel = newClipPanel(g)

	mixer.OnTrigger(func(ev playback.TriggerEvent) {
		g.triggers = append(g.triggers, fmt.Sprintf("%.2f %s.%s", g.engine.PlayTime(), ev.Ref.Name, ev.Name))
		if len(g.triggers) > maxRecentTriggers {
			g.triggers = g.triggers[len(g.triggers)-maxRecentTriggers:]
		}
	})
	engine.OnRebuilt(func(info playback.RebuildInfo) {
		g.status = fmt.Sprintf("rebuilt %d clips in %s", info.Clips, info.Duration)
	})
	engine.OnClipsChanged(func(*playback.Engine) { g.panel.invalidate() })
	engine.OnPlaybackChanged(func(*clip.Clip) { g.panel.invalidate() })
	engine.OnCurrentChanged(func(*clip.Clip) {
		g.cursor = 0
		g.panel.invalidate()
	})

	return g, nil
}

// findClip accepts a plain name first, then layer/name.
func (g *Game) findClip(name string) (*clip.Clip, error) {
	c, err := g.engine.GetClip(name)
	if err == nil {
		return c, nil
	}
	if q, qerr := g.engine.GetClipQualified(name); qerr == nil {
		return q, nil
	}
	return nil, err
}

func (g *Game) Update() error {
	g.frames++

	g.pollWatcher()
	g.panel.sync()
	g.handleInput()

	g.engine.Tick(1 / float32(ebiten.TPS()))

	g.ui.Update()
	return nil
}

// pollWatcher applies pending prefab changes without blocking the tick.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ch, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if mt, ok := prefabs.ModTime(ch.Path); ok && mt.Equal(g.saved[ch.Path]) {
				continue
			}
			c, err := prefabs.Reload(g.engine, ch)
			if err != nil {
				g.setStatus("reload %s %s: %v", ch.Kind, ch.Path, err)
				continue
			}
			if c != nil {
				g.setStatus("reloaded %s", c.QualifiedName())
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.setStatus("watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	log.Print(g.status)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
