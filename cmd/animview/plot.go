package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/animengine/clip"
)

const (
	plotX       = 16
	plotY       = 64
	plotW       = baseWidth - panelWidth - 2*plotX
	plotH       = baseHeight - plotY - 140
	plotSamples = 240
)

var channelColors = []color.RGBA{
	colornames.Tomato,
	colornames.Limegreen,
	colornames.Dodgerblue,
	colornames.Orange,
	colornames.Orchid,
	colornames.Turquoise,
	colornames.Gold,
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	c, err := g.engine.Current()
	if err == nil {
		g.drawClip(screen, c)
	}

	g.ui.Draw(screen)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    play %.2fs x%.2f    %s",
		g.frames, ebiten.ActualFPS(), g.engine.PlayTime(), g.engine.Speed(), g.status))
	g.drawMixer(screen)
}

func (g *Game) drawClip(screen *ebiten.Image, c *clip.Clip) {
	length := c.Length()
	vector.FillRect(screen, plotX, plotY, plotW, plotH, color.RGBA{A: 96}, false)
	vector.StrokeRect(screen, plotX, plotY, plotW, plotH, 1, colornames.Dimgray, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  length %.2f  loop %v  next %q  cursor %.3f",
		c.QualifiedName(), length, c.Loop(), c.NextName(), g.cursor), plotX, plotY-20)
	if length <= 0 {
		return
	}

	targets := c.SelectedTargets()
	lo, hi := valueRange(targets, length)
	toX := func(t float32) float32 { return plotX + t/length*plotW }
	toY := func(v float32) float32 { return plotY + plotH - (v-lo)/(hi-lo)*plotH }

	for _, t := range targets {
		if t.Kind() == clip.KindTriggerTrack {
			for _, k := range t.Triggers() {
				x := toX(k.Time)
				vector.StrokeLine(screen, x, plotY, x, plotY+plotH, 1, colornames.Lightgrey, false)
				ebitenutil.DebugPrintAt(screen, strings.Join(k.Names, ","), int(x)+2, plotY+plotH-16)
			}
			continue
		}
		for ch, cv := range t.Curves() {
			clr := channelColors[ch%len(channelColors)]
			prevX, prevY := toX(0), toY(cv.Evaluate(0))
			for i := 1; i <= plotSamples; i++ {
				tm := length * float32(i) / plotSamples
				x, y := toX(tm), toY(cv.Evaluate(tm))
				vector.StrokeLine(screen, prevX, prevY, x, y, 1.5, clr, true)
				prevX, prevY = x, y
			}
			for _, k := range cv.Keys() {
				vector.FillRect(screen, toX(k.Time)-2, toY(k.Value)-2, 4, 4, clr, false)
			}
		}
	}

	ct := toX(c.ClipTime())
	vector.StrokeLine(screen, ct, plotY, ct, plotY+plotH, 2, colornames.White, false)
	cx := toX(g.cursor)
	vector.StrokeLine(screen, cx, plotY, cx, plotY+plotH, 1, colornames.Yellow, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.3f", hi), plotX+4, plotY+2)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.3f", lo), plotX+4, plotY+plotH-16)
}

// valueRange spans every sampled channel value, padded so flat curves stay
// visible.
func valueRange(targets []*clip.Target, length float32) (float32, float32) {
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, t := range targets {
		if t.Kind() == clip.KindTriggerTrack {
			continue
		}
		for _, cv := range t.Curves() {
			for i := 0; i <= plotSamples; i++ {
				v := cv.Evaluate(length * float32(i) / plotSamples)
				lo, hi = min(lo, v), max(hi, v)
			}
		}
	}
	if lo > hi {
		return -1, 1
	}
	pad := max((hi-lo)*0.1, 0.05)
	return lo - pad, hi + pad
}

// drawMixer lists what the last sample pass composed, plus recent triggers.
func (g *Game) drawMixer(screen *ebiten.Image) {
	y := plotY + plotH + 12
	c, err := g.engine.Current()
	if err == nil {
		for _, t := range c.Targets() {
			switch t.Kind() {
			case clip.KindPose:
				if pos, rot, ok := g.mixer.Pose(t.Ref()); ok {
					ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s pos %.3f %.3f %.3f rot %.3f %.3f %.3f %.3f  w %.2f",
						t.Ref(), pos[0], pos[1], pos[2], rot[0], rot[1], rot[2], rot[3], g.mixer.Weight(t.Ref())), plotX, y)
					y += 16
				}
			case clip.KindScalar:
				if v, ok := g.mixer.Scalar(t.Ref()); ok {
					ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %.3f  w %.2f", t.Ref(), v, g.mixer.Weight(t.Ref())), plotX, y)
					y += 16
				}
			}
		}
	}
	if len(g.triggers) > 0 {
		ebitenutil.DebugPrintAt(screen, "triggers: "+strings.Join(g.triggers, "  "), plotX, y)
	}
}
