package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/animengine/clip"
)

const panelWidth = 260

// clipPanel lists the engine's clips by layer with a play button each.
type clipPanel struct {
	g     *Game
	list  *widget.Container
	face  ebtext.Face
	stale bool
}

func newClipPanel(g *Game) (*ebitenui.UI, *clipPanel) {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})

	p := &clipPanel{
		g:     g,
		face:  ebtext.NewGoXFace(basicfont.Face7x13),
		stale: true,
	}
	p.list = widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 24, Bottom: 10, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, baseHeight),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(p.list)

	p.sync()
	return &ebitenui.UI{Container: root}, p
}

// invalidate marks the list for rebuilding. Engine observers fire from inside
// button handlers, so the rebuild waits for sync at the top of Update.
func (p *clipPanel) invalidate() {
	p.stale = true
}

func (p *clipPanel) sync() {
	if !p.stale {
		return
	}
	p.stale = false
	p.list.RemoveChildren()

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	grey := color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}
	current, _ := p.g.engine.Current()
	index := p.g.engine.Index()

	for _, layer := range index.Layers() {
		p.list.AddChild(widget.NewText(
			widget.TextOpts.Text(layer, &p.face, grey),
		))
		for _, c := range index.ByLayer(layer) {
			p.list.AddChild(p.clipButton(c, c == current, white))
		}
	}
}

func (p *clipPanel) clipButton(c *clip.Clip, selected bool, textColor color.Color) *widget.Button {
	idle := color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}
	switch {
	case c.Playback.Enabled && c.Playback.MainInLayer:
		idle = color.NRGBA{R: 0x2e, G: 0x6b, B: 0x3a, A: 255}
	case c.Playback.Enabled:
		idle = color.NRGBA{R: 0x4a, G: 0x4a, B: 0x22, A: 255}
	}
	btnImg := imageui.NewNineSliceColor(idle)
	pressed := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	label := c.Name()
	if selected {
		label = "> " + label
	}
	return widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: pressed}),
		widget.ButtonOpts.Text(label, &p.face, &widget.ButtonTextColor{Idle: textColor}),
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(panelWidth-20, 24)),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			if err := p.g.engine.SelectClip(c); err != nil {
				p.g.setStatus("select: %v", err)
				return
			}
			if err := p.g.engine.PlayClip(c, p.g.engine.Sequencing()); err != nil {
				p.g.setStatus("play: %v", err)
			}
		}),
	)
}
