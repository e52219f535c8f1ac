package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/heartwindow/common"
	"golang.org/x/image/font/basicfont"
)

const creditsText = "Heart Window\nDesign, code and sound by the heartwindow team\nBuilt with Ebitengine, Chipmunk2D and Tengo"

type menuButton struct {
	label   string
	onClick func()
}

// newMenuPanel builds a centered panel with a title and one button per entry.
func newMenuPanel(title string, buttons []menuButton, extra ...widget.PreferredSizeLocateableWidget) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x10, G: 0x08, B: 0x18, A: 210})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x3a, G: 0x22, B: 0x3f, A: 255})
	hoverImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x6b, G: 0x2f, B: 0x5b, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white, Hover: white, Pressed: white}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/3, common.BaseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(widget.NewText(
		widget.TextOpts.Text(title, &face, white),
		widget.TextOpts.WidgetOpts(center),
	))

	for _, b := range buttons {
		onClick := b.onClick
		panel.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: hoverImg, Pressed: hoverImg}),
			widget.ButtonOpts.Text(b.label, &face, btnTextColor),
			widget.ButtonOpts.TextPadding(&widget.Insets{Top: 6, Bottom: 6, Left: 24, Right: 24}),
			widget.ButtonOpts.WidgetOpts(center),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		))
	}
	for _, w := range extra {
		panel.AddChild(w)
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}

// NewMainUI builds the title menu: Play, Credits and Quit.
func NewMainUI(g *Game) *ebitenui.UI {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	credits := widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xe0, G: 0xc0, B: 0xd8, A: 0xff}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
	return newMenuPanel("Heart Window", []menuButton{
		{label: "Play", onClick: g.resume},
		{label: "Credits", onClick: func() {
			if credits.Label == "" {
				credits.Label = creditsText
			} else {
				credits.Label = ""
			}
		}},
		{label: "Quit", onClick: g.requestQuit},
	}, credits)
}

// NewPauseUI builds the in-game pause menu: Resume, Main Menu and Quit.
func NewPauseUI(g *Game) *ebitenui.UI {
	return newMenuPanel("Paused", []menuButton{
		{label: "Resume", onClick: g.resume},
		{label: "Main Menu", onClick: g.openMainMenu},
		{label: "Quit", onClick: g.requestQuit},
	})
}
