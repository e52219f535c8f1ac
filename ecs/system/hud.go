package system

import (
	"bytes"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	hudFontSize      = 18
	hudMargin        = 24
	hudCrosshairSize = 6
)

// DialogueText is the line the HUD shows under the scene.
type DialogueText interface {
	Text() string
}

// HUD draws the prompt, crosshair, dialogue and screen fade over the
// composited frame.
type HUD struct {
	face     text.Face
	dialogue DialogueText
}

func NewHUD(dialogue DialogueText) *HUD {
	var face text.Face
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("hud: load font: %v", err)
		face = text.NewGoXFace(basicfont.Face7x13)
	} else {
		face = &text.GoTextFace{Source: src, Size: hudFontSize}
	}
	return &HUD{face: face, dialogue: dialogue}
}

func (h *HUD) Draw(w *ecs.World, screen *ebiten.Image) {
	if h == nil || w == nil || screen == nil {
		return
	}
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		p, _ := ecs.Get(w, player, component.PlayerComponent.Kind())
		if p != nil && p.SceneActive {
			cx, cy := float32(sw/2), float32(sh/2)
			vector.StrokeLine(screen, cx-hudCrosshairSize, cy, cx+hudCrosshairSize, cy, 1, color.White, false)
			vector.StrokeLine(screen, cx, cy-hudCrosshairSize, cx, cy+hudCrosshairSize, 1, color.White, false)
		}
		if prompt, ok := ecs.Get(w, player, component.PromptComponent.Kind()); ok && prompt.Text != "" {
			h.drawCentered(screen, prompt.Text, sw/2, sh/2+48)
		}
	}

	if h.dialogue != nil {
		if line := h.dialogue.Text(); line != "" {
			h.drawCentered(screen, line, sw/2, sh-hudMargin*3)
		}
	}

	if a := FadeAlpha(w); a > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(sw), float32(sh), color.RGBA{A: uint8(common.Clamp01(a) * 255)}, false)
	}
}

func (h *HUD) drawCentered(screen *ebiten.Image, s string, x, y float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.LineSpacing = hudFontSize * 1.4
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, s, h.face, op)
}
