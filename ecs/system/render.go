package system

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"golang.org/x/image/colornames"
)

const windowStroke = 2

// RenderSystem draws the base pass: every visible shape in world order,
// then the window outline.
type RenderSystem struct {
	camEntity   ecs.Entity
	windowColor color.Color
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{windowColor: colornames.White}
}

// SetWindowColor sets the window outline color.
func (r *RenderSystem) SetWindowColor(c color.Color) {
	if c != nil {
		r.windowColor = c
	}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	if !ecs.IsAlive(w, r.camEntity) {
		r.camEntity, _ = ecs.First(w, component.CameraComponent.Kind())
	}
	camX, camY, zoom, _ := CameraOrigin(w)

	screen.Fill(backgroundColor(w))
	DrawShapes(w, screen, camX, camY, zoom, func(e ecs.Entity) bool {
		app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind())
		return !ok || !app.Dissolved
	})

	ecs.ForEach(w, component.WindowComponent.Kind(), func(_ ecs.Entity, win *component.Window) {
		if !win.Visible {
			return
		}
		cam, ok := ecs.Get(w, r.camEntity, component.CameraComponent.Kind())
		if !ok {
			return
		}
		rect := WindowScreenRect(win, cam.Width, cam.Height)
		vector.StrokeRect(screen, float32(rect.MinX), float32(rect.MinY), float32(rect.MaxX-rect.MinX), float32(rect.MaxY-rect.MinY), windowStroke, r.windowColor, false)
	})
}

// DrawShapes draws every shape keep accepts, sorted by render layer and then
// entity id. A nil keep draws everything.
func DrawShapes(w *ecs.World, dst *ebiten.Image, camX, camY, zoom float64, keep func(ecs.Entity) bool) {
	entities := ecs.Query(w, component.TransformComponent.Kind(), component.ShapeComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		li := renderIndex(w, entities[i])
		lj := renderIndex(w, entities[j])
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		if keep != nil && !keep(e) {
			continue
		}
		app, _ := ecs.Get(w, e, component.AppearanceComponent.Kind())
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		s, _ := ecs.Get(w, e, component.ShapeComponent.Kind())
		drawShape(dst, t, s, app, camX, camY, zoom)
	}
}

func drawShape(dst *ebiten.Image, t *component.Transform, s *component.Shape, app *component.Appearance, camX, camY, zoom float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 && sy == 0 {
		sx, sy = 1, 1
	}
	width := s.Width * sx * zoom
	height := s.Height * sy * zoom
	if width <= 0 || height <= 0 {
		return
	}
	x := (t.X-camX)*zoom - width/2
	y := (t.Y-camY)*zoom - height/2

	clr := s.Color
	if app != nil && app.Alpha < 1 {
		clr = scaleAlpha(clr, app.Alpha)
	}
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(width), float32(height), clr, false)
}

func renderIndex(w *ecs.World, e ecs.Entity) int {
	if layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind()); ok {
		return layer.Index
	}
	return 0
}

// scaleAlpha premultiplies c by a.
func scaleAlpha(c color.RGBA, a float64) color.RGBA {
	a = common.Clamp01(a)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

func backgroundColor(w *ecs.World) color.Color {
	if e, ok := ecs.First(w, component.LevelInfoComponent.Kind()); ok {
		if info, ok := ecs.Get(w, e, component.LevelInfoComponent.Kind()); ok {
			return common.HexOr(info.Background, colornames.Midnightblue)
		}
	}
	return colornames.Midnightblue
}
