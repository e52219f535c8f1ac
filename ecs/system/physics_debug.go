package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

func DrawPhysicsDebug(space *cp.Space, w *ecs.World, screen *ebiten.Image) {
	if space == nil || w == nil || screen == nil {
		return
	}

	camX, camY, zoom, _ := CameraOrigin(w)
	cp.DrawSpace(space, &physicsDebugDrawer{screen: screen, camX: camX, camY: camY, zoom: zoom})
}

// DrawPlayerStateDebug prints the controller state and the cut registry.
func DrawPlayerStateDebug(w *ecs.World, layers *WorldLayers, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	state := "idle"
	if sm, ok := ecs.Get(w, player, component.PlayerStateMachineComponent.Kind()); ok {
		state = stateName(sm.State)
	}
	p, ok := ecs.Get(w, player, component.PlayerComponent.Kind())
	if !ok {
		return
	}
	clipped := 0
	if layers != nil {
		for _, e := range append(layers.Heart(), layers.Real()...) {
			if c, ok := ecs.Get(w, e, component.ClippableComponent.Kind()); ok && c.Clipped {
				clipped++
			}
		}
	}
	text := fmt.Sprintf("Player State: %s\nGrounded: %v\nCrouching: %v\nPitch: %.1f\nHeld: %d\nClipped: %d\nTPS: %.0f",
		state, p.Grounded, p.Crouching, p.Pitch, p.Held, clipped, ebiten.ActualTPS())
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

// Debug colors by collision role.
var (
	debugSolid   = cp.FColor{R: 0.2, G: 1, B: 0.4, A: 0.9}
	debugPassing = cp.FColor{R: 0.6, G: 0.6, B: 0.6, A: 0.5}
	debugPlayer  = cp.FColor{R: 1, G: 0.4, B: 0.7, A: 0.9}
	debugContact = cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
)

// physicsDebugDrawer outlines every Chipmunk shape: solid geometry in green,
// geometry cut through the window in gray, the player in pink.
type physicsDebugDrawer struct {
	screen *ebiten.Image
	camX   float64
	camY   float64
	zoom   float64
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, _, fill cp.FColor, _ interface{}) {
	d.ring(pos, radius, fill)
	d.line(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), fill)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, _ interface{}) {
	d.line(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, _, fill cp.FColor, _ interface{}) {
	d.line(a, b, fill)
	d.ring(a, radius, fill)
	d.ring(b, radius, fill)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, _ float64, _, fill cp.FColor, _ interface{}) {
	if count > len(verts) {
		count = len(verts)
	}
	d.loop(verts[:count], fill)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, _ interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	h := size / 2
	d.line(cp.Vector{X: pos.X - h, Y: pos.Y}, cp.Vector{X: pos.X + h, Y: pos.Y}, fill)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - h}, cp.Vector{X: pos.X, Y: pos.Y + h}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor { return debugSolid }

// ShapeColor classifies a shape by its filter; probes and raycasts only see
// solid categories.
func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, _ interface{}) cp.FColor {
	f := shape.Filter
	switch {
	case f.Categories&categoryPlayer != 0:
		return debugPlayer
	case f.Categories&categorySolid != 0:
		return debugSolid
	default:
		return debugPassing
	}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor     { return debugPassing }
func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor { return debugContact }
func (d *physicsDebugDrawer) Data() interface{}              { return nil }

func (d *physicsDebugDrawer) line(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, toNRGBA(c), false)
}

func (d *physicsDebugDrawer) loop(verts []cp.Vector, c cp.FColor) {
	for i := range verts {
		d.line(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) ring(center cp.Vector, radius float64, c cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, debugCircleSegments)
	for i := range points {
		points[i] = center.Add(cp.ForAngle(2 * math.Pi * float64(i) / debugCircleSegments).Mult(radius))
	}
	d.loop(points, c)
}

func (d *physicsDebugDrawer) toScreen(v cp.Vector) (float64, float64) {
	return (v.X - d.camX) * d.zoom, (v.Y - d.camY) * d.zoom
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clampUnit(c.R) * 255),
		G: uint8(clampUnit(c.G) * 255),
		B: uint8(clampUnit(c.B) * 255),
		A: uint8(clampUnit(c.A) * 255),
	}
}

func clampUnit(v float32) float32 {
	return float32(common.Clamp01(float64(v)))
}
