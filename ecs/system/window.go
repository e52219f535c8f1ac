package system

import (
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

// MaskInvalidator is notified when the window geometry moves on screen.
type MaskInvalidator interface {
	InvalidateMask()
}

// CutResult is the payload of EventCutApplied.
type CutResult struct {
	Clipped int
	Synced  int
}

// WindowSystem keeps the window anchored to the camera in front of the
// player and applies cuts through it.
type WindowSystem struct {
	layers *WorldLayers
	mask   MaskInvalidator
}

func NewWindowSystem(layers *WorldLayers, mask MaskInvalidator) *WindowSystem {
	return &WindowSystem{layers: layers, mask: mask}
}

func (ws *WindowSystem) Update(w *ecs.World) {
	if ws == nil || w == nil {
		return
	}
	player, ok := ecs.First(w, component.PlayerComponent.Kind())
	if !ok {
		return
	}
	p, _ := ecs.Get(w, player, component.PlayerComponent.Kind())

	ecs.ForEach(w, component.WindowComponent.Kind(), func(e ecs.Entity, win *component.Window) {
		if win.FacingLeft != p.FacingLeft {
			win.FacingLeft = p.FacingLeft
			if ws.mask != nil {
				ws.mask.InvalidateMask()
			}
		}
		if r, ok := WindowWorldRect(w); ok {
			if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
				t.X = (r.MinX + r.MaxX) / 2
				t.Y = (r.MinY + r.MaxY) / 2
			}
		}
	})
}

// ShowWindow toggles the window outline.
func (ws *WindowSystem) ShowWindow(w *ecs.World, visible bool) {
	ecs.ForEach(w, component.WindowComponent.Kind(), func(_ ecs.Entity, win *component.Window) {
		win.Visible = visible
	})
}

// ApplyCut clips every registered entity under the window, nearest first,
// then brings entangled pairs into agreement. It returns how many entities
// changed.
func (ws *WindowSystem) ApplyCut(w *ecs.World) int {
	if ws == nil || ws.layers == nil || w == nil {
		return 0
	}
	region, ok := WindowWorldRect(w)
	if !ok || region.Empty() {
		return 0
	}
	var px, py float64
	if player, ok := ecs.First(w, component.PlayerComponent.Kind()); ok {
		if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
			px, py = t.X, t.Y
		}
	}

	res := CutResult{}
	for _, entry := range ws.layers.Ordered(w, px, py) {
		r, ok := entityRect(w, entry.Entity)
		if !ok || !r.Overlaps(region) {
			continue
		}
		if err := ws.layers.Clip(w, entry.Entity); err == nil {
			res.Clipped++
		}
	}
	res.Synced = ws.layers.SyncEntangled(w)
	w.Events().Push(ecs.Event{Type: ecs.EventCutApplied, Data: res})
	return res.Clipped + res.Synced
}

// WindowScreenRect places the window in a view of the given size: vertically
// centered, offset horizontally by Distance toward the facing side.
func WindowScreenRect(win *component.Window, viewW, viewH float64) Rect {
	dir := 1.0
	if win.FacingLeft {
		dir = -1
	}
	return rectAround(viewW/2+dir*win.Distance, viewH/2, win.Width, win.Height)
}

// WindowWorldRect maps the window's screen rect through the camera.
func WindowWorldRect(w *ecs.World) (Rect, bool) {
	winEnt, ok := ecs.First(w, component.WindowComponent.Kind())
	if !ok {
		return Rect{}, false
	}
	win, _ := ecs.Get(w, winEnt, component.WindowComponent.Kind())
	camEnt, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return Rect{}, false
	}
	cam, _ := ecs.Get(w, camEnt, component.CameraComponent.Kind())
	camX, camY, _, ok := CameraOrigin(w)
	if !ok {
		return Rect{}, false
	}
	viewW, viewH := cameraView(cam)
	r := WindowScreenRect(win, viewW, viewH)
	return Rect{MinX: r.MinX + camX, MinY: r.MinY + camY, MaxX: r.MaxX + camX, MaxY: r.MaxY + camY}, true
}
