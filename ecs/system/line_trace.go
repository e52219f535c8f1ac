package system

import (
	"math"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

// Rect is an axis-aligned box in world space.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func rectAround(x, y, width, height float64) Rect {
	return Rect{MinX: x - width/2, MinY: y - height/2, MaxX: x + width/2, MaxY: y + height/2}
}

func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// entityRect returns the world box of an entity with a transform and shape.
func entityRect(w *ecs.World, e ecs.Entity) (Rect, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return Rect{}, false
	}
	s, ok := ecs.Get(w, e, component.ShapeComponent.Kind())
	if !ok {
		return Rect{}, false
	}
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return rectAround(t.X, t.Y, s.Width*math.Abs(sx), s.Height*math.Abs(sy)), true
}

func segmentAABBHit(x0, y0, dx, dy float64, r Rect) (bool, float64) {
	tmin := 0.0
	tmax := 1.0

	if dx != 0 {
		invD := 1.0 / dx
		t1 := (r.MinX - x0) * invD
		t2 := (r.MaxX - x0) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	} else if x0 < r.MinX || x0 > r.MaxX {
		return false, 0
	}

	if dy != 0 {
		invD := 1.0 / dy
		t1 := (r.MinY - y0) * invD
		t2 := (r.MaxY - y0) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	} else if y0 < r.MinY || y0 > r.MaxY {
		return false, 0
	}

	if tmax >= tmin {
		return true, tmin
	}
	return false, 0
}

// firstInteractableHit returns the nearest interactable crossed by the
// segment before maxT. Dissolved, held and collected entities are skipped.
func firstInteractableHit(w *ecs.World, skip ecs.Entity, x0, y0, x1, y1, maxT float64) (ecs.Entity, float64, bool) {
	if w == nil {
		return 0, 0, false
	}
	dx := x1 - x0
	dy := y1 - y0
	if dx == 0 && dy == 0 {
		return 0, 0, false
	}

	var best ecs.Entity
	closestT := maxT
	hasHit := false
	ecs.ForEach(w, component.InteractableComponent.Kind(), func(e ecs.Entity, _ *component.Interactable) {
		if e == skip || ecs.Has(w, e, component.CollectComponent.Kind()) {
			return
		}
		if app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok && app.Dissolved {
			return
		}
		r, ok := entityRect(w, e)
		if !ok {
			return
		}
		if hit, t := segmentAABBHit(x0, y0, dx, dy, r); hit && t < closestT {
			closestT = t
			best = e
			hasHit = true
		}
	})
	return best, closestT, hasHit
}

// lookDirection converts facing and pitch (degrees, positive up) into a unit
// vector in screen space.
func lookDirection(facingLeft bool, pitch float64) (float64, float64) {
	rad := pitch * math.Pi / 180
	dx := math.Cos(rad)
	if facingLeft {
		dx = -dx
	}
	return dx, -math.Sin(rad)
}
