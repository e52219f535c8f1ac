package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeSolid
)

const (
	categorySolid  uint = 1 << 0
	categoryPlayer uint = 1 << 1
)

const (
	physicsDT      = 1.0 / 60.0
	groundProbe    = 1.0
	defaultBoxSize = 32.0
)

var (
	solidFilter   = cp.NewShapeFilter(cp.NO_GROUP, categorySolid, cp.ALL_CATEGORIES)
	passFilter    = cp.NewShapeFilter(cp.NO_GROUP, 0, 0)
	playerFilter  = cp.NewShapeFilter(cp.NO_GROUP, categoryPlayer, categorySolid)
	solidOnlyMask = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categorySolid)
)

// PhysicsSystem mirrors PhysicsBody components into a Chipmunk space. Static
// geometry follows PhysicsBody.Solid; the player is a rotation-locked
// dynamic box whose velocity the controller owns.
type PhysicsSystem struct {
	space *cp.Space

	entities map[ecs.Entity]*bodyInfo
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	ctype  cp.CollisionType
	static bool
	solid  bool
	width  float64
	height float64
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		space:    newSpace(),
		entities: make(map[ecs.Entity]*bodyInfo),
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Reset drops every body. Called between levels.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	ps.space = newSpace()
	ps.entities = make(map[ecs.Entity]*bodyInfo)
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.Reset()
	}

	ps.syncEntities(w)
	ps.syncFilters(w)
	ps.space.Step(physicsDT)
	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if _, ok := ps.entities[e]; ok {
			return
		}
		isPlayer := ecs.Has(w, e, component.PlayerTagComponent.Kind())
		info := ps.createBodyInfo(transform, bodyComp, isPlayer)
		if info == nil {
			return
		}
		ps.entities[e] = info
		bodyComp.Body = info.body
		bodyComp.Shape = info.shape
	})
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		ps.removeInfo(info)
		delete(ps.entities, e)
	}
}

func (ps *PhysicsSystem) removeInfo(info *bodyInfo) {
	if info == nil {
		return
	}
	if info.shape != nil {
		ps.space.RemoveShape(info.shape)
	}
	if !info.static && info.body != nil {
		ps.space.RemoveBody(info.body)
	}
}

func (ps *PhysicsSystem) createBodyInfo(transform *component.Transform, bodyComp *component.PhysicsBody, isPlayer bool) *bodyInfo {
	width := bodyComp.Width
	height := bodyComp.Height
	if width <= 0 || height <= 0 {
		width = defaultBoxSize
		height = defaultBoxSize
	}

	info := &bodyInfo{static: bodyComp.Static, solid: bodyComp.Solid, width: width, height: height}

	if bodyComp.Static {
		bb := cp.BB{L: transform.X - width/2, B: transform.Y - height/2, R: transform.X + width/2, T: transform.Y + height/2}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(0)
		shape.SetCollisionType(collisionTypeSolid)
		shape.SetFilter(filterFor(bodyComp.Solid))
		ps.space.AddShape(shape)
		info.ctype = collisionTypeSolid
		info.body = ps.space.StaticBody
		info.shape = shape
		return info
	}

	mass := bodyComp.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.INFINITY)
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	// the controller integrates its own gravity
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, 1, dt)
	})
	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(0)
	info.ctype = collisionTypeSolid
	if isPlayer {
		info.ctype = collisionTypePlayer
		shape.SetFilter(playerFilter)
	} else {
		shape.SetFilter(filterFor(bodyComp.Solid))
	}
	shape.SetCollisionType(info.ctype)
	ps.space.AddBody(body)
	ps.space.AddShape(shape)
	info.body = body
	info.shape = shape
	return info
}

func filterFor(solid bool) cp.ShapeFilter {
	if solid {
		return solidFilter
	}
	return passFilter
}

// syncFilters applies clip results: non-solid geometry collides with nothing
// and is invisible to probes.
func (ps *PhysicsSystem) syncFilters(w *ecs.World) {
	for e, info := range ps.entities {
		if !info.static {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok || bodyComp.Solid == info.solid {
			continue
		}
		info.solid = bodyComp.Solid
		info.shape.SetFilter(filterFor(info.solid))
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.static || info.body == nil {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
	}
}

func (ps *PhysicsSystem) info(w *ecs.World, e ecs.Entity) *bodyInfo {
	if ps == nil || w == nil {
		return nil
	}
	info := ps.entities[e]
	if info == nil {
		ps.syncEntities(w)
		info = ps.entities[e]
	}
	return info
}

// IsGrounded probes a thin line just under e's feet.
func (ps *PhysicsSystem) IsGrounded(w *ecs.World, e ecs.Entity) bool {
	info := ps.info(w, e)
	if info == nil || info.body == nil {
		return false
	}
	pos := info.body.Position()
	y := pos.Y + info.height/2 + groundProbe
	half := info.width * 0.45
	hit := ps.space.SegmentQueryFirst(cp.Vector{X: pos.X - half, Y: y}, cp.Vector{X: pos.X + half, Y: y}, 0, solidOnlyMask)
	return hit.Shape != nil
}

// Obstructed reports solid geometry within clearance above e's head.
func (ps *PhysicsSystem) Obstructed(w *ecs.World, e ecs.Entity, clearance float64) bool {
	info := ps.info(w, e)
	if info == nil || info.body == nil || clearance <= 0 {
		return false
	}
	pos := info.body.Position()
	top := pos.Y - info.height/2
	radius := info.width * 0.45
	start := cp.Vector{X: pos.X, Y: top - 0.5}
	end := cp.Vector{X: pos.X, Y: top - clearance}
	hit := ps.space.SegmentQueryFirst(start, end, radius, solidOnlyMask)
	return hit.Shape != nil
}

// SolidHit returns the fraction along the segment of the first solid hit.
func (ps *PhysicsSystem) SolidHit(x0, y0, x1, y1 float64) (float64, bool) {
	if ps == nil || ps.space == nil {
		return 1, false
	}
	hit := ps.space.SegmentQueryFirst(cp.Vector{X: x0, Y: y0}, cp.Vector{X: x1, Y: y1}, 0, solidOnlyMask)
	if hit.Shape == nil {
		return 1, false
	}
	return hit.Alpha, true
}

// LookAt returns the interactable e is looking at within reach. Solid
// geometry occludes the ray.
func (ps *PhysicsSystem) LookAt(w *ecs.World, e ecs.Entity, dirX, dirY, reach float64) (ecs.Entity, bool) {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || reach <= 0 {
		return 0, false
	}
	x1, y1 := t.X+dirX*reach, t.Y+dirY*reach
	maxT, _ := ps.SolidHit(t.X, t.Y, x1, y1)
	var held ecs.Entity
	if p, ok := ecs.Get(w, e, component.PlayerComponent.Kind()); ok {
		held = ecs.Entity(p.Held)
	}
	target, _, hit := firstInteractableHit(w, held, t.X, t.Y, x1, y1, maxT)
	return target, hit
}

// SetHeight resizes e's box and keeps its feet planted.
func (ps *PhysicsSystem) SetHeight(w *ecs.World, e ecs.Entity, height float64) {
	info := ps.info(w, e)
	if info == nil || info.static || height <= 0 || math.Abs(height-info.height) < 1e-9 {
		return
	}
	pos := info.body.Position()
	feet := pos.Y + info.height/2
	filter := info.shape.Filter

	ps.space.RemoveShape(info.shape)
	shape := cp.NewBox(info.body, info.width, height, 0)
	shape.SetFriction(0)
	shape.SetCollisionType(info.ctype)
	shape.SetFilter(filter)
	ps.space.AddShape(shape)
	info.shape = shape
	info.height = height
	info.body.SetPosition(cp.Vector{X: pos.X, Y: feet - height/2})

	if bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		bodyComp.Shape = shape
		bodyComp.Height = height
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		t.Y = feet - height/2
	}
}

// Teleport moves a dynamic body and clears its velocity.
func (ps *PhysicsSystem) Teleport(w *ecs.World, e ecs.Entity, x, y float64) {
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		t.X = x
		t.Y = y
	}
	info := ps.info(w, e)
	if info == nil || info.static {
		return
	}
	info.body.SetPosition(cp.Vector{X: x, Y: y})
	info.body.SetVelocity(0, 0)
}
