package system

import (
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

// DissolveOwner validates and completes dissolve tasks.
type DissolveOwner interface {
	DissolveCurrent(token uint64, obj ecs.Entity) bool
	FinishDissolve(obj ecs.Entity)
}

// DissolveSystem advances timed dissolves one tick at a time. A task whose
// token is no longer current is dropped without effect.
type DissolveSystem struct {
	owner DissolveOwner
}

func NewDissolveSystem(owner DissolveOwner) *DissolveSystem {
	return &DissolveSystem{owner: owner}
}

func (s *DissolveSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.DissolveComponent.Kind(), func(e ecs.Entity, d *component.Dissolve) {
		app, _ := ecs.Get(w, e, component.AppearanceComponent.Kind())
		if s.owner == nil || !s.owner.DissolveCurrent(d.Token, e) {
			ecs.Remove(w, e, component.DissolveComponent.Kind())
			if app != nil {
				app.Alpha = 1
			}
			return
		}

		d.Elapsed += tickDT
		if d.Elapsed < d.Duration {
			if app != nil {
				app.Alpha = 1 - common.Clamp01(d.Elapsed/d.Duration)
			}
			return
		}

		ecs.Remove(w, e, component.DissolveComponent.Kind())
		if app != nil {
			app.Alpha = 1
		}
		s.owner.FinishDissolve(e)
	})
}
