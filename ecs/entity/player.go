package entity

import (
	"fmt"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
	"golang.org/x/image/colornames"
)

func NewPlayerAt(w *ecs.World, x, y float64, spec *prefabs.PlayerSpec) (ecs.Entity, error) {
	if spec == nil {
		loaded, err := prefabs.LoadPlayerSpec()
		if err != nil {
			return 0, fmt.Errorf("player: load spec: %w", err)
		}
		spec = loaded
	}

	p := &component.Player{CanMove: true, CanRotate: true, WindowEnabled: true}
	spec.Apply(p)
	width := orDefault(spec.Width, 20)
	height := orDefault(spec.Height, 44)
	if p.Height <= 0 {
		p.Height = height
	}

	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}) },
		func() error { return SetEntityTransform(w, e, x, y, 0) },
		func() error { return ecs.Add(w, e, component.PlayerComponent.Kind(), p) },
		func() error {
			return ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
				Width:  width,
				Height: height,
				Mass:   orDefault(spec.Mass, 1),
				Solid:  true,
			})
		},
		func() error {
			return ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Width: width, Height: height, Color: spec.Color.RGBA8(colornames.Antiquewhite)})
		},
		func() error { return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Alpha: 1}) },
		func() error { return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}) },
		func() error { return ecs.Add(w, e, component.PromptComponent.Kind(), &component.Prompt{}) },
		func() error {
			return ecs.Add(w, e, component.PlayerStateMachineComponent.Kind(), &component.PlayerStateMachine{})
		},
		func() error {
			return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: renderLayerPlayer})
		},
	)
}

func buildPlayer(w *ecs.World, ent levels.Entity, ctx *buildContext) (ecs.Entity, error) {
	var spec *prefabs.PlayerSpec
	if ctx != nil {
		spec = ctx.Player
	}
	e, err := NewPlayerAt(w, ent.X, ent.Y, spec)
	if err == nil && ctx != nil && ctx.Scene != nil {
		ctx.Scene.Player = e
	}
	return e, err
}
