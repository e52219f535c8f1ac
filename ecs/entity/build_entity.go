package entity

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
	"golang.org/x/image/colornames"
)

// Render order, back to front.
const (
	renderLayerReal = iota
	renderLayerHeart
	renderLayerProps
	renderLayerPlayer
	renderLayerWindow
)

type buildContext struct {
	Level  *levels.Level
	Player *prefabs.PlayerSpec
	Scene  *Scene
}

type entityBuildFn func(w *ecs.World, ent levels.Entity, ctx *buildContext) (ecs.Entity, error)

var entityRegistry = map[string]entityBuildFn{
	"player":       buildPlayer,
	"camera":       buildCamera,
	"window":       buildWindow,
	"spawn":        buildSpawn,
	"death_plane":  buildDeathPlane,
	"interactable": buildInteractable,
	"pickup":       buildPickup,
	"canvas":       buildCanvas,
	"gate_zone":    buildGateZone,
}

// BuildEntity creates one level entity from its type and props.
func BuildEntity(w *ecs.World, ent levels.Entity, ctx *buildContext) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	kind := strings.ToLower(strings.TrimSpace(ent.Type))
	builder, ok := entityRegistry[kind]
	if !ok {
		return 0, fmt.Errorf("build entity: no builder for %q", ent.Type)
	}
	e, err := builder(w, ent, ctx)
	if err != nil {
		return 0, fmt.Errorf("build entity: %s: %w", kind, err)
	}
	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

// addAll adds each step in order and destroys e on the first failure.
func addAll(w *ecs.World, e ecs.Entity, steps ...func() error) (ecs.Entity, error) {
	for _, step := range steps {
		if err := step(); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}
	return e, nil
}

func buildSpawn(w *ecs.World, ent levels.Entity, _ *buildContext) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, ent.Y, 0) },
		func() error { return ecs.Add(w, e, component.SpawnPointComponent.Kind(), &component.SpawnPoint{}) },
	)
}

func buildDeathPlane(w *ecs.World, ent levels.Entity, _ *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.DeathPlaneComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	y := ent.Y
	if spec.Y != 0 {
		y = spec.Y
	}
	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, y, 0) },
		func() error { return ecs.Add(w, e, component.DeathPlaneComponent.Kind(), &component.DeathPlane{}) },
	)
}

func buildWindow(w *ecs.World, ent levels.Entity, ctx *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.WindowComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	if spec.Width <= 0 {
		spec.Width = 120
	}
	if spec.Height <= 0 {
		spec.Height = 160
	}
	if spec.Distance == 0 {
		spec.Distance = 110
	}
	e := ecs.CreateEntity(w)
	e, err = addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, ent.Y, 0) },
		func() error {
			return ecs.Add(w, e, component.WindowComponent.Kind(), &component.Window{Width: spec.Width, Height: spec.Height, Distance: spec.Distance})
		},
		func() error { return ecs.Add(w, e, component.MaskGeometryComponent.Kind(), &component.MaskGeometry{}) },
		func() error {
			return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: renderLayerWindow})
		},
	)
	if err == nil && ctx != nil && ctx.Scene != nil {
		ctx.Scene.Window = e
	}
	return e, err
}

func buildInteractable(w *ecs.World, ent levels.Entity, _ *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.InteractableComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, ent.Y, 0) },
		func() error {
			return ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Width: 24, Height: 24, Color: colornames.Lightsteelblue})
		},
		func() error {
			return ecs.Add(w, e, component.InteractableComponent.Kind(), &component.Interactable{Prompt: spec.Prompt, FlavorText: spec.FlavorText})
		},
		func() error { return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Alpha: 1}) },
		func() error {
			return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: renderLayerProps})
		},
	)
}

func buildPickup(w *ecs.World, ent levels.Entity, _ *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PickupComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	width, height := orDefault(spec.Width, 12), orDefault(spec.Height, 12)
	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, ent.Y, 0) },
		func() error {
			return ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Width: width, Height: height, Color: spec.Color.RGBA8(colornames.Gold)})
		},
		func() error {
			return ecs.Add(w, e, component.PickupableComponent.Kind(), &component.Pickupable{
				Dissolves: spec.Dissolves,
				Gate:      spec.Gate,
				OriginX:   ent.X,
				OriginY:   ent.Y,
			})
		},
		func() error {
			return ecs.Add(w, e, component.InteractableComponent.Kind(), &component.Interactable{FlavorText: spec.FlavorText})
		},
		func() error { return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Alpha: 1}) },
		func() error {
			return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: renderLayerProps})
		},
	)
}

func buildCanvas(w *ecs.World, ent levels.Entity, _ *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CanvasComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, ent.Y, 0) },
		func() error {
			return ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{
				Width:  orDefault(spec.Width, 30),
				Height: orDefault(spec.Height, 40),
				Color:  spec.Color.RGBA8(colornames.Ivory),
			})
		},
		func() error {
			return ecs.Add(w, e, component.CanvasComponent.Kind(), &component.Canvas{Preview: spec.Preview, NextLevel: spec.NextLevel})
		},
		func() error { return ecs.Add(w, e, component.InteractableComponent.Kind(), &component.Interactable{}) },
		func() error { return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Alpha: 1}) },
		func() error {
			return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: renderLayerProps})
		},
	)
}

func buildGateZone(w *ecs.World, ent levels.Entity, _ *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.GateZoneComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	if spec.ID == "" {
		return 0, fmt.Errorf("gate zone at (%v, %v) has no id", ent.X, ent.Y)
	}
	width, height := orDefault(spec.Width, 32), orDefault(spec.Height, 32)
	e := ecs.CreateEntity(w)
	return addAll(w, e,
		func() error { return SetEntityTransform(w, e, ent.X, ent.Y, 0) },
		func() error {
			return ecs.Add(w, e, component.GateZoneComponent.Kind(), &component.GateZone{ID: spec.ID, Width: width, Height: height})
		},
	)
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func parseColor(hex string, fallback color.RGBA) color.RGBA {
	return common.HexOr(hex, fallback)
}
