package entity

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
	"golang.org/x/image/colornames"
)

var ErrNoPlayer = errors.New("entity: level has no player")

// Scene names the entities the game wires systems to.
type Scene struct {
	Level  *levels.Level
	Player ecs.Entity
	Camera ecs.Entity
	Window ecs.Entity
	// Roots are the layer roots in file order; each must be scanned into the
	// world layer registry before play.
	Roots []ecs.Entity
}

// LoadLevelToWorld builds every layer and entity of lvl into world.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level, player *prefabs.PlayerSpec) (*Scene, error) {
	if world == nil || lvl == nil {
		return nil, fmt.Errorf("entity: load level: nil world or level")
	}
	scene := &Scene{Level: lvl}
	ctx := &buildContext{Level: lvl, Player: player, Scene: scene}

	info := ecs.CreateEntity(world)
	if err := ecs.Add(world, info, component.LevelInfoComponent.Kind(), &component.LevelInfo{
		Name:       lvl.Name,
		Index:      lvl.Index,
		Script:     lvl.Script,
		Dialogue:   lvl.Dialogue,
		Width:      lvl.Width,
		Height:     lvl.Height,
		NextLevel:  lvl.Next,
		Background: lvl.Background,
	}); err != nil {
		return nil, err
	}

	for _, layer := range lvl.Layers {
		root, err := buildLayer(world, layer)
		if err != nil {
			return nil, fmt.Errorf("entity: %s layer %q: %w", lvl.Name, layer.Name, err)
		}
		scene.Roots = append(scene.Roots, root)
	}

	for _, ent := range lvl.Entities {
		if _, err := BuildEntity(world, ent, ctx); err != nil {
			return nil, fmt.Errorf("entity: %s: %w", lvl.Name, err)
		}
	}
	if scene.Player == 0 {
		return nil, fmt.Errorf("entity: %s: %w", lvl.Name, ErrNoPlayer)
	}
	if scene.Camera == 0 {
		if scene.Camera, _ = NewCameraAt(world, 0, 0, prefabs.CameraComponentSpec{}); scene.Camera == 0 {
			return nil, fmt.Errorf("entity: %s: default camera", lvl.Name)
		}
	}

	return scene, nil
}

func worldOf(name string) (component.WorldLayer, bool) {
	switch name {
	case "real":
		return component.LayerReal, true
	case "heart":
		return component.LayerHeart, true
	case "entangled":
		return component.LayerEntangled, true
	default:
		return 0, false
	}
}

func layerColor(layer component.WorldLayer) color.RGBA {
	if layer == component.LayerHeart {
		return colornames.Hotpink
	}
	return colornames.Burlywood
}

func buildLayer(w *ecs.World, layer levels.Layer) (ecs.Entity, error) {
	world, ok := worldOf(layer.World)
	if !ok {
		return 0, levels.ErrBadWorld
	}
	root := ecs.CreateEntity(w)
	if err := ecs.Add(w, root, component.LayerRootComponent.Kind(), &component.LayerRoot{Name: layer.Name, Layer: world}); err != nil {
		return 0, err
	}

	base := parseColor(layer.Color, layerColor(world))
	if world != component.LayerEntangled {
		for _, g := range layer.Geometry {
			if _, err := buildGeometry(w, g, world, base, root); err != nil {
				return 0, err
			}
		}
		return root, nil
	}

	for _, pair := range layer.Pairs {
		heart, err := buildGeometry(w, pair.Heart, component.LayerHeart, parseColor(layer.Color, layerColor(component.LayerHeart)), 0)
		if err != nil {
			return 0, err
		}
		realHalf, err := buildGeometry(w, pair.Real, component.LayerReal, base, 0)
		if err != nil {
			return 0, err
		}
		link := ecs.CreateEntity(w)
		if err := ecs.Add(w, link, component.EntangledPairComponent.Kind(), &component.EntangledPair{Heart: uint64(heart), Real: uint64(realHalf)}); err != nil {
			return 0, err
		}
		if err := ecs.Add(w, link, component.LayerMemberComponent.Kind(), &component.LayerMember{Root: uint64(root)}); err != nil {
			return 0, err
		}
	}
	return root, nil
}

// buildGeometry creates one clippable box. root 0 leaves it out of any
// layer, as entangled halves are reached through their pair.
func buildGeometry(w *ecs.World, g levels.Geometry, world component.WorldLayer, base color.RGBA, root ecs.Entity) (ecs.Entity, error) {
	if g.W <= 0 || g.H <= 0 {
		return 0, fmt.Errorf("geometry at (%v, %v) has no size", g.X, g.Y)
	}
	material := g.Material
	if material == "" {
		material = world.String()
	}
	index := renderLayerReal
	if world == component.LayerHeart {
		index = renderLayerHeart
	}

	e := ecs.CreateEntity(w)
	steps := []func() error{
		func() error { return SetEntityTransform(w, e, g.X, g.Y, 0) },
		func() error {
			return ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Width: g.W, Height: g.H, Color: parseColor(g.Color, base)})
		},
		func() error {
			return ecs.Add(w, e, component.ClippableComponent.Kind(), &component.Clippable{Layer: world, Material: material})
		},
		func() error { return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: index}) },
	}
	if root != 0 {
		steps = append(steps, func() error {
			return ecs.Add(w, e, component.LayerMemberComponent.Kind(), &component.LayerMember{Root: uint64(root)})
		})
	}
	return addAll(w, e, steps...)
}
