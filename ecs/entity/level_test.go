package entity

import (
	"errors"
	"testing"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/ecs/system"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
)

func testLevel() *levels.Level {
	return &levels.Level{
		Name: "test",
		Next: "after",
		Layers: []levels.Layer{
			{Name: "room", World: "real", Geometry: []levels.Geometry{{X: 50, Y: 100, W: 100, H: 20}, {X: 200, Y: 100, W: 100, H: 20, Color: "#010203"}}},
			{Name: "bloom", World: "heart", Geometry: []levels.Geometry{{X: 125, Y: 90, W: 50, H: 10}}},
			{Name: "twins", World: "entangled", Pairs: []levels.Pair{{
				Heart: levels.Geometry{X: 300, Y: 80, W: 20, H: 20},
				Real:  levels.Geometry{X: 300, Y: 80, W: 20, H: 20},
			}}},
		},
		Entities: []levels.Entity{
			{Type: "player", X: 10, Y: 60},
			{Type: "spawn", X: 10, Y: 60},
			{Type: "death_plane", Props: map[string]interface{}{"y": 400.0}},
			{Type: "window", Props: map[string]interface{}{"width": 80.0, "height": 90.0, "distance": 60.0}},
			{Type: "pickup", X: 40, Y: 80, Props: map[string]interface{}{"gate": "door"}},
			{Type: "gate_zone", X: 150, Y: 80, Props: map[string]interface{}{"id": "door"}},
			{Type: "canvas", X: 280, Y: 80, Props: map[string]interface{}{"preview": "after"}},
		},
	}
}

func testPlayerSpec() *prefabs.PlayerSpec {
	return &prefabs.PlayerSpec{Speed: 100, Gravity: 600, JumpForce: 300, Width: 20, Height: 40, CrouchHeight: 20}
}

func TestLoadLevelToWorld(t *testing.T) {
	w := ecs.NewWorld()
	scene, err := LoadLevelToWorld(w, testLevel(), testPlayerSpec())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if scene.Player == 0 || scene.Camera == 0 || scene.Window == 0 || len(scene.Roots) != 3 {
		t.Fatalf("unexpected scene: %+v", scene)
	}

	layers := system.NewWorldLayers()
	total := 0
	for _, root := range scene.Roots {
		ents, err := layers.Scan(w, root)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		total += len(ents)
	}
	if total != 5 || len(layers.Heart()) != 2 || len(layers.Real()) != 3 || len(layers.Entangled()) != 1 {
		t.Fatalf("unexpected registry: total=%d heart=%d real=%d pairs=%d", total, len(layers.Heart()), len(layers.Real()), len(layers.Entangled()))
	}

	p, ok := ecs.Get(w, scene.Player, component.PlayerComponent.Kind())
	if !ok || p.Speed != 100 || p.Height != 40 || !p.WindowEnabled {
		t.Fatalf("unexpected player: %+v", p)
	}
	win, ok := ecs.Get(w, scene.Window, component.WindowComponent.Kind())
	if !ok || win.Width != 80 || win.Distance != 60 {
		t.Fatalf("unexpected window: %+v", win)
	}
	if !ecs.Has(w, scene.Window, component.MaskGeometryComponent.Kind()) {
		t.Fatalf("window should be mask geometry")
	}

	info, ok := ecs.First(w, component.LevelInfoComponent.Kind())
	if !ok {
		t.Fatalf("expected level info")
	}
	li, _ := ecs.Get(w, info, component.LevelInfoComponent.Kind())
	if li.Name != "test" || li.NextLevel != "after" {
		t.Fatalf("unexpected level info: %+v", li)
	}

	dp, ok := ecs.First(w, component.DeathPlaneComponent.Kind())
	if !ok {
		t.Fatalf("expected death plane")
	}
	if tr, _ := ecs.Get(w, dp, component.TransformComponent.Kind()); tr.Y != 400 {
		t.Fatalf("expected death plane at 400, got %v", tr.Y)
	}
}

func TestGeometryColors(t *testing.T) {
	w := ecs.NewWorld()
	if _, err := LoadLevelToWorld(w, testLevel(), testPlayerSpec()); err != nil {
		t.Fatalf("load: %v", err)
	}
	found := false
	ecs.ForEach(w, component.ShapeComponent.Kind(), func(_ ecs.Entity, s *component.Shape) {
		if s.Color.R == 1 && s.Color.G == 2 && s.Color.B == 3 {
			found = true
		}
	})
	if !found {
		t.Fatalf("expected per-geometry color override")
	}
}

func TestLoadLevelErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*levels.Level)
		want   error
	}{
		{name: "no player", mutate: func(l *levels.Level) { l.Entities = l.Entities[1:] }, want: ErrNoPlayer},
		{name: "bad world", mutate: func(l *levels.Level) { l.Layers[0].World = "dream" }, want: levels.ErrBadWorld},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lvl := testLevel()
			tc.mutate(lvl)
			_, err := LoadLevelToWorld(ecs.NewWorld(), lvl, testPlayerSpec())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	lvl := testLevel()
	lvl.Entities = append(lvl.Entities, levels.Entity{Type: "dragon"})
	if _, err := LoadLevelToWorld(ecs.NewWorld(), lvl, testPlayerSpec()); err == nil {
		t.Fatalf("expected unknown entity type error")
	}
	lvl = testLevel()
	lvl.Entities = append(lvl.Entities, levels.Entity{Type: "gate_zone"})
	if _, err := LoadLevelToWorld(ecs.NewWorld(), lvl, testPlayerSpec()); err == nil {
		t.Fatalf("expected gate zone id error")
	}
}

func TestEmbeddedLevelsBuild(t *testing.T) {
	for _, name := range levels.Names() {
		lvl, err := levels.LoadLevelFromFS(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if _, err := LoadLevelToWorld(ecs.NewWorld(), lvl, testPlayerSpec()); err != nil {
			t.Fatalf("build %s: %v", name, err)
		}
	}
}
