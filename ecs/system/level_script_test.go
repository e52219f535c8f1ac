package system

import (
	"errors"
	"testing"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

type fakePlayer struct{ ids []string }

func (p *fakePlayer) PlayScript(id string) { p.ids = append(p.ids, id) }

type fakeToggle struct{ values []bool }

func (f *fakeToggle) SetWindowEnabled(v bool) { f.values = append(f.values, v) }

func loaderFor(scripts map[string]string) ScriptLoader {
	return func(name string) ([]byte, error) {
		src, ok := scripts[name]
		if !ok {
			return nil, errors.New("not found")
		}
		return []byte(src), nil
	}
}

func TestLevelScriptEvents(t *testing.T) {
	w := ecs.NewWorld()
	player := &fakePlayer{}
	toggle := &fakeToggle{}
	s := NewLevelScriptSystem(LevelScriptDeps{
		Load: loaderFor(map[string]string{"intro.tengo": `
on_start = func(host, level) {
	host.play_script(level + "_intro")
	host.set_window_enabled(false)
	__state.started = true
}
on_gate = func(host, level, id) {
	if id == "door" && __state.started {
		host.set_window_enabled(true)
	}
}
`}),
		Dialogue: player,
		Window:   toggle,
		Layers:   NewWorldLayers(),
	})
	if err := s.Load(w, "attic", "intro.tengo"); err != nil {
		t.Fatalf("load: %v", err)
	}

	s.Start()
	s.End()
	w.Events().Push(ecs.Event{Type: ecs.EventGateUnlocked, Data: "door"})
	s.Update(w)

	if !sameStrings(player.ids, []string{"attic_intro"}) {
		t.Fatalf("expected intro script, got %v", player.ids)
	}
	if len(toggle.values) != 2 || toggle.values[0] || !toggle.values[1] {
		t.Fatalf("expected window disabled then enabled, got %v", toggle.values)
	}
}

func TestLevelScriptErrors(t *testing.T) {
	w := ecs.NewWorld()
	s := NewLevelScriptSystem(LevelScriptDeps{Load: loaderFor(map[string]string{
		"broken.tengo": `on_start = func(host, level) {`,
		"panics.tengo": `on_start = func(host, level) { host.nope() }`,
	})})

	if err := s.Load(w, "a", "missing.tengo"); err == nil {
		t.Fatalf("expected missing script error")
	}
	if err := s.Load(w, "a", "broken.tengo"); err == nil || s.Loaded() {
		t.Fatalf("expected compile error")
	}
	if err := s.Load(w, "a", "panics.tengo"); err != nil {
		t.Fatalf("load: %v", err)
	}
	s.Start()
	if err := s.Load(w, "a", ""); err != nil || s.Loaded() {
		t.Fatalf("expected empty script to unload")
	}
	s.Start()
}

func TestLevelScriptReveal(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	heartRoot := addRoot(t, w, component.LayerHeart)
	a := addGeometry(t, w, heartRoot, 0, 0, 10, 10)
	b := addGeometry(t, w, heartRoot, 20, 0, 10, 10)
	if _, err := layers.Scan(w, heartRoot); err != nil {
		t.Fatalf("scan: %v", err)
	}

	s := NewLevelScriptSystem(LevelScriptDeps{
		Load: loaderFor(map[string]string{"r.tengo": `
on_cut = func(host, level, n) {
	__state.revealed = host.reveal("heart")
	host.reveal("nowhere")
}
`}),
		Layers: layers,
	})
	if err := s.Load(w, "l", "r.tengo"); err != nil {
		t.Fatalf("load: %v", err)
	}
	w.Events().Push(ecs.Event{Type: ecs.EventCutApplied, Data: CutResult{Clipped: 1}})
	s.Update(w)

	for _, e := range []ecs.Entity{a, b} {
		if visible, solid := visibleAndSolid(t, w, e); !visible || !solid {
			t.Fatalf("expected %s revealed, got visible=%v solid=%v", e, visible, solid)
		}
	}
}
