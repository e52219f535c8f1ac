package levels

import (
	"errors"
	"testing"
)

func TestEmbeddedLevelsLoad(t *testing.T) {
	names := Names()
	if len(names) < 2 || names[0] != "attic" || names[1] != "garden" {
		t.Fatalf("unexpected level order: %v", names)
	}
	dialogue, err := LoadDialogue()
	if err != nil {
		t.Fatalf("load dialogue: %v", err)
	}
	for _, name := range names {
		lvl, err := LoadLevelFromFS(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if lvl.Dialogue != "" {
			if _, ok := dialogue[lvl.Dialogue]; !ok {
				t.Fatalf("%s: dialogue %q missing", name, lvl.Dialogue)
			}
		}
		if lvl.Script != "" {
			if _, err := LoadScript(lvl.Script); err != nil {
				t.Fatalf("%s: script %q: %v", name, lvl.Script, err)
			}
		}
	}
}

func TestLoadLevelNames(t *testing.T) {
	for _, name := range []string{"attic", "attic.json", "levels/attic.json"} {
		lvl, err := LoadLevelFromFS(name)
		if err != nil {
			t.Fatalf("load %q: %v", name, err)
		}
		if lvl.Name != "attic" {
			t.Fatalf("expected attic, got %q", lvl.Name)
		}
	}
	if _, err := LoadLevelFromFS("basement"); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestNextAfter(t *testing.T) {
	if next, ok := NextAfter("attic"); !ok || next != "garden" {
		t.Fatalf("expected garden after attic, got %q %v", next, ok)
	}
	if next, ok := NextAfter("garden"); ok {
		t.Fatalf("expected garden to be last, got %q", next)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		current, id, want string
	}{
		{current: "attic", id: "", want: "garden"},
		{current: "garden", id: "", want: "attic"},
		{current: "garden", id: "attic.json", want: "attic"},
	}
	for _, tc := range cases {
		if got := Resolve(tc.current, tc.id); got != tc.want {
			t.Fatalf("Resolve(%q, %q) = %q, want %q", tc.current, tc.id, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		layer Layer
		ok    bool
	}{
		{name: "real geometry", layer: Layer{World: "real", Geometry: []Geometry{{W: 1, H: 1}}}, ok: true},
		{name: "entangled pairs", layer: Layer{World: "entangled", Pairs: []Pair{{}}}, ok: true},
		{name: "unknown world", layer: Layer{World: "dream"}},
		{name: "pairs on heart", layer: Layer{World: "heart", Pairs: []Pair{{}}}},
		{name: "geometry on entangled", layer: Layer{World: "entangled", Geometry: []Geometry{{}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lvl := Level{Name: "x", Layers: []Layer{tc.layer}}
			err := lvl.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrBadWorld) {
				t.Fatalf("expected ErrBadWorld, got %v", err)
			}
		})
	}
}

func TestCleanScriptPath(t *testing.T) {
	for _, in := range []string{"attic.tengo", "scripts/attic.tengo", "levels/scripts/attic.tengo"} {
		if got := cleanScriptPath(in); got != "scripts/attic.tengo" {
			t.Fatalf("%q: got %q", in, got)
		}
	}
}
