package system

import (
	"errors"
	"testing"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

func addRoot(t *testing.T, w *ecs.World, layer component.WorldLayer) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.LayerRootComponent.Kind(), &component.LayerRoot{Name: layer.String(), Layer: layer}); err != nil {
		t.Fatalf("add layer root: %v", err)
	}
	return e
}

func addGeometry(t *testing.T, w *ecs.World, root ecs.Entity, x, y, width, height float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{Width: width, Height: height}); err != nil {
		t.Fatalf("add shape: %v", err)
	}
	if root != 0 {
		if err := ecs.Add(w, e, component.LayerMemberComponent.Kind(), &component.LayerMember{Root: uint64(root)}); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}
	return e
}

func addPair(t *testing.T, w *ecs.World, root, heart, real ecs.Entity) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.EntangledPairComponent.Kind(), &component.EntangledPair{Heart: uint64(heart), Real: uint64(real)}); err != nil {
		t.Fatalf("add pair: %v", err)
	}
	if err := ecs.Add(w, e, component.LayerMemberComponent.Kind(), &component.LayerMember{Root: uint64(root)}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return e
}

func visibleAndSolid(t *testing.T, w *ecs.World, e ecs.Entity) (bool, bool) {
	t.Helper()
	app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind())
	if !ok {
		t.Fatalf("expected appearance on %s", e)
	}
	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		t.Fatalf("expected physics body on %s", e)
	}
	return !app.Dissolved, body.Solid
}

func TestScanConfiguresLayers(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	realRoot := addRoot(t, w, component.LayerReal)
	heartRoot := addRoot(t, w, component.LayerHeart)
	wall := addGeometry(t, w, realRoot, 0, 0, 10, 10)
	bridge := addGeometry(t, w, heartRoot, 20, 0, 10, 10)

	got, err := layers.Scan(w, realRoot)
	if err != nil || len(got) != 1 || got[0] != wall {
		t.Fatalf("scan real = %v, %v", got, err)
	}
	if _, err := layers.Scan(w, heartRoot); err != nil {
		t.Fatalf("scan heart: %v", err)
	}

	if vis, solid := visibleAndSolid(t, w, wall); !vis || !solid {
		t.Fatalf("real geometry should be visible and solid, got %v %v", vis, solid)
	}
	if vis, solid := visibleAndSolid(t, w, bridge); vis || solid {
		t.Fatalf("heart geometry should start dissolved and non-solid, got %v %v", vis, solid)
	}

	// re-scan is idempotent
	if _, err := layers.Scan(w, realRoot); err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(layers.Real()) != 1 || len(layers.Heart()) != 1 {
		t.Fatalf("expected one entry per layer, got real=%d heart=%d", len(layers.Real()), len(layers.Heart()))
	}
}

func TestScanEmptyRootAndBadRoot(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	root := addRoot(t, w, component.LayerReal)
	got, err := layers.Scan(w, root)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty root: got %v, %v", got, err)
	}

	notRoot := ecs.CreateEntity(w)
	if _, err := layers.Scan(w, notRoot); !errors.Is(err, ErrNotLayerRoot) {
		t.Fatalf("expected ErrNotLayerRoot, got %v", err)
	}
}

func TestClipRevertRoundTrip(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	realRoot := addRoot(t, w, component.LayerReal)
	heartRoot := addRoot(t, w, component.LayerHeart)
	wall := addGeometry(t, w, realRoot, 0, 0, 10, 10)
	bridge := addGeometry(t, w, heartRoot, 0, 0, 10, 10)
	layers.Scan(w, realRoot)
	layers.Scan(w, heartRoot)

	tests := []struct {
		name          string
		e             ecs.Entity
		clippedVis    bool
		clippedSolid  bool
		originalVis   bool
		originalSolid bool
	}{
		{name: "real hides", e: wall, clippedVis: false, clippedSolid: false, originalVis: true, originalSolid: true},
		{name: "heart reveals", e: bridge, clippedVis: true, clippedSolid: true, originalVis: false, originalSolid: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := layers.Clip(w, tc.e); err != nil {
				t.Fatalf("clip: %v", err)
			}
			vis, solid := visibleAndSolid(t, w, tc.e)
			if vis != tc.clippedVis || solid != tc.clippedSolid {
				t.Fatalf("after clip got vis=%v solid=%v", vis, solid)
			}
			// double clip must not overwrite the saved record
			if err := layers.Clip(w, tc.e); err != nil {
				t.Fatalf("second clip: %v", err)
			}
			if err := layers.Revert(w, tc.e); err != nil {
				t.Fatalf("revert: %v", err)
			}
			vis, solid = visibleAndSolid(t, w, tc.e)
			if vis != tc.originalVis || solid != tc.originalSolid {
				t.Fatalf("after revert got vis=%v solid=%v", vis, solid)
			}
			// revert on an unclipped entity is a no-op
			if err := layers.Revert(w, tc.e); err != nil {
				t.Fatalf("second revert: %v", err)
			}
			if ecs.Has(w, tc.e, component.ClipRecordComponent.Kind()) {
				t.Fatalf("clip record should be removed on revert")
			}
		})
	}
}

func TestClipUnregistered(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	stray := addGeometry(t, w, 0, 0, 0, 1, 1)
	if err := layers.Clip(w, stray); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if err := layers.Revert(w, stray); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered on revert, got %v", err)
	}
	if ecs.Has(w, stray, component.AppearanceComponent.Kind()) {
		t.Fatalf("unregistered entity should be left untouched")
	}
}

func TestRevertAll(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	realRoot := addRoot(t, w, component.LayerReal)
	heartRoot := addRoot(t, w, component.LayerHeart)
	a := addGeometry(t, w, realRoot, 0, 0, 1, 1)
	b := addGeometry(t, w, realRoot, 5, 0, 1, 1)
	c := addGeometry(t, w, heartRoot, 9, 0, 1, 1)
	layers.Scan(w, realRoot)
	layers.Scan(w, heartRoot)
	for _, e := range []ecs.Entity{a, c} {
		if err := layers.Clip(w, e); err != nil {
			t.Fatalf("clip %s: %v", e, err)
		}
	}

	if n := layers.RevertAll(w); n != 2 {
		t.Fatalf("expected 2 reverted, got %d", n)
	}
	for _, e := range []ecs.Entity{a, b, c} {
		clip, _ := ecs.Get(w, e, component.ClippableComponent.Kind())
		if clip.Clipped {
			t.Fatalf("%s still clipped", e)
		}
	}
	if n := layers.RevertAll(w); n != 0 {
		t.Fatalf("second RevertAll should change nothing, got %d", n)
	}
}

func TestEntangledPairSync(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	root := addRoot(t, w, component.LayerEntangled)
	heart := addGeometry(t, w, 0, 0, 0, 4, 4)
	real := addGeometry(t, w, 0, 0, 0, 4, 4)
	addPair(t, w, root, heart, real)

	got, err := layers.Scan(w, root)
	if err != nil || len(got) != 2 {
		t.Fatalf("scan entangled = %v, %v", got, err)
	}
	if c, ok := layers.Counterpart(heart); !ok || c != real {
		t.Fatalf("counterpart(heart) = %v, %v", c, ok)
	}
	if c, ok := layers.Counterpart(real); !ok || c != heart {
		t.Fatalf("counterpart(real) = %v, %v", c, ok)
	}

	if err := layers.Clip(w, real); err != nil {
		t.Fatalf("clip: %v", err)
	}
	if n := layers.SyncEntangled(w); n != 1 {
		t.Fatalf("expected heart half synced, got %d", n)
	}
	if vis, solid := visibleAndSolid(t, w, heart); !vis || !solid {
		t.Fatalf("heart half should be revealed")
	}
	if vis, _ := visibleAndSolid(t, w, real); vis {
		t.Fatalf("real half should be hidden")
	}
	if n := layers.SyncEntangled(w); n != 0 {
		t.Fatalf("pair already agrees, got %d", n)
	}
}

func TestOrderedByDistance(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	realRoot := addRoot(t, w, component.LayerReal)
	heartRoot := addRoot(t, w, component.LayerHeart)
	far := addGeometry(t, w, realRoot, 100, 0, 1, 1)
	near := addGeometry(t, w, heartRoot, 3, 4, 1, 1)
	mid := addGeometry(t, w, realRoot, 0, 10, 1, 1)
	layers.Scan(w, realRoot)
	layers.Scan(w, heartRoot)

	got := layers.Ordered(w, 0, 0)
	want := []ecs.Entity{near, mid, far}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Entity != want[i] {
			t.Fatalf("entry %d = %s, want %s", i, got[i].Entity, want[i])
		}
	}
	if got[0].DistSq != 25 || got[0].Layer != component.LayerHeart {
		t.Fatalf("unexpected first entry %+v", got[0])
	}

	ecs.DestroyEntity(w, mid)
	if got := layers.Ordered(w, 0, 0); len(got) != 2 {
		t.Fatalf("destroyed entities should be skipped, got %d", len(got))
	}
}

func TestEntangledPairRevertsTogether(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	root := addRoot(t, w, component.LayerEntangled)
	heart := addGeometry(t, w, 0, 0, 0, 4, 4)
	real := addGeometry(t, w, 0, 0, 0, 4, 4)
	addPair(t, w, root, heart, real)
	if _, err := layers.Scan(w, root); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if err := layers.Clip(w, real); err != nil {
		t.Fatalf("clip: %v", err)
	}
	layers.SyncEntangled(w)

	if n := layers.RevertAll(w); n != 2 {
		t.Fatalf("expected both halves reverted, got %d", n)
	}
	for _, e := range []ecs.Entity{heart, real} {
		clip, _ := ecs.Get(w, e, component.ClippableComponent.Kind())
		if clip.Clipped {
			t.Fatalf("%s still clipped after revert", e)
		}
	}
	if vis, _ := visibleAndSolid(t, w, heart); vis {
		t.Fatalf("heart half should be hidden again")
	}
	if vis, solid := visibleAndSolid(t, w, real); !vis || !solid {
		t.Fatalf("real half should be restored")
	}
	if n := layers.SyncEntangled(w); n != 0 {
		t.Fatalf("reverted pair should agree, got %d", n)
	}
}

func TestOrderedFollowsPlayer(t *testing.T) {
	w := ecs.NewWorld()
	layers := NewWorldLayers()
	realRoot := addRoot(t, w, component.LayerReal)
	heartRoot := addRoot(t, w, component.LayerHeart)
	left := addGeometry(t, w, realRoot, 0, 0, 1, 1)
	right := addGeometry(t, w, heartRoot, 900, 0, 1, 1)
	layers.Scan(w, realRoot)
	layers.Scan(w, heartRoot)

	cases := []struct {
		name   string
		px, py float64
		want   []ecs.Entity
	}{
		{name: "at left", px: 0, py: 0, want: []ecs.Entity{left, right}},
		{name: "at right", px: 900, py: 0, want: []ecs.Entity{right, left}},
		{name: "back left", px: 10, py: 0, want: []ecs.Entity{left, right}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := layers.Ordered(w, tc.px, tc.py)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d entries, got %d", len(tc.want), len(got))
			}
			for i := range tc.want {
				if got[i].Entity != tc.want[i] {
					t.Fatalf("entry %d = %s, want %s", i, got[i].Entity, tc.want[i])
				}
			}
		})
	}
}
