package system

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

var (
	ErrNotRegistered = errors.New("world: entity is not a registered clippable")
	ErrNotLayerRoot  = errors.New("world: entity is not a layer root")
)

// LayerEntry is one (entity, layer) pair of the distance-ordered view.
type LayerEntry struct {
	Entity ecs.Entity
	Layer  component.WorldLayer
	DistSq float64
}

// WorldLayers is the clip-object registry and the world layer index. It is
// the only writer of Clippable.Clipped.
type WorldLayers struct {
	heart      []ecs.Entity
	real       []ecs.Entity
	registered map[ecs.Entity]component.WorldLayer
	// counterpart lookup keyed by entity; neither half owns the other
	entangled map[ecs.Entity]ecs.Entity
	pairs     [][2]ecs.Entity
}

func NewWorldLayers() *WorldLayers {
	return &WorldLayers{
		registered: make(map[ecs.Entity]component.WorldLayer),
		entangled:  make(map[ecs.Entity]ecs.Entity),
	}
}

// Reset forgets every registration. Called when a level is torn down.
func (l *WorldLayers) Reset() {
	if l == nil {
		return
	}
	l.heart = nil
	l.real = nil
	l.pairs = nil
	l.registered = make(map[ecs.Entity]component.WorldLayer)
	l.entangled = make(map[ecs.Entity]ecs.Entity)
}

// Scan configures every piece of geometry under root and returns the
// entities it covers. Re-scanning leaves configured entities untouched.
func (l *WorldLayers) Scan(w *ecs.World, root ecs.Entity) ([]ecs.Entity, error) {
	if l == nil || w == nil {
		return nil, nil
	}
	lr, ok := ecs.Get(w, root, component.LayerRootComponent.Kind())
	if !ok {
		return nil, fmt.Errorf("scan %s: %w", root, ErrNotLayerRoot)
	}

	var out []ecs.Entity
	if lr.Layer == component.LayerEntangled {
		ecs.ForEach2(w, component.EntangledPairComponent.Kind(), component.LayerMemberComponent.Kind(), func(e ecs.Entity, pair *component.EntangledPair, m *component.LayerMember) {
			if m.Root != uint64(root) {
				return
			}
			h, r := ecs.Entity(pair.Heart), ecs.Entity(pair.Real)
			if !ecs.IsAlive(w, h) || !ecs.IsAlive(w, r) {
				log.Printf("world: entangled pair %s has a missing half, skipped", e)
				return
			}
			l.configure(w, h, component.LayerHeart)
			l.configure(w, r, component.LayerReal)
			if _, ok := l.entangled[h]; !ok {
				l.pairs = append(l.pairs, [2]ecs.Entity{h, r})
			}
			l.entangled[h] = r
			l.entangled[r] = h
			out = append(out, h, r)
		})
		return out, nil
	}

	ecs.ForEach2(w, component.ShapeComponent.Kind(), component.LayerMemberComponent.Kind(), func(e ecs.Entity, _ *component.Shape, m *component.LayerMember) {
		if m.Root != uint64(root) {
			return
		}
		l.configure(w, e, lr.Layer)
		out = append(out, e)
	})
	return out, nil
}

func (l *WorldLayers) configure(w *ecs.World, e ecs.Entity, layer component.WorldLayer) {
	if !ecs.Has(w, e, component.ClippableComponent.Kind()) {
		_ = ecs.Add(w, e, component.ClippableComponent.Kind(), &component.Clippable{Layer: layer, Material: layer.String()})
	}
	if !ecs.Has(w, e, component.AppearanceComponent.Kind()) {
		_ = ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Dissolved: layer == component.LayerHeart, Alpha: 1})
	}
	if !ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
		body := &component.PhysicsBody{Static: true, Solid: layer == component.LayerReal}
		if s, ok := ecs.Get(w, e, component.ShapeComponent.Kind()); ok {
			body.Width = s.Width
			body.Height = s.Height
		}
		_ = ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), body)
	}
	if _, ok := l.registered[e]; ok {
		return
	}
	l.registered[e] = layer
	switch layer {
	case component.LayerHeart:
		l.heart = append(l.heart, e)
	default:
		l.real = append(l.real, e)
	}
}

// IsRegistered reports registry membership.
func (l *WorldLayers) IsRegistered(e ecs.Entity) bool {
	if l == nil {
		return false
	}
	_, ok := l.registered[e]
	return ok
}

// Counterpart returns the other half of an entangled pair.
func (l *WorldLayers) Counterpart(e ecs.Entity) (ecs.Entity, bool) {
	if l == nil {
		return 0, false
	}
	c, ok := l.entangled[e]
	return c, ok
}

func (l *WorldLayers) Heart() []ecs.Entity { return append([]ecs.Entity(nil), l.heart...) }
func (l *WorldLayers) Real() []ecs.Entity  { return append([]ecs.Entity(nil), l.real...) }

// Entangled returns (heart, real) pairs.
func (l *WorldLayers) Entangled() [][2]ecs.Entity { return append([][2]ecs.Entity(nil), l.pairs...) }

// Clip hides real geometry or reveals heart geometry and records how to undo
// it. Clipping an already clipped entity is a no-op.
func (l *WorldLayers) Clip(w *ecs.World, e ecs.Entity) error {
	clip, err := l.lookup(w, e, "clip")
	if err != nil {
		return err
	}
	if clip.Clipped {
		return nil
	}

	app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind())
	if !ok {
		app = &component.Appearance{Dissolved: clip.Layer == component.LayerHeart, Alpha: 1}
		_ = ecs.Add(w, e, component.AppearanceComponent.Kind(), app)
	}
	body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())

	record := &component.ClipRecord{Dissolved: app.Dissolved}
	if body != nil {
		record.Solid = body.Solid
	}
	if err := ecs.Add(w, e, component.ClipRecordComponent.Kind(), record); err != nil {
		return fmt.Errorf("clip %s: %w", e, err)
	}

	reveal := clip.Layer == component.LayerHeart
	app.Dissolved = !reveal
	if body != nil {
		body.Solid = reveal
	}
	clip.Clipped = true
	return nil
}

// Revert restores the pre-clip state. Reverting an unclipped entity is a
// successful no-op.
func (l *WorldLayers) Revert(w *ecs.World, e ecs.Entity) error {
	clip, err := l.lookup(w, e, "revert")
	if err != nil {
		return err
	}
	if !clip.Clipped {
		return nil
	}
	if record, ok := ecs.Get(w, e, component.ClipRecordComponent.Kind()); ok {
		if app, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok {
			app.Dissolved = record.Dissolved
		}
		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			body.Solid = record.Solid
		}
		_ = ecs.Remove(w, e, component.ClipRecordComponent.Kind())
	}
	clip.Clipped = false
	return nil
}

// RevertAll reverts every clipped registrant and returns how many changed.
func (l *WorldLayers) RevertAll(w *ecs.World) int {
	if l == nil {
		return 0
	}
	n := 0
	for e := range l.registered {
		clip, ok := ecs.Get(w, e, component.ClippableComponent.Kind())
		if !ok || !clip.Clipped {
			continue
		}
		if err := l.Revert(w, e); err == nil {
			n++
		}
	}
	return n
}

// SyncEntangled clips the other half of any pair where only one half is
// clipped. It runs at the end of a cut so both halves agree.
func (l *WorldLayers) SyncEntangled(w *ecs.World) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, pair := range l.pairs {
		h, hok := ecs.Get(w, pair[0], component.ClippableComponent.Kind())
		r, rok := ecs.Get(w, pair[1], component.ClippableComponent.Kind())
		if !hok || !rok || h.Clipped == r.Clipped {
			continue
		}
		other := pair[0]
		if h.Clipped {
			other = pair[1]
		}
		if err := l.Clip(w, other); err == nil {
			n++
		}
	}
	return n
}

// Ordered returns heart then real entries sorted by squared distance from
// (px, py). Entangled halves appear once per layer. The result is rebuilt on
// every call.
func (l *WorldLayers) Ordered(w *ecs.World, px, py float64) []LayerEntry {
	if l == nil || w == nil {
		return nil
	}
	out := make([]LayerEntry, 0, len(l.heart)+len(l.real))
	add := func(list []ecs.Entity, layer component.WorldLayer) {
		for _, e := range list {
			if !ecs.IsAlive(w, e) {
				continue
			}
			d := math.Inf(1)
			if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
				dx, dy := t.X-px, t.Y-py
				d = dx*dx + dy*dy
			}
			out = append(out, LayerEntry{Entity: e, Layer: layer, DistSq: d})
		}
	}
	add(l.heart, component.LayerHeart)
	add(l.real, component.LayerReal)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistSq < out[j].DistSq })
	return out
}

func (l *WorldLayers) lookup(w *ecs.World, e ecs.Entity, op string) (*component.Clippable, error) {
	if l == nil || !l.IsRegistered(e) || !ecs.IsAlive(w, e) {
		log.Printf("world: %s %s: %v", op, e, ErrNotRegistered)
		return nil, fmt.Errorf("%s %s: %w", op, e, ErrNotRegistered)
	}
	clip, ok := ecs.Get(w, e, component.ClippableComponent.Kind())
	if !ok {
		log.Printf("world: %s %s: missing clippable component", op, e)
		return nil, fmt.Errorf("%s %s: %w", op, e, ErrNotRegistered)
	}
	return clip, nil
}
