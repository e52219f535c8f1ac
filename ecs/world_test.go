package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/heartwindow/ecs/component"
)

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("second DestroyEntity should return false")
				}
			}
		})
	}
}

func TestRecycledIDGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected id reuse, got %v and %v", old, fresh)
	}
	if fresh == old {
		t.Fatalf("expected a new generation for recycled id")
	}
	if Has(w, fresh, h.Kind()) {
		t.Fatalf("recycled entity must not inherit components")
	}
	if _, ok := Get(w, old, h.Kind()); ok {
		t.Fatalf("stale handle must not resolve")
	}
}

func TestSparseSetRemoveIgnoresStaleGeneration(t *testing.T) {
	var s SparseSet
	old := makeEntity(3, 1)
	fresh := makeEntity(3, 2)
	s.Set(fresh, "fresh")

	if s.Remove(old) {
		t.Fatalf("stale handle removed %v", fresh)
	}
	if got := s.Get(fresh); got != "fresh" || s.Len() != 1 {
		t.Fatalf("recycled entity lost its value: %v len=%d", got, s.Len())
	}
	if !s.Remove(fresh) || s.Has(fresh) {
		t.Fatalf("live handle should remove")
	}
}

func TestAddRejectsDeadEntityAndNil(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[string]()
	e := CreateEntity(w)

	if err := Add[string](w, e, h.Kind(), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	DestroyEntity(w, e)
	if err := Add(w, e, h.Kind(), stringPtr("x")); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	var zero component.ComponentKind[string]
	if err := Add(w, CreateEntity(w), zero, stringPtr("x")); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
}

func TestComponentsAndRemove(t *testing.T) {
	w := NewWorld()
	hi := component.NewComponent[int]()
	hs := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "int_on_e1",
			setup: func() error { return Add(w, e1, hi.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, hi.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
				if Has(w, e2, hi.Kind()) {
					t.Fatalf("e2 should not have int")
				}
			},
			teardown: func() bool { return Remove(w, e1, hi.Kind()) },
		},
		{
			name: "string_on_both",
			setup: func() error {
				if err := Add(w, e1, hs.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, hs.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, hs.Kind()) || !Has(w, e2, hs.Kind()) {
					t.Fatalf("expected both entities to have string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, hs.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}

	// pointer semantics: mutation through Get is visible on next Get
	if err := Add(w, e2, hi.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}
	v, _ := Get(w, e2, hi.Kind())
	*v = 7
	if again, _ := Get(w, e2, hi.Kind()); *again != 7 {
		t.Fatalf("expected stored pointer to be shared, got %d", *again)
	}
}

func TestQueryIntersectsAndSorts(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[int]()

	ents := make([]Entity, 5)
	for i := range ents {
		ents[i] = CreateEntity(w)
	}
	// add in reverse so dense order differs from id order
	for i := len(ents) - 1; i >= 0; i-- {
		_ = Add(w, ents[i], ka, intPtr(i))
		if i%2 == 0 {
			_ = Add(w, ents[i], kb, intPtr(i))
		}
	}

	res := Query(w, ka, kb)
	if len(res) != 3 {
		t.Fatalf("expected 3 entities, got %v", res)
	}
	for i := 1; i < len(res); i++ {
		if res[i-1].id() >= res[i].id() {
			t.Fatalf("expected ascending ids, got %v", res)
		}
	}

	if first, ok := First(w, kb); !ok || first != ents[0] {
		t.Fatalf("expected first=%v, got %v ok=%v", ents[0], first, ok)
	}

	missing := component.NewComponentKind[int]()
	if got := Query(w, ka, missing); len(got) != 0 {
		t.Fatalf("expected empty when store missing, got %v", got)
	}
}

func TestForEachVariants(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "foreach_visits_holders_only",
			run: func(t *testing.T) {
				w := NewWorld()
				k := component.NewComponentKind[int]()
				e1, e2, e3 := CreateEntity(w), CreateEntity(w), CreateEntity(w)
				_ = Add(w, e1, k, intPtr(1))
				_ = Add(w, e3, k, intPtr(3))

				var seen []Entity
				ForEach(w, k, func(e Entity, _ *int) { seen = append(seen, e) })
				if len(seen) != 2 || seen[0] != e1 || seen[1] != e3 {
					t.Fatalf("expected [e1 e3], got %v (e2=%v)", seen, e2)
				}
			},
		},
		{
			name: "foreach_tolerates_destroy_during_iteration",
			run: func(t *testing.T) {
				w := NewWorld()
				k := component.NewComponentKind[int]()
				for i := 0; i < 4; i++ {
					_ = Add(w, CreateEntity(w), k, intPtr(i))
				}
				count := 0
				ForEach(w, k, func(e Entity, _ *int) {
					count++
					DestroyEntity(w, e)
				})
				if count != 4 || len(Entities(w)) != 0 {
					t.Fatalf("expected 4 visits and empty world, got %d / %d", count, len(Entities(w)))
				}
			},
		},
		{
			name: "foreach4_intersection_ignores_dead",
			run: func(t *testing.T) {
				w := NewWorld()
				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()
				kd := component.NewComponentKind[int]()
				live, dead := CreateEntity(w), CreateEntity(w)
				for _, e := range []Entity{live, dead} {
					_ = Add(w, e, ka, intPtr(1))
					_ = Add(w, e, kb, intPtr(2))
					_ = Add(w, e, kc, intPtr(3))
					_ = Add(w, e, kd, intPtr(4))
				}
				DestroyEntity(w, dead)

				var res []Entity
				ForEach4(w, ka, kb, kc, kd, func(e Entity, _, _, _, _ *int) { res = append(res, e) })
				if len(res) != 1 || res[0] != live {
					t.Fatalf("expected only live entity, got %v", res)
				}

				res = res[:0]
				ForEach3(w, ka, kb, kc, func(e Entity, _, _, _ *int) { res = append(res, e) })
				if len(res) != 1 {
					t.Fatalf("expected one result from ForEach3, got %v", res)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestEventQueueDrain(t *testing.T) {
	w := NewWorld()
	w.Events().Push(Event{Type: EventCutApplied, Data: 3})
	w.Events().Push(Event{Type: EventStateChanged, Data: StateChange{From: "", To: "aiming"}})
	if w.Events().Len() != 2 {
		t.Fatalf("expected 2 pending events")
	}
	got := w.Events().Drain()
	if len(got) != 2 || got[0].Type != EventCutApplied {
		t.Fatalf("unexpected drain result %v", got)
	}
	if w.Events().Drain() != nil {
		t.Fatalf("expected empty queue after drain")
	}
}

type countingSystem struct {
	calls *[]string
	name  string
}

func (s countingSystem) Update(*World) { *s.calls = append(*s.calls, s.name) }

func TestSchedulerRunsInOrder(t *testing.T) {
	var calls []string
	s := NewScheduler(countingSystem{&calls, "input"}, nil, countingSystem{&calls, "physics"})
	if len(s.Systems()) != 2 {
		t.Fatalf("expected nil system to be skipped, got %d", len(s.Systems()))
	}
	s.Update(NewWorld())
	s.Update(nil)
	if len(calls) != 2 || calls[0] != "input" || calls[1] != "physics" {
		t.Fatalf("unexpected call order %v", calls)
	}
}
