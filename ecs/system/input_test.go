package system

import (
	"testing"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

type scriptedSource struct {
	frames []component.Input
}

func (s *scriptedSource) Poll() component.Input {
	if len(s.frames) == 0 {
		return component.Input{}
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f
}

func TestDispatcherSubscribeClose(t *testing.T) {
	d := NewInputDispatcher()
	var got []string
	a := d.Subscribe(component.JumpDown, func() { got = append(got, "a") })
	d.Subscribe(component.JumpDown, func() { got = append(got, "b") })

	d.Dispatch(component.JumpDown)
	a.Close()
	a.Close()
	d.Dispatch(component.JumpDown)
	d.Dispatch(component.CutDown)

	want := []string{"a", "b", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if d.Handlers(component.JumpDown) != 1 {
		t.Fatalf("expected one handler left, got %d", d.Handlers(component.JumpDown))
	}
}

func TestDispatcherCloseDuringDispatch(t *testing.T) {
	d := NewInputDispatcher()
	calls := 0
	var sub *Subscription
	sub = d.Subscribe(component.AimDown, func() {
		calls++
		sub.Close()
	})
	d.Subscribe(component.AimDown, func() { calls++ })

	d.Dispatch(component.AimDown)
	d.Dispatch(component.AimDown)
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestInputSystemWritesAxesAndDispatches(t *testing.T) {
	w := ecs.NewWorld()
	player := ecs.CreateEntity(w)
	if err := ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if err := ecs.Add(w, player, component.InputComponent.Kind(), &component.Input{}); err != nil {
		t.Fatalf("add input: %v", err)
	}

	d := NewInputDispatcher()
	var order []component.InputEvent
	for _, ev := range []component.InputEvent{component.AimDown, component.CutDown} {
		ev := ev
		d.Subscribe(ev, func() { order = append(order, ev) })
	}
	src := &scriptedSource{frames: []component.Input{{
		Strafe: -1,
		LookY:  0.5,
		Events: []component.InputEvent{component.AimDown, component.CutDown},
	}}}

	NewInputSystem(src, d).Update(w)

	input, _ := ecs.Get(w, player, component.InputComponent.Kind())
	if input.Strafe != -1 || input.LookY != 0.5 || len(input.Events) != 2 {
		t.Fatalf("unexpected input %+v", input)
	}
	if len(order) != 2 || order[0] != component.AimDown || order[1] != component.CutDown {
		t.Fatalf("unexpected dispatch order %v", order)
	}
}
