package system

import (
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

// InputSource samples devices once per simulation tick.
type InputSource interface {
	Poll() component.Input
}

// Subscription is a registered input handler. Close deregisters it and is
// safe to call more than once.
type Subscription struct {
	d     *InputDispatcher
	event component.InputEvent
	id    uint64
}

func (s *Subscription) Close() {
	if s == nil || s.d == nil {
		return
	}
	s.d.remove(s.event, s.id)
	s.d = nil
}

type inputHandler struct {
	id uint64
	fn func()
}

// InputDispatcher fans edge events out to subscribed handlers in
// subscription order.
type InputDispatcher struct {
	nextID   uint64
	handlers map[component.InputEvent][]inputHandler
}

func NewInputDispatcher() *InputDispatcher {
	return &InputDispatcher{handlers: make(map[component.InputEvent][]inputHandler)}
}

func (d *InputDispatcher) Subscribe(event component.InputEvent, fn func()) *Subscription {
	if d == nil || fn == nil {
		return &Subscription{}
	}
	if d.handlers == nil {
		d.handlers = make(map[component.InputEvent][]inputHandler)
	}
	d.nextID++
	d.handlers[event] = append(d.handlers[event], inputHandler{id: d.nextID, fn: fn})
	return &Subscription{d: d, event: event, id: d.nextID}
}

func (d *InputDispatcher) remove(event component.InputEvent, id uint64) {
	list := d.handlers[event]
	for i, h := range list {
		if h.id == id {
			d.handlers[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Dispatch runs the handlers registered for event. Handlers added or removed
// during dispatch take effect on the next event.
func (d *InputDispatcher) Dispatch(event component.InputEvent) {
	if d == nil {
		return
	}
	list := append([]inputHandler(nil), d.handlers[event]...)
	for _, h := range list {
		h.fn()
	}
}

// Handlers reports how many handlers listen for event.
func (d *InputDispatcher) Handlers(event component.InputEvent) int {
	if d == nil {
		return 0
	}
	return len(d.handlers[event])
}

// InputSystem writes the sampled axes to every player and dispatches edge
// events in the order they were sampled.
type InputSystem struct {
	source     InputSource
	dispatcher *InputDispatcher
}

func NewInputSystem(source InputSource, dispatcher *InputDispatcher) *InputSystem {
	return &InputSystem{source: source, dispatcher: dispatcher}
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil || i.source == nil {
		return
	}
	frame := i.source.Poll()

	ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.InputComponent.Kind(), func(_ ecs.Entity, _ *component.PlayerTag, input *component.Input) {
		*input = frame
		input.Events = append([]component.InputEvent(nil), frame.Events...)
	})

	for _, ev := range frame.Events {
		i.dispatcher.Dispatch(ev)
	}
}
