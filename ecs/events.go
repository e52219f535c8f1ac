package ecs

// Event is posted by systems and drained once per tick by the level
// script system.
type Event struct {
	Type string
	Data any
}

// Data is a StateChange, a system.CutResult or the gate id respectively.
const (
	EventStateChanged = "player_state_changed"
	EventCutApplied   = "cut_applied"
	EventGateUnlocked = "gate_unlocked"
)

// StateChange is the payload of EventStateChanged.
type StateChange struct {
	From string
	To   string
}

// EventQueue is FIFO and unbounded.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
