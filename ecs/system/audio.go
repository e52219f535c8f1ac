package system

import (
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

const (
	CueJumpLiftoff = "jump_liftoff"
	CueJumpLanding = "jump_landing"
	CuePlaceWindow = "place_window"
)

// AudioCues is the fire-and-forget audio collaborator.
type AudioCues interface {
	JumpLiftoff()
	JumpLanding()
	PlaceWindow()
	SetWalkingVelocity(v float64)
}

// PlayCue routes a cue name to the matching trigger.
func PlayCue(a AudioCues, name string) {
	if a == nil {
		return
	}
	switch name {
	case CueJumpLiftoff:
		a.JumpLiftoff()
	case CueJumpLanding:
		a.JumpLanding()
	case CuePlaceWindow:
		a.PlaceWindow()
	}
}

// CueQueue records cues into the world's AudioCueQueue for the player in the
// display package to drain.
type CueQueue struct {
	world *ecs.World
}

func NewCueQueue() *CueQueue { return &CueQueue{} }

// SetWorld points the queue at a new world.
func (q *CueQueue) SetWorld(w *ecs.World) { q.world = w }

func (q *CueQueue) queue() *component.AudioCueQueue {
	if q == nil || q.world == nil {
		return nil
	}
	e, ok := ecs.First(q.world, component.AudioCueQueueComponent.Kind())
	if !ok {
		e = ecs.CreateEntity(q.world)
		if err := ecs.Add(q.world, e, component.AudioCueQueueComponent.Kind(), &component.AudioCueQueue{}); err != nil {
			return nil
		}
	}
	c, _ := ecs.Get(q.world, e, component.AudioCueQueueComponent.Kind())
	return c
}

func (q *CueQueue) push(name string) {
	if c := q.queue(); c != nil {
		c.Cues = append(c.Cues, component.AudioCue{Name: name})
	}
}

func (q *CueQueue) JumpLiftoff() { q.push(CueJumpLiftoff) }
func (q *CueQueue) JumpLanding() { q.push(CueJumpLanding) }
func (q *CueQueue) PlaceWindow() { q.push(CuePlaceWindow) }

func (q *CueQueue) SetWalkingVelocity(v float64) {
	if c := q.queue(); c != nil {
		c.WalkingVelocity = v
	}
}

// Drain returns and clears pending cues.
func (q *CueQueue) Drain() ([]component.AudioCue, float64) {
	c := q.queue()
	if c == nil {
		return nil, 0
	}
	out := c.Cues
	c.Cues = nil
	return out, c.WalkingVelocity
}
