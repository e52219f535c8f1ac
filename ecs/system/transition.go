package system

import (
	"log"
	"math"

	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

const defaultFadeFrames = 30

// LevelBehaviour runs a level's start and end behaviours.
type LevelBehaviour interface {
	Start()
	End()
}

// TransitionClearer drops the captured transition material.
type TransitionClearer interface {
	ClearTransition()
}

// DialogueHandoff plays a script and reports completion.
type DialogueHandoff interface {
	PlayScript(id string)
	Subscribe(fn func(id string)) func()
}

// TransitionCoordinator hands the player from one level to the next: it
// freezes the scene, optionally waits for an intro script, then initializes
// the controller and fades the new level in.
type TransitionCoordinator struct {
	ctrl       *PlayerController
	dialogue   DialogueHandoff
	compositor TransitionClearer
	scripts    LevelBehaviour

	world       *ecs.World
	player      ecs.Entity
	waiting     string
	unsubscribe func()
}

func NewTransitionCoordinator(ctrl *PlayerController, dialogue DialogueHandoff, compositor TransitionClearer, scripts LevelBehaviour) *TransitionCoordinator {
	return &TransitionCoordinator{ctrl: ctrl, dialogue: dialogue, compositor: compositor, scripts: scripts}
}

// Begin freezes the outgoing level and runs its end behaviours.
func (c *TransitionCoordinator) Begin(w *ecs.World, player ecs.Entity) {
	if c == nil {
		return
	}
	c.cancelWait()
	if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok {
		p.SceneActive = false
		p.CanMove = false
		p.VerticalVelocity = 0
	}
	if pb, ok := ecs.Get(w, player, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		pb.Body.SetVelocity(0, 0)
	}
	if c.ctrl != nil {
		c.ctrl.EndState()
	}
	if c.scripts != nil {
		c.scripts.End()
	}
}

// Complete finishes the hand-off into w. With a dialogue id the finish waits
// for that script to complete.
func (c *TransitionCoordinator) Complete(w *ecs.World, player ecs.Entity, dialogue string) {
	if c == nil || w == nil {
		return
	}
	c.cancelWait()
	c.world = w
	c.player = player
	if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok {
		p.SceneActive = false
		p.CanMove = false
	}
	if dialogue == "" || c.dialogue == nil {
		c.finish()
		return
	}

	c.waiting = dialogue
	c.unsubscribe = c.dialogue.Subscribe(func(id string) {
		if id != c.waiting {
			return
		}
		c.cancelWait()
		c.finish()
	})
	c.dialogue.PlayScript(dialogue)
}

// Waiting reports whether the coordinator is holding for a script.
func (c *TransitionCoordinator) Waiting() bool { return c != nil && c.unsubscribe != nil }

func (c *TransitionCoordinator) cancelWait() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.waiting = ""
}

func (c *TransitionCoordinator) finish() {
	w, player := c.world, c.player
	if c.ctrl != nil {
		c.ctrl.Initialize(w, player)
	}
	frames := defaultFadeFrames
	if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok {
		p.SceneActive = true
		p.CanMove = true
		if p.FadeSeconds > 0 {
			frames = int(math.Ceil(p.FadeSeconds / tickDT))
		}
	} else {
		log.Printf("transition: %s has no player component", player)
	}
	StartFade(w, frames)
	if c.compositor != nil {
		c.compositor.ClearTransition()
	}
	if c.scripts != nil {
		c.scripts.Start()
	}
}

// StartFade begins a fade in from black over frames ticks, replacing any
// fade in progress.
func StartFade(w *ecs.World, frames int) {
	if w == nil {
		return
	}
	if frames < 1 {
		frames = 1
	}
	for _, e := range ecs.Query(w, component.FadeComponent.Kind()) {
		ecs.DestroyEntity(w, e)
	}
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.FadeComponent.Kind(), &component.Fade{Alpha: 1, Frames: frames, In: true}); err != nil {
		log.Printf("transition: start fade: %v", err)
	}
}

// FadeAlpha is the current fade overlay alpha, 0 when no fade runs.
func FadeAlpha(w *ecs.World) float64 {
	e, ok := ecs.First(w, component.FadeComponent.Kind())
	if !ok {
		return 0
	}
	f, _ := ecs.Get(w, e, component.FadeComponent.Kind())
	return f.Alpha
}

// FadeSystem steps the fade runtime.
type FadeSystem struct{}

func NewFadeSystem() *FadeSystem { return &FadeSystem{} }

func (s *FadeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.FadeComponent.Kind(), func(e ecs.Entity, f *component.Fade) {
		if f.Frames < 1 {
			f.Frames = 1
		}
		f.Timer++
		frac := common.Clamp01(float64(f.Timer) / float64(f.Frames))
		if f.In {
			f.Alpha = 1 - frac
		} else {
			f.Alpha = frac
		}
		if f.In && f.Timer >= f.Frames {
			ecs.DestroyEntity(w, e)
		}
	})
}
