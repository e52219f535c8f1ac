package system

import (
	"math"

	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

const (
	SoundFootstep = "footstep"
	SoundAmbience = "ambience"

	defaultStepDistance  = 42.0
	defaultAmbienceFade  = 45
	defaultFootstepSpeed = 180.0
)

// SoundBank plays named sounds. Gain scales the sound's base volume.
type SoundBank interface {
	Play(name string, gain float64)
	Loop(name string, gain float64)
}

// SoundSystem turns queued cues into sounds, paces footsteps from the
// walking velocity and fades the ambience loop with the scene.
type SoundSystem struct {
	bank  SoundBank
	queue *CueQueue

	StepDistance  float64
	FootstepSpeed float64
	FadeFrames    int

	stride   float64
	ambience float64
}

func NewSoundSystem(bank SoundBank, queue *CueQueue) *SoundSystem {
	return &SoundSystem{
		bank:          bank,
		queue:         queue,
		StepDistance:  defaultStepDistance,
		FootstepSpeed: defaultFootstepSpeed,
		FadeFrames:    defaultAmbienceFade,
	}
}

func (s *SoundSystem) Update(w *ecs.World) {
	if s == nil || s.queue == nil {
		return
	}
	cues, walking := s.queue.Drain()
	if s.bank == nil {
		return
	}
	for _, cue := range cues {
		s.bank.Play(cue.Name, 1)
	}
	s.footsteps(walking)
	s.fadeAmbience(w)
}

func (s *SoundSystem) footsteps(walking float64) {
	speed := math.Abs(walking)
	if speed == 0 {
		s.stride = 0
		return
	}
	s.stride += speed * tickDT
	if s.StepDistance <= 0 || s.stride < s.StepDistance {
		return
	}
	s.stride = 0
	gain := 1.0
	if s.FootstepSpeed > 0 {
		gain = common.Clamp01(speed / s.FootstepSpeed)
	}
	s.bank.Play(SoundFootstep, gain)
}

// fadeAmbience eases the loop toward full while the scene is active and
// toward silence during transitions.
func (s *SoundSystem) fadeAmbience(w *ecs.World) {
	target := 0.0
	if w != nil {
		ecs.ForEach(w, component.PlayerComponent.Kind(), func(_ ecs.Entity, p *component.Player) {
			if p.SceneActive {
				target = 1
			}
		})
	}
	step := 1.0
	if s.FadeFrames > 0 {
		step = 1 / float64(s.FadeFrames)
	}
	switch {
	case s.ambience < target:
		s.ambience = math.Min(target, s.ambience+step)
	case s.ambience > target:
		s.ambience = math.Max(target, s.ambience-step)
	}
	s.bank.Loop(SoundAmbience, s.ambience)
}

// Ambience reports the current loop gain.
func (s *SoundSystem) Ambience() float64 { return s.ambience }
