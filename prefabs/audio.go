package prefabs

import (
	"github.com/milk9111/heartwindow/assets"
	"github.com/milk9111/heartwindow/ecs/system"
)

const AudioFile = "audio.yaml"

type SoundSpec struct {
	Name    string  `yaml:"name"`
	Freq    float64 `yaml:"freq"`
	EndFreq float64 `yaml:"end_freq"`
	Seconds float64 `yaml:"seconds"`
	Decay   float64 `yaml:"decay"`
	Noise   bool    `yaml:"noise"`
	Loop    bool    `yaml:"loop"`
	Volume  float64 `yaml:"volume"`
}

// AudioSpec lists the synthesized sounds and footstep pacing.
type AudioSpec struct {
	StepDistance       float64     `yaml:"step_distance"`
	FootstepSpeed      float64     `yaml:"footstep_speed"`
	AmbienceFadeFrames int         `yaml:"ambience_fade_frames"`
	Sounds             []SoundSpec `yaml:"sounds"`
}

func LoadAudioSpec() (*AudioSpec, error) {
	spec, err := LoadSpec[AudioSpec](AudioFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Bank converts the sound list for assets.NewBank.
func (s *AudioSpec) Bank() []assets.Sound {
	if s == nil {
		return nil
	}
	out := make([]assets.Sound, 0, len(s.Sounds))
	for _, snd := range s.Sounds {
		volume := snd.Volume
		if volume <= 0 {
			volume = 1
		}
		out = append(out, assets.Sound{
			Name:   snd.Name,
			Volume: volume,
			Loop:   snd.Loop,
			Tone: assets.Tone{
				Freq:    snd.Freq,
				EndFreq: snd.EndFreq,
				Seconds: snd.Seconds,
				Decay:   snd.Decay,
				Noise:   snd.Noise,
			},
		})
	}
	return out
}

// Apply copies pacing onto a sound system, keeping its defaults for unset
// fields.
func (s *AudioSpec) Apply(sys *system.SoundSystem) {
	if s == nil || sys == nil {
		return
	}
	if s.StepDistance > 0 {
		sys.StepDistance = s.StepDistance
	}
	if s.FootstepSpeed > 0 {
		sys.FootstepSpeed = s.FootstepSpeed
	}
	if s.AmbienceFadeFrames > 0 {
		sys.FadeFrames = s.AmbienceFadeFrames
	}
}
