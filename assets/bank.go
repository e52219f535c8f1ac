package assets

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Sound is one named clip with its base volume.
type Sound struct {
	Name   string
	Tone   Tone
	Volume float64
	Loop   bool
}

// Bank plays synthesized sounds by name.
type Bank struct {
	players map[string]*audio.Player
	volumes map[string]float64
}

// NewBank synthesizes every sound up front.
func NewBank(sounds []Sound) (*Bank, error) {
	b := &Bank{players: make(map[string]*audio.Player), volumes: make(map[string]float64)}
	for _, s := range sounds {
		load := LoadAudioPlayer
		if s.Loop {
			load = LoadLoopPlayer
		}
		p, err := load(s.Tone)
		if err != nil {
			return nil, fmt.Errorf("sound %q: %w", s.Name, err)
		}
		b.players[s.Name] = p
		b.volumes[s.Name] = s.Volume
	}
	return b, nil
}

// Play restarts a one-shot sound at gain times its base volume.
func (b *Bank) Play(name string, gain float64) {
	p, ok := b.players[name]
	if !ok {
		log.Printf("audio: unknown sound %q", name)
		return
	}
	if err := p.Rewind(); err != nil {
		log.Printf("audio: rewind %q: %v", name, err)
	}
	p.SetVolume(b.volumes[name] * gain)
	p.Play()
}

// Loop sets a looping sound's gain; zero pauses it.
func (b *Bank) Loop(name string, gain float64) {
	p, ok := b.players[name]
	if !ok {
		return
	}
	if gain <= 0 {
		if p.IsPlaying() {
			p.Pause()
		}
		return
	}
	p.SetVolume(b.volumes[name] * gain)
	if !p.IsPlaying() {
		p.Play()
	}
}
