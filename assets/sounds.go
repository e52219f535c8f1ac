package assets

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

const SampleRate = 44100

var (
	contextOnce  sync.Once
	audioContext *audio.Context
)

// Context returns the shared audio context, creating it on first use.
func Context() *audio.Context {
	contextOnce.Do(func() {
		if audioContext = audio.CurrentContext(); audioContext == nil {
			audioContext = audio.NewContext(SampleRate)
		}
	})
	return audioContext
}

// Tone describes a synthesized clip: a sine sweep from Freq to EndFreq, or
// white noise, under an exponential decay.
type Tone struct {
	Freq    float64
	EndFreq float64
	Seconds float64
	Decay   float64
	Noise   bool
}

// ToneWAV renders t as a mono 16-bit PCM WAV file.
func ToneWAV(t Tone) []byte {
	n := int(t.Seconds * SampleRate)
	if n < 0 {
		n = 0
	}
	end := t.EndFreq
	if end <= 0 {
		end = t.Freq
	}
	rng := rand.New(rand.NewPCG(uint64(t.Freq*1000), uint64(n)))

	samples := make([]int16, n)
	phase := 0.0
	for i := range samples {
		f := float64(i) / float64(max(n, 1))
		env := math.Exp(-t.Decay * f)
		// Short attack and release avoid clicks.
		if edge := float64(min(i, n-1-i)) / (SampleRate * 0.004); edge < 1 {
			env *= edge
		}
		var v float64
		if t.Noise {
			v = rng.Float64()*2 - 1
		} else {
			phase += 2 * math.Pi * (t.Freq + (end-t.Freq)*f) / SampleRate
			v = math.Sin(phase)
		}
		samples[i] = int16(v * env * 0.8 * math.MaxInt16)
	}

	var buf bytes.Buffer
	dataSize := uint32(2 * n)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, struct {
		Size          uint32
		Format        uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{16, 1, 1, SampleRate, SampleRate * 2, 2, 16})
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

// DecodeTone renders and decodes t at the context sample rate.
func DecodeTone(t Tone, sampleRate int) (*wav.Stream, error) {
	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(ToneWAV(t)))
	if err != nil {
		return nil, fmt.Errorf("decode tone: %w", err)
	}
	return stream, nil
}

// LoadAudioPlayer synthesizes t and creates a one-shot player.
func LoadAudioPlayer(t Tone) (*audio.Player, error) {
	ctx := Context()
	stream, err := DecodeTone(t, ctx.SampleRate())
	if err != nil {
		return nil, err
	}
	return ctx.NewPlayer(stream)
}

// LoadLoopPlayer synthesizes t and creates a player that repeats it forever.
func LoadLoopPlayer(t Tone) (*audio.Player, error) {
	ctx := Context()
	stream, err := DecodeTone(t, ctx.SampleRate())
	if err != nil {
		return nil, err
	}
	return ctx.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
}
