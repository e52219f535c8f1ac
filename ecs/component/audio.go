package component

// AudioCue is a fire-and-forget sound request.
type AudioCue struct {
	Name string
}

// AudioCueQueue collects cues for the audio player to drain.
type AudioCueQueue struct {
	Cues            []AudioCue
	WalkingVelocity float64
}

var AudioCueQueueComponent = NewComponent[AudioCueQueue]()
