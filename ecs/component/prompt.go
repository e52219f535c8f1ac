package component

// Prompt is the HUD hint for whatever the player is looking at.
type Prompt struct {
	Text string
}

var PromptComponent = NewComponent[Prompt]()
