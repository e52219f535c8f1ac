package component

// Window is the mask-layer geometry the player cuts with. It is anchored to
// the camera at Distance in front of the player's facing.
type Window struct {
	Width      float64
	Height     float64
	Distance   float64
	Visible    bool
	FacingLeft bool
}

var WindowComponent = NewComponent[Window]()
