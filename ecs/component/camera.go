package component

// Camera is the main viewpoint. X/Y is the top-left corner in world space.
type Camera struct {
	Zoom       float64
	Smoothness float64
	Width      float64
	Height     float64
}

var CameraComponent = NewComponent[Camera]()
