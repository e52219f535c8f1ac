package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Solid is the authored collision switch; clipping toggles it.
type PhysicsBody struct {
	Body   *cp.Body
	Shape  *cp.Shape
	Width  float64
	Height float64
	Mass   float64
	Static bool
	Solid  bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
