package component

import "image/color"

// Shape is flat, axis-aligned geometry centered on the entity transform.
type Shape struct {
	Width  float64
	Height float64
	Color  color.RGBA
}

// Appearance is the per-entity material state the render passes read.
// Dissolved entities are skipped by the base pass; heart geometry starts
// dissolved and is only seen through the mask.
type Appearance struct {
	Dissolved bool
	Alpha     float64
}

var ShapeComponent = NewComponent[Shape]()
var AppearanceComponent = NewComponent[Appearance]()
