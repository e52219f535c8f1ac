package component

// Interactable can be targeted by the player's look ray.
type Interactable struct {
	Prompt     string
	FlavorText string
}

// Pickupable can be carried. A non-empty Gate must overlap the GateZone with
// the same ID to be dropped; otherwise, or when Dissolves is set, dropping
// dissolves the object back to its origin.
type Pickupable struct {
	Dissolves bool
	Gate      string
	OriginX   float64
	OriginY   float64
	Close     bool
}

// GateZone is the drop target for gated pickupables.
type GateZone struct {
	ID     string
	Width  float64
	Height float64
}

// Canvas ends a level when collected.
type Canvas struct {
	Preview   string
	NextLevel string
	Collected bool
}

// Collect pulls an entity toward a point over a fixed number of ticks.
type Collect struct {
	FromX   float64
	FromY   float64
	ToX     float64
	ToY     float64
	Frames  int
	Elapsed int
}

var InteractableComponent = NewComponent[Interactable]()
var PickupableComponent = NewComponent[Pickupable]()
var GateZoneComponent = NewComponent[GateZone]()
var CanvasComponent = NewComponent[Canvas]()
var CollectComponent = NewComponent[Collect]()
