package component

// Dissolve is a timed fade on a dropped object. Token ties it to the
// controller's drop generation; a stale token discards the effect.
type Dissolve struct {
	Token    uint64
	Elapsed  float64
	Duration float64
}

var DissolveComponent = NewComponent[Dissolve]()
