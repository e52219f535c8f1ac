package component

// Player holds tunables (from player.yaml) and per-session runtime state.
type Player struct {
	Speed            float64
	Gravity          float64
	JumpForce        float64
	MouseSensitivity float64
	Reach            float64
	FadeSeconds      float64
	Height           float64
	CrouchHeight     float64
	LandingThreshold float64
	DissolveSeconds  float64

	VerticalVelocity float64
	Pitch            float64
	FacingLeft       bool
	Grounded         bool
	FallStartY       float64

	CanMove        bool
	CanRotate      bool
	Crouching      bool
	StillCrouching bool
	SceneActive    bool
	WindowEnabled  bool

	Held    uint64
	Looking uint64
}

var PlayerComponent = NewComponent[Player]()
