package component

// InputEvent is an edge-triggered input sampled once per tick.
type InputEvent int

const (
	JumpDown InputEvent = iota
	InteractDown
	AimDown
	AimUp
	AltAimDown
	AltAimUp
	CutDown
	CrouchDown
	CrouchUp
	InspectDown
	PauseDown
)

func (e InputEvent) String() string {
	switch e {
	case JumpDown:
		return "jump_down"
	case InteractDown:
		return "interact_down"
	case AimDown:
		return "aim_down"
	case AimUp:
		return "aim_up"
	case AltAimDown:
		return "alt_aim_down"
	case AltAimUp:
		return "alt_aim_up"
	case CutDown:
		return "cut_down"
	case CrouchDown:
		return "crouch_down"
	case CrouchUp:
		return "crouch_up"
	case InspectDown:
		return "inspect_down"
	case PauseDown:
		return "pause_down"
	default:
		return "unknown"
	}
}

// Input stores per-tick axes and the edge events seen this tick.
type Input struct {
	Forward float64
	Strafe  float64
	LookX   float64
	LookY   float64
	Events  []InputEvent
}

var InputComponent = NewComponent[Input]()
