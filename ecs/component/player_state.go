package component

// PlayerState is one mutually exclusive player behavior. Start runs when the
// state becomes active and End when it is replaced or cleared; End must be
// safe to call more than once.
type PlayerState interface {
	Name() string
	Start(ctx *PlayerStateContext)
	End(ctx *PlayerStateContext)
}

// PlayerStateContext gives states controlled access to the player and the
// collaborators they drive. Callbacks keep states decoupled from the ecs
// package.
type PlayerStateContext struct {
	Player *Player

	SetHeight       func(h float64)
	ToggleMask      func(visible bool)
	ShowWindow      func(visible bool)
	ApplyCut        func() int
	RevertAll       func() int
	StartRipple     func()
	RebuildMask     func()
	Attach          func(obj uint64)
	Release         func(obj uint64)
	BringClose      func(obj uint64, close bool)
	SetVertical     func(v float64)
	IsGrounded      func() bool
	PlayCue         func(cue string)
	EndCurrentState func()
}

// PlayerStateMachine stores the single active state. Nil means idle.
type PlayerStateMachine struct {
	State PlayerState
}

var PlayerStateMachineComponent = NewComponent[PlayerStateMachine]()
