package system

import "github.com/milk9111/heartwindow/ecs/component"

const stateIdle = "idle"

// Player state singletons for payload-free states.
var (
	playerStateCrouch component.PlayerState = &playerCrouchState{}
	playerStateAiming component.PlayerState = &playerAimingState{}
	playerStateCut    component.PlayerState = &playerCutState{}
	playerStateJump   component.PlayerState = &playerJumpState{}
)

type playerCrouchState struct{}

type playerAimingState struct{}

type playerCutState struct{}

type playerJumpState struct{}

// playerPickUpState owns the carried object.
type playerPickUpState struct{ obj uint64 }

type playerDropState struct{ obj uint64 }

// playerInspectState holds the object up close; movement is frozen.
type playerInspectState struct{ obj uint64 }

func (playerCrouchState) Name() string { return "crouch" }
func (playerCrouchState) Start(ctx *component.PlayerStateContext) {
	ctx.Player.Crouching = true
	call1(ctx.SetHeight, ctx.Player.CrouchHeight)
}
func (playerCrouchState) End(ctx *component.PlayerStateContext) {
	ctx.Player.Crouching = false
	ctx.Player.StillCrouching = false
	call1(ctx.SetHeight, ctx.Player.Height)
}

func (playerAimingState) Name() string { return "aiming" }
func (playerAimingState) Start(ctx *component.PlayerStateContext) {
	call1(ctx.ToggleMask, true)
	call1(ctx.ShowWindow, true)
}
func (playerAimingState) End(ctx *component.PlayerStateContext) {
	call1(ctx.ToggleMask, false)
	call1(ctx.ShowWindow, false)
}

// Cut reverts the previous reveal, clips through the window and starts the
// ripple. It completes inside Start.
func (playerCutState) Name() string { return "cut" }
func (playerCutState) Start(ctx *component.PlayerStateContext) {
	if ctx.RevertAll != nil {
		ctx.RevertAll()
	}
	if ctx.ApplyCut != nil {
		ctx.ApplyCut()
	}
	call1(ctx.PlayCue, CuePlaceWindow)
	call1(ctx.ShowWindow, false)
	call1(ctx.ToggleMask, false)
	call0(ctx.StartRipple)
	call0(ctx.RebuildMask)
}
func (playerCutState) End(ctx *component.PlayerStateContext) {}

// Jump never occupies the state slot; the controller runs Start and End back
// to back so the current state survives.
func (playerJumpState) Name() string { return "jump" }
func (playerJumpState) Start(ctx *component.PlayerStateContext) {
	call1(ctx.SetVertical, ctx.Player.JumpForce)
	call1(ctx.PlayCue, CueJumpLiftoff)
}
func (playerJumpState) End(ctx *component.PlayerStateContext) {}

func (s playerPickUpState) Name() string { return "pickup" }
func (s playerPickUpState) Start(ctx *component.PlayerStateContext) {
	if ctx.Attach != nil {
		ctx.Attach(s.obj)
	}
}
func (s playerPickUpState) End(ctx *component.PlayerStateContext) {}

func (s playerDropState) Name() string { return "drop" }
func (s playerDropState) Start(ctx *component.PlayerStateContext) {
	if ctx.Release != nil {
		ctx.Release(s.obj)
	}
}
func (s playerDropState) End(ctx *component.PlayerStateContext) {}

func (s playerInspectState) Name() string { return "inspect" }
func (s playerInspectState) Start(ctx *component.PlayerStateContext) {
	ctx.Player.CanMove = false
	if ctx.BringClose != nil {
		ctx.BringClose(s.obj, true)
	}
}
func (s playerInspectState) End(ctx *component.PlayerStateContext) {
	ctx.Player.CanMove = true
	if ctx.BringClose != nil {
		ctx.BringClose(s.obj, false)
	}
}

func stateName(s component.PlayerState) string {
	if s == nil {
		return stateIdle
	}
	return s.Name()
}

// heldObject returns the object owned by a carrying state.
func heldObject(s component.PlayerState) (uint64, bool) {
	switch st := s.(type) {
	case playerPickUpState:
		return st.obj, true
	case playerInspectState:
		return st.obj, true
	}
	return 0, false
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}

func call1[T any](fn func(T), v T) {
	if fn != nil {
		fn(v)
	}
}
