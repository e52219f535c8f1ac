package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/heartwindow/ecs/component"
)

const (
	stickDeadzone   = 0.2
	lookJitter      = 0.5
	stickLookFactor = 12.0
)

// EbitenInput samples keyboard, mouse and the first gamepad.
type EbitenInput struct {
	lastX, lastY int
	primed       bool
	gamepads     []ebiten.GamepadID
}

func NewEbitenInput() *EbitenInput {
	return &EbitenInput{}
}

// Reset forgets the last cursor position so the next poll reports no look.
func (in *EbitenInput) Reset() {
	in.primed = false
}

func (in *EbitenInput) Poll() component.Input {
	var frame component.Input

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		frame.Strafe -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		frame.Strafe += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		frame.Forward += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		frame.Forward -= 1
	}

	cx, cy := ebiten.CursorPosition()
	if in.primed {
		dx, dy := float64(cx-in.lastX), float64(cy-in.lastY)
		if math.Abs(dx) > lookJitter {
			frame.LookX = dx
		}
		if math.Abs(dy) > lookJitter {
			frame.LookY = dy
		}
	}
	in.lastX, in.lastY, in.primed = cx, cy, true

	pressed := map[component.InputEvent]bool{
		component.JumpDown:     inpututil.IsKeyJustPressed(ebiten.KeySpace),
		component.InteractDown: inpututil.IsKeyJustPressed(ebiten.KeyE),
		component.AimDown:      inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
		component.AimUp:        inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight),
		component.AltAimDown:   inpututil.IsKeyJustPressed(ebiten.KeyQ),
		component.AltAimUp:     inpututil.IsKeyJustReleased(ebiten.KeyQ),
		component.CutDown:      inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		component.CrouchDown:   inpututil.IsKeyJustPressed(ebiten.KeyC),
		component.CrouchUp:     inpututil.IsKeyJustReleased(ebiten.KeyC),
		component.InspectDown:  inpututil.IsKeyJustPressed(ebiten.KeyF),
		component.PauseDown:    inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}

	in.gamepads = ebiten.AppendGamepadIDs(in.gamepads[:0])
	if len(in.gamepads) > 0 {
		id := in.gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(lx) > stickDeadzone {
			frame.Strafe = lx
		}
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Abs(ly) > stickDeadzone {
			frame.Forward = -ly
		}
		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			frame.LookX = rx * stickLookFactor
			frame.LookY = ry * stickLookFactor
		}

		just := func(b ebiten.StandardGamepadButton) bool {
			return inpututil.IsStandardGamepadButtonJustPressed(id, b)
		}
		released := func(b ebiten.StandardGamepadButton) bool {
			return inpututil.IsStandardGamepadButtonJustReleased(id, b)
		}
		pressed[component.JumpDown] = pressed[component.JumpDown] || just(ebiten.StandardGamepadButtonRightBottom)
		pressed[component.InteractDown] = pressed[component.InteractDown] || just(ebiten.StandardGamepadButtonRightLeft)
		pressed[component.AimDown] = pressed[component.AimDown] || just(ebiten.StandardGamepadButtonFrontBottomLeft)
		pressed[component.AimUp] = pressed[component.AimUp] || released(ebiten.StandardGamepadButtonFrontBottomLeft)
		pressed[component.AltAimDown] = pressed[component.AltAimDown] || just(ebiten.StandardGamepadButtonFrontTopLeft)
		pressed[component.AltAimUp] = pressed[component.AltAimUp] || released(ebiten.StandardGamepadButtonFrontTopLeft)
		pressed[component.CutDown] = pressed[component.CutDown] || just(ebiten.StandardGamepadButtonFrontBottomRight)
		pressed[component.CrouchDown] = pressed[component.CrouchDown] || just(ebiten.StandardGamepadButtonRightRight)
		pressed[component.CrouchUp] = pressed[component.CrouchUp] || released(ebiten.StandardGamepadButtonRightRight)
		pressed[component.InspectDown] = pressed[component.InspectDown] || just(ebiten.StandardGamepadButtonRightTop)
		pressed[component.PauseDown] = pressed[component.PauseDown] || just(ebiten.StandardGamepadButtonCenterRight)
	}

	for ev := component.JumpDown; ev <= component.PauseDown; ev++ {
		if pressed[ev] {
			frame.Events = append(frame.Events, ev)
		}
	}
	return frame
}
