package system

import (
	"errors"
	"log"
	"math"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

const (
	tickDT          = 1.0 / 60.0
	maxPitch        = 90.0
	collectFrames   = 30
	defaultDissolve = 1.0
)

const (
	promptInteract = "Press E to Interact"
	promptPickUp   = "Press E to Pick Up"
	promptDrop     = "Press E to Drop"
	promptCollect  = "Press E to Collect"
)

var ErrMissingAnchor = errors.New("player: missing scene anchor")

// Probe answers the physics questions the controller asks.
type Probe interface {
	IsGrounded(w *ecs.World, e ecs.Entity) bool
	Obstructed(w *ecs.World, e ecs.Entity, clearance float64) bool
	LookAt(w *ecs.World, e ecs.Entity, dirX, dirY, reach float64) (ecs.Entity, bool)
	SetHeight(w *ecs.World, e ecs.Entity, height float64)
	Teleport(w *ecs.World, e ecs.Entity, x, y float64)
}

// MaskControl is the part of the compositor the states drive.
type MaskControl interface {
	ToggleMask(visible bool)
	StartRipple() *Ripple
	RebuildMask()
}

// Narrator plays flavor text.
type Narrator interface {
	PlayText(text string)
}

// PlayerDeps are the collaborators a PlayerController drives. Nil members are
// skipped.
type PlayerDeps struct {
	Layers   *WorldLayers
	Window   *WindowSystem
	Probe    Probe
	Mask     MaskControl
	Audio    AudioCues
	Narrator Narrator
}

// PlayerController owns the player's state machine. Every transition goes
// through SetState or EndState.
type PlayerController struct {
	deps PlayerDeps

	world  *ecs.World
	player ecs.Entity
	ctx    component.PlayerStateContext
	subs   []*Subscription

	// OnTransition observes every state change, by state name.
	OnTransition func(from, to string)
	Debug        bool

	dissolveToken uint64
	dissolving    ecs.Entity

	spawnX, spawnY float64
	hasSpawn       bool
	deathY         float64
	hasDeath       bool
}

func NewPlayerController(deps PlayerDeps) *PlayerController {
	return &PlayerController{deps: deps}
}

// Activate registers the input handlers. Calling it again replaces the
// previous registration.
func (c *PlayerController) Activate(d *InputDispatcher) {
	if c == nil || d == nil {
		return
	}
	c.Deactivate()
	bind := func(ev component.InputEvent, fn func()) {
		c.subs = append(c.subs, d.Subscribe(ev, fn))
	}
	bind(component.JumpDown, c.onJump)
	bind(component.InteractDown, c.onInteract)
	bind(component.AimDown, c.onAimDown)
	bind(component.AltAimDown, c.onAimDown)
	bind(component.AimUp, c.onAimUp)
	bind(component.AltAimUp, c.onAimUp)
	bind(component.CutDown, c.onCut)
	bind(component.CrouchDown, c.onCrouchDown)
	bind(component.CrouchUp, c.onCrouchUp)
	bind(component.InspectDown, c.onInspect)
}

// Deactivate closes every subscription made by Activate.
func (c *PlayerController) Deactivate() {
	if c == nil {
		return
	}
	for _, s := range c.subs {
		s.Close()
	}
	c.subs = nil
}

// Initialize binds the controller to a freshly built level: it resolves the
// spawn and death-plane anchors, clears carried objects and hides the mask.
func (c *PlayerController) Initialize(w *ecs.World, player ecs.Entity) {
	if c == nil || w == nil {
		return
	}
	if c.world == w && c.player == player {
		c.EndState()
	} else {
		c.world = w
		c.player = player
	}
	c.dissolving = 0
	c.dissolveToken++
	c.bindContext()

	p := c.playerComp()
	if p == nil {
		log.Printf("player: initialize: %s has no player component", player)
		return
	}
	p.CanMove = true
	p.CanRotate = true
	p.Held = 0
	p.Looking = 0
	p.VerticalVelocity = 0

	c.hasSpawn, c.hasDeath = false, false
	if e, ok := ecs.First(w, component.SpawnPointComponent.Kind()); ok {
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			c.spawnX, c.spawnY, c.hasSpawn = t.X, t.Y, true
		}
	}
	if !c.hasSpawn {
		log.Printf("player: %v: spawn point", ErrMissingAnchor)
	}
	if e, ok := ecs.First(w, component.DeathPlaneComponent.Kind()); ok {
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			c.deathY, c.hasDeath = t.Y, true
		}
	}
	if !c.hasDeath {
		log.Printf("player: %v: death plane", ErrMissingAnchor)
	}
	if c.hasSpawn {
		c.teleport(c.spawnX, c.spawnY)
	}
	if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
		p.FallStartY = t.Y
	}
	p.Grounded = c.grounded()

	if c.deps.Window != nil {
		c.deps.Window.ShowWindow(w, false)
	}
	if c.deps.Mask != nil {
		c.deps.Mask.ToggleMask(false)
		c.deps.Mask.RebuildMask()
	}
}

func (c *PlayerController) bindContext() {
	w, player := c.world, c.player
	c.ctx = component.PlayerStateContext{
		SetHeight: func(h float64) {
			if c.deps.Probe != nil && h > 0 {
				c.deps.Probe.SetHeight(w, player, h)
			}
		},
		ToggleMask: func(v bool) {
			if c.deps.Mask != nil {
				c.deps.Mask.ToggleMask(v)
			}
		},
		ShowWindow: func(v bool) {
			if c.deps.Window != nil {
				c.deps.Window.ShowWindow(w, v)
			}
		},
		ApplyCut: func() int {
			if c.deps.Window == nil {
				return 0
			}
			return c.deps.Window.ApplyCut(w)
		},
		RevertAll: func() int {
			if c.deps.Layers == nil {
				return 0
			}
			return c.deps.Layers.RevertAll(w)
		},
		StartRipple: func() {
			if c.deps.Mask != nil {
				c.deps.Mask.StartRipple()
			}
		},
		RebuildMask: func() {
			if c.deps.Mask != nil {
				c.deps.Mask.RebuildMask()
			}
		},
		Attach:     c.attach,
		Release:    c.release,
		BringClose: c.bringClose,
		SetVertical: func(v float64) {
			if p := c.playerComp(); p != nil {
				p.VerticalVelocity = v
			}
		},
		IsGrounded:      c.grounded,
		PlayCue:         func(name string) { PlayCue(c.deps.Audio, name) },
		EndCurrentState: c.EndState,
	}
}

func (c *PlayerController) stateContext() *component.PlayerStateContext {
	c.ctx.Player = c.playerComp()
	if c.ctx.Player == nil {
		c.ctx.Player = &component.Player{}
	}
	return &c.ctx
}

func (c *PlayerController) playerComp() *component.Player {
	if c == nil || c.world == nil {
		return nil
	}
	p, _ := ecs.Get(c.world, c.player, component.PlayerComponent.Kind())
	return p
}

func (c *PlayerController) machine() *component.PlayerStateMachine {
	if c == nil || c.world == nil {
		return nil
	}
	sm, ok := ecs.Get(c.world, c.player, component.PlayerStateMachineComponent.Kind())
	if !ok {
		sm = &component.PlayerStateMachine{}
		if err := ecs.Add(c.world, c.player, component.PlayerStateMachineComponent.Kind(), sm); err != nil {
			return nil
		}
	}
	return sm
}

// State returns the active state, nil when idle.
func (c *PlayerController) State() component.PlayerState {
	if sm := c.machine(); sm != nil {
		return sm.State
	}
	return nil
}

func (c *PlayerController) StateName() string { return stateName(c.State()) }

// SetState ends the current state, then assigns and starts next. Starting
// any state supersedes a running dissolve.
func (c *PlayerController) SetState(next component.PlayerState) {
	sm := c.machine()
	if sm == nil {
		return
	}
	ctx := c.stateContext()
	prev := sm.State
	if prev != nil {
		sm.State = nil
		prev.End(ctx)
	}
	c.dissolving = 0
	sm.State = next
	if next != nil {
		next.Start(ctx)
	}
	c.notify(prev, next)
}

// EndState ends the current state and returns to idle. Ending idle is a no-op.
func (c *PlayerController) EndState() {
	sm := c.machine()
	if sm == nil || sm.State == nil {
		return
	}
	prev := sm.State
	sm.State = nil
	prev.End(c.stateContext())
	c.notify(prev, nil)
}

func (c *PlayerController) notify(prev, next component.PlayerState) {
	from, to := stateName(prev), stateName(next)
	if c.Debug {
		log.Printf("player: state %s -> %s", from, to)
	}
	if c.OnTransition != nil {
		c.OnTransition(from, to)
	}
	c.world.Events().Push(ecs.Event{Type: ecs.EventStateChanged, Data: ecs.StateChange{From: from, To: to}})
}

// SetWindowEnabled gates aiming; disabling it while aiming ends the aim.
func (c *PlayerController) SetWindowEnabled(enabled bool) {
	p := c.playerComp()
	if p == nil {
		return
	}
	p.WindowEnabled = enabled
	if !enabled && c.State() == playerStateAiming {
		c.EndState()
	}
}

func (c *PlayerController) active() (*component.Player, bool) {
	p := c.playerComp()
	if p == nil || !p.SceneActive {
		return nil, false
	}
	return p, true
}

func (c *PlayerController) grounded() bool {
	if c.deps.Probe == nil || c.world == nil {
		return false
	}
	return c.deps.Probe.IsGrounded(c.world, c.player)
}

func (c *PlayerController) onJump() {
	p, ok := c.active()
	if !ok || !p.CanMove || !c.grounded() {
		return
	}
	ctx := c.stateContext()
	playerStateJump.Start(ctx)
	playerStateJump.End(ctx)
}

func (c *PlayerController) onAimDown() {
	p, ok := c.active()
	if !ok || !p.WindowEnabled || p.Held != 0 {
		return
	}
	switch c.State() {
	case nil:
		c.SetState(playerStateAiming)
	case playerStateCrouch:
		if !c.blockedOverhead(p) {
			c.SetState(playerStateAiming)
		}
	}
}

func (c *PlayerController) onAimUp() {
	if c.State() == playerStateAiming {
		c.EndState()
	}
}

func (c *PlayerController) onCut() {
	p, ok := c.active()
	if !ok || !p.WindowEnabled || c.State() != playerStateAiming {
		return
	}
	c.SetState(playerStateCut)
	c.EndState()
}

func (c *PlayerController) onCrouchDown() {
	if _, ok := c.active(); !ok || c.State() != nil {
		return
	}
	c.SetState(playerStateCrouch)
}

func (c *PlayerController) onCrouchUp() {
	if c.State() != playerStateCrouch {
		return
	}
	p := c.playerComp()
	if c.blockedOverhead(p) {
		p.StillCrouching = true
		return
	}
	c.EndState()
}

func (c *PlayerController) blockedOverhead(p *component.Player) bool {
	if c.deps.Probe == nil || p == nil {
		return false
	}
	return c.deps.Probe.Obstructed(c.world, c.player, p.Height-p.CrouchHeight)
}

func (c *PlayerController) onInspect() {
	if _, ok := c.active(); !ok || c.dissolving != 0 {
		return
	}
	switch st := c.State().(type) {
	case playerPickUpState:
		c.SetState(playerInspectState{obj: st.obj})
	case playerInspectState:
		c.SetState(playerPickUpState{obj: st.obj})
	}
}

func (c *PlayerController) onInteract() {
	p, ok := c.active()
	if !ok || c.dissolving != 0 {
		return
	}
	state := c.State()
	if obj, holding := heldObject(state); holding {
		if c.releaseAllowed(ecs.Entity(obj)) {
			c.SetState(playerDropState{obj: obj})
			c.EndState()
			c.unlockGate(ecs.Entity(obj))
			return
		}
		c.startDissolve(ecs.Entity(obj))
		return
	}
	if state != nil && state != playerStateCrouch {
		return
	}
	if state == playerStateCrouch && c.blockedOverhead(p) {
		return
	}

	target := ecs.Entity(p.Looking)
	if !ecs.IsAlive(c.world, target) {
		return
	}
	if canvas, ok := ecs.Get(c.world, target, component.CanvasComponent.Kind()); ok {
		c.collectCanvas(target, canvas)
		return
	}
	if ecs.Has(c.world, target, component.PickupableComponent.Kind()) {
		c.SetState(playerPickUpState{obj: uint64(target)})
		return
	}
	if it, ok := ecs.Get(c.world, target, component.InteractableComponent.Kind()); ok && it.FlavorText != "" && c.deps.Narrator != nil {
		c.deps.Narrator.PlayText(it.FlavorText)
	}
}

// releaseAllowed is the drop precondition: dissolving objects never drop in
// place and gated objects must overlap their gate zone.
func (c *PlayerController) releaseAllowed(obj ecs.Entity) bool {
	pk, ok := ecs.Get(c.world, obj, component.PickupableComponent.Kind())
	if !ok {
		return true
	}
	if pk.Dissolves {
		return false
	}
	if pk.Gate == "" {
		return true
	}
	_, ok = c.gateFor(obj, pk.Gate)
	return ok
}

func (c *PlayerController) gateFor(obj ecs.Entity, id string) (ecs.Entity, bool) {
	r, ok := entityRect(c.world, obj)
	if !ok {
		return 0, false
	}
	var found ecs.Entity
	ecs.ForEach2(c.world, component.GateZoneComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, zone *component.GateZone, t *component.Transform) {
		if found != 0 || zone.ID != id {
			return
		}
		if rectAround(t.X, t.Y, zone.Width, zone.Height).Overlaps(r) {
			found = e
		}
	})
	return found, found != 0
}

// unlockGate seats a gated object in its zone and retires it as an
// interactable.
func (c *PlayerController) unlockGate(obj ecs.Entity) {
	pk, ok := ecs.Get(c.world, obj, component.PickupableComponent.Kind())
	if !ok || pk.Gate == "" {
		return
	}
	zone, ok := c.gateFor(obj, pk.Gate)
	if !ok {
		return
	}
	if zt, ok := ecs.Get(c.world, zone, component.TransformComponent.Kind()); ok {
		if ot, ok := ecs.Get(c.world, obj, component.TransformComponent.Kind()); ok {
			ot.X, ot.Y = zt.X, zt.Y
		}
	}
	gate := pk.Gate
	ecs.Remove(c.world, obj, component.PickupableComponent.Kind())
	ecs.Remove(c.world, obj, component.InteractableComponent.Kind())
	c.world.Events().Push(ecs.Event{Type: ecs.EventGateUnlocked, Data: gate})
}

func (c *PlayerController) startDissolve(obj ecs.Entity) {
	p := c.playerComp()
	duration := defaultDissolve
	if p != nil && p.DissolveSeconds > 0 {
		duration = p.DissolveSeconds
	}
	c.dissolveToken++
	c.dissolving = obj
	if err := ecs.Add(c.world, obj, component.DissolveComponent.Kind(), &component.Dissolve{Token: c.dissolveToken, Duration: duration}); err != nil {
		log.Printf("player: dissolve %s: %v", obj, err)
		c.dissolving = 0
	}
}

// DissolveCurrent reports whether a dissolve task is still the live one.
func (c *PlayerController) DissolveCurrent(token uint64, obj ecs.Entity) bool {
	return c != nil && c.dissolving != 0 && c.dissolving == obj && c.dissolveToken == token
}

// FinishDissolve drops the object, sends it home and ends the carry.
func (c *PlayerController) FinishDissolve(obj ecs.Entity) {
	if c == nil || c.dissolving != obj {
		return
	}
	c.dissolving = 0
	if held, ok := heldObject(c.State()); ok && ecs.Entity(held) == obj {
		c.SetState(playerDropState{obj: held})
		c.EndState()
	}
	if pk, ok := ecs.Get(c.world, obj, component.PickupableComponent.Kind()); ok {
		if t, ok := ecs.Get(c.world, obj, component.TransformComponent.Kind()); ok {
			t.X, t.Y = pk.OriginX, pk.OriginY
		}
	}
}

func (c *PlayerController) collectCanvas(target ecs.Entity, canvas *component.Canvas) {
	if canvas.Collected {
		return
	}
	canvas.Collected = true
	collect := &component.Collect{Frames: collectFrames}
	if t, ok := ecs.Get(c.world, target, component.TransformComponent.Kind()); ok {
		collect.FromX, collect.FromY = t.X, t.Y
	}
	if t, ok := ecs.Get(c.world, c.player, component.TransformComponent.Kind()); ok {
		collect.ToX, collect.ToY = t.X, t.Y
	}
	if p := c.playerComp(); p != nil {
		p.CanMove = false
	}
	_ = ecs.Add(c.world, target, component.CollectComponent.Kind(), collect)
}

func (c *PlayerController) attach(obj uint64) {
	if p := c.playerComp(); p != nil {
		p.Held = obj
	}
	if pk, ok := ecs.Get(c.world, ecs.Entity(obj), component.PickupableComponent.Kind()); ok {
		pk.Close = false
	}
}

func (c *PlayerController) release(obj uint64) {
	if p := c.playerComp(); p != nil && p.Held == obj {
		p.Held = 0
	}
	if pk, ok := ecs.Get(c.world, ecs.Entity(obj), component.PickupableComponent.Kind()); ok {
		pk.Close = false
	}
}

func (c *PlayerController) bringClose(obj uint64, close bool) {
	if pk, ok := ecs.Get(c.world, ecs.Entity(obj), component.PickupableComponent.Kind()); ok {
		pk.Close = close
	}
}

func (c *PlayerController) teleport(x, y float64) {
	if c.deps.Probe != nil {
		c.deps.Probe.Teleport(c.world, c.player, x, y)
		return
	}
	if t, ok := ecs.Get(c.world, c.player, component.TransformComponent.Kind()); ok {
		t.X, t.Y = x, y
	}
}

// Update runs the per-tick movement, probes and prompt after input dispatch.
func (c *PlayerController) Update(w *ecs.World) {
	if c == nil || w == nil || w != c.world {
		return
	}
	p := c.playerComp()
	t, ok := ecs.Get(w, c.player, component.TransformComponent.Kind())
	if p == nil || !ok {
		return
	}
	if !p.SceneActive {
		c.move(t, 0, 0)
		return
	}
	input, _ := ecs.Get(w, c.player, component.InputComponent.Kind())
	if input == nil {
		input = &component.Input{}
	}

	c.rotate(p, input)

	vx := 0.0
	if p.CanMove {
		vx = input.Strafe * p.Speed
	}

	grounded := c.grounded()
	switch {
	case grounded && !p.Grounded:
		if t.Y-p.FallStartY >= p.LandingThreshold && c.deps.Audio != nil {
			c.deps.Audio.JumpLanding()
		}
	case !grounded && p.Grounded:
		p.FallStartY = t.Y
	case !grounded && t.Y < p.FallStartY:
		p.FallStartY = t.Y
	}
	p.Grounded = grounded

	if grounded && p.VerticalVelocity <= 0 {
		p.VerticalVelocity = 0
	} else {
		p.VerticalVelocity -= p.Gravity * tickDT
	}
	c.move(t, vx, -p.VerticalVelocity)

	if c.deps.Audio != nil {
		walk := 0.0
		if grounded && p.Speed > 0 {
			walk = math.Round(math.Abs(vx)) / p.Speed
		}
		c.deps.Audio.SetWalkingVelocity(walk)
	}

	if p.StillCrouching && c.State() == playerStateCrouch && !c.blockedOverhead(p) {
		c.EndState()
	}

	if c.hasDeath && t.Y > c.deathY && c.hasSpawn {
		c.teleport(c.spawnX, c.spawnY)
		p.VerticalVelocity = 0
		p.FallStartY = c.spawnY
	}

	c.carry(p, t)
	c.look(p)
	c.updatePrompt(p)
}

func (c *PlayerController) rotate(p *component.Player, input *component.Input) {
	if !p.CanRotate {
		return
	}
	p.Pitch = math.Max(-maxPitch, math.Min(maxPitch, p.Pitch+input.LookY*p.MouseSensitivity))
	switch {
	case input.LookX < 0:
		p.FacingLeft = true
	case input.LookX > 0:
		p.FacingLeft = false
	case p.CanMove && input.Strafe < 0:
		p.FacingLeft = true
	case p.CanMove && input.Strafe > 0:
		p.FacingLeft = false
	}
}

func (c *PlayerController) move(t *component.Transform, vx, vy float64) {
	if body, ok := ecs.Get(c.world, c.player, component.PhysicsBodyComponent.Kind()); ok && body.Body != nil {
		body.Body.SetVelocity(vx, vy)
		return
	}
	t.X += vx * tickDT
	t.Y += vy * tickDT
}

// carry keeps the held object at arm's length, or close up while inspecting.
func (c *PlayerController) carry(p *component.Player, t *component.Transform) {
	if p.Held == 0 {
		return
	}
	obj := ecs.Entity(p.Held)
	ot, ok := ecs.Get(c.world, obj, component.TransformComponent.Kind())
	if !ok {
		p.Held = 0
		return
	}
	dir := 1.0
	if p.FacingLeft {
		dir = -1
	}
	reach := p.Reach * 0.5
	lift := p.Height * 0.25
	if pk, ok := ecs.Get(c.world, obj, component.PickupableComponent.Kind()); ok && pk.Close {
		reach = p.Reach * 0.2
		lift = p.Height * 0.5
	}
	ot.X = t.X + dir*reach
	ot.Y = t.Y - lift
}

func (c *PlayerController) look(p *component.Player) {
	p.Looking = 0
	if c.deps.Probe == nil {
		return
	}
	dx, dy := lookDirection(p.FacingLeft, p.Pitch)
	if target, ok := c.deps.Probe.LookAt(c.world, c.player, dx, dy, p.Reach); ok {
		p.Looking = uint64(target)
	}
}

func (c *PlayerController) updatePrompt(p *component.Player) {
	prompt, ok := ecs.Get(c.world, c.player, component.PromptComponent.Kind())
	if !ok {
		prompt = &component.Prompt{}
		if err := ecs.Add(c.world, c.player, component.PromptComponent.Kind(), prompt); err != nil {
			return
		}
	}
	prompt.Text = c.promptText(p)
}

func (c *PlayerController) promptText(p *component.Player) string {
	if p.Held != 0 {
		if c.dissolving != 0 {
			return ""
		}
		return promptDrop
	}
	target := ecs.Entity(p.Looking)
	if p.Looking == 0 || !ecs.IsAlive(c.world, target) {
		return ""
	}
	if ecs.Has(c.world, target, component.CanvasComponent.Kind()) {
		return promptCollect
	}
	if ecs.Has(c.world, target, component.PickupableComponent.Kind()) {
		return promptPickUp
	}
	if it, ok := ecs.Get(c.world, target, component.InteractableComponent.Kind()); ok {
		if it.Prompt != "" {
			return it.Prompt
		}
		return promptInteract
	}
	return ""
}
