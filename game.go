package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/heartwindow/assets"
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/ecs/entity"
	"github.com/milk9111/heartwindow/ecs/render"
	"github.com/milk9111/heartwindow/ecs/system"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
	"golang.org/x/image/colornames"
)

type gameMode int

const (
	modeMenu gameMode = iota
	modePlaying
	modePaused
)

type Game struct {
	debug bool
	mode  gameMode
	quit  bool

	world *ecs.World
	scene *entity.Scene

	playerSpec *prefabs.PlayerSpec
	compSpec   *prefabs.CompositorSpec
	audioSpec  *prefabs.AudioSpec

	layers      *system.WorldLayers
	physics     *system.PhysicsSystem
	camera      *system.CameraSystem
	window      *system.WindowSystem
	controller  *system.PlayerController
	dispatcher  *system.InputDispatcher
	input       *system.EbitenInput
	dialogue    *system.DialogueSystem
	scripts     *system.LevelScriptSystem
	coordinator *system.TransitionCoordinator
	compositor  *system.Compositor
	backend     *render.Backend
	cues        *system.CueQueue
	sound       *system.SoundSystem
	renderer    *system.RenderSystem
	hud         *system.HUD
	sim         *ecs.Scheduler

	sceneImg *ebiten.Image

	mainUI  *ebitenui.UI
	pauseUI *ebitenui.UI

	pendingLevel string
	hasPending   bool
	begun        bool

	watcher *prefabs.Watcher
}

// NewGame loads the tunables, wires the systems and builds the first level.
func NewGame(levelName string, debug, skipMenu, watch bool) (*Game, error) {
	g := &Game{debug: debug, mode: modeMenu}
	if skipMenu {
		g.mode = modePlaying
	}

	var err error
	if g.playerSpec, err = prefabs.LoadPlayerSpec(); err != nil {
		return nil, fmt.Errorf("load player spec: %w", err)
	}
	if g.compSpec, err = prefabs.LoadCompositorSpec(); err != nil {
		return nil, fmt.Errorf("load compositor spec: %w", err)
	}
	if g.audioSpec, err = prefabs.LoadAudioSpec(); err != nil {
		return nil, fmt.Errorf("load audio spec: %w", err)
	}
	scripts, err := levels.LoadDialogue()
	if err != nil {
		return nil, err
	}

	g.layers = system.NewWorldLayers()
	g.physics = system.NewPhysicsSystem()
	g.camera = system.NewCameraSystem()
	g.dispatcher = system.NewInputDispatcher()
	g.input = system.NewEbitenInput()
	g.dialogue = system.NewDialogueSystem(scripts)
	g.cues = system.NewCueQueue()

	g.backend = render.NewBackend(g.renderOptions())
	g.compositor = system.NewCompositor(g.backend, g, g.compSpec.Config())
	g.window = system.NewWindowSystem(g.layers, g.compositor)
	g.controller = system.NewPlayerController(system.PlayerDeps{
		Layers:   g.layers,
		Window:   g.window,
		Probe:    g.physics,
		Mask:     g.compositor,
		Audio:    g.cues,
		Narrator: g.dialogue,
	})
	g.controller.Debug = debug
	g.controller.Activate(g.dispatcher)
	g.dispatcher.Subscribe(component.PauseDown, g.pause)

	g.scripts = system.NewLevelScriptSystem(system.LevelScriptDeps{
		Load:     levels.LoadScript,
		Dialogue: g.dialogue,
		Window:   g.controller,
		Layers:   g.layers,
	})
	g.coordinator = system.NewTransitionCoordinator(g.controller, g.dialogue, g.compositor, g.scripts)

	var bank system.SoundBank
	if b, err := assets.NewBank(g.audioSpec.Bank()); err != nil {
		log.Printf("audio disabled: %v", err)
	} else {
		bank = b
	}
	g.sound = system.NewSoundSystem(bank, g.cues)
	g.audioSpec.Apply(g.sound)

	g.renderer = system.NewRenderSystem()
	g.renderer.SetWindowColor(g.compSpec.MaskEdge.RGBA8(colornames.White))
	g.hud = system.NewHUD(g.dialogue)

	g.sim = ecs.NewScheduler(
		system.NewInputSystem(g.input, g.dispatcher),
		g.controller,
		g.window,
		g.physics,
		g.camera,
		system.NewDissolveSystem(g.controller),
		system.NewCollectSystem(g.compositor),
		system.NewFadeSystem(),
		g.dialogue,
		g.scripts,
		g.sound,
	)

	g.sceneImg = ebiten.NewImage(common.BaseWidth, common.BaseHeight)
	g.mainUI = NewMainUI(g)
	g.pauseUI = NewPauseUI(g)

	if levelName == "" {
		if names := levels.Names(); len(names) > 0 {
			levelName = names[0]
		}
	}
	if err := g.loadLevel(levelName); err != nil {
		return nil, err
	}

	if watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, levels.Dir, filepath.Join(levels.Dir, "scripts"))
		if err != nil {
			log.Printf("hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	g.updateCursor()
	return g, nil
}

func (g *Game) renderOptions() render.Options {
	return render.Options{HeartTint: g.compSpec.HeartTint.RGBA8(render.DefaultHeartTint)}
}

// ChangeLevel queues a level swap. An empty id means the level after the
// current one.
func (g *Game) ChangeLevel(id string) {
	current := ""
	if g.scene != nil && g.scene.Level != nil {
		current = g.scene.Level.Name
	}
	g.pendingLevel = levels.Resolve(current, id)
	g.hasPending = true
	g.begun = false
}

func (g *Game) loadLevel(name string) error {
	lvl, err := levels.LoadLevelFromFS(name)
	if err != nil {
		return err
	}
	world := ecs.NewWorld()
	scene, err := entity.LoadLevelToWorld(world, lvl, g.playerSpec)
	if err != nil {
		return err
	}

	g.layers.Reset()
	for _, root := range scene.Roots {
		if _, err := g.layers.Scan(world, root); err != nil {
			return fmt.Errorf("scan %s: %w", lvl.Name, err)
		}
	}
	g.physics.Reset()
	g.camera.Reset()

	g.world = world
	g.scene = scene
	g.compositor.SetWorld(world)
	g.cues.SetWorld(world)
	if err := g.scripts.Load(world, lvl.Name, lvl.Script); err != nil {
		log.Printf("level %s: %v", lvl.Name, err)
	}
	g.coordinator.Complete(world, scene.Player, lvl.Dialogue)
	g.camera.Snap(world)
	log.Printf("loaded level %s", lvl.Name)
	return nil
}

// advanceLevel freezes the old level once, then swaps when the transition
// material has finished playing.
func (g *Game) advanceLevel() {
	if !g.hasPending {
		return
	}
	if !g.begun {
		g.coordinator.Begin(g.world, g.scene.Player)
		g.begun = true
	}
	if g.compositor.Transitioning() && !g.compositor.TransitionDone() {
		return
	}
	next := g.pendingLevel
	g.hasPending = false
	g.begun = false
	if err := g.loadLevel(next); err != nil {
		log.Printf("change level %s: %v", next, err)
		g.compositor.ClearTransition()
		g.coordinator.Complete(g.world, g.scene.Player, "")
	}
}

func (g *Game) reload() {
	for _, name := range g.watcher.Drain() {
		switch {
		case name == prefabs.PlayerFile:
			spec, err := prefabs.LoadPlayerSpec()
			if err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			g.playerSpec = spec
			if p, ok := ecs.Get(g.world, g.scene.Player, component.PlayerComponent.Kind()); ok {
				spec.Apply(p)
			}
		case name == prefabs.CompositorFile:
			spec, err := prefabs.LoadCompositorSpec()
			if err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			g.compSpec = spec
			g.compositor.SetConfig(spec.Config())
			g.backend.SetOptions(g.renderOptions())
			g.renderer.SetWindowColor(spec.MaskEdge.RGBA8(colornames.White))
		case name == prefabs.AudioFile:
			spec, err := prefabs.LoadAudioSpec()
			if err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			g.audioSpec = spec
			spec.Apply(g.sound)
		case name == levels.DialogueFile:
			scripts, err := levels.LoadDialogue()
			if err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			g.dialogue.SetScripts(scripts)
		case strings.HasSuffix(name, ".tengo"):
			lvl := g.scene.Level
			if lvl == nil || filepath.Base(lvl.Script) != name {
				continue
			}
			if err := g.scripts.Load(g.world, lvl.Name, lvl.Script); err != nil {
				log.Printf("reload %s: %v", name, err)
			}
		default:
			continue
		}
		log.Printf("reloaded %s", name)
	}
}

func (g *Game) Update() error {
	if g.quit {
		if g.watcher != nil {
			_ = g.watcher.Close()
		}
		return ebiten.Termination
	}
	if g.watcher != nil {
		g.reload()
	}

	switch g.mode {
	case modeMenu:
		g.mainUI.Update()
		return nil
	case modePaused:
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.resume()
			return nil
		}
		g.pauseUI.Update()
		return nil
	}

	g.advanceLevel()
	g.sim.Update(g.world)
	g.copySnapshot()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(g.world, g.sceneImg)
	g.compositor.PreRender()
	g.compositor.Composite(render.Wrap(g.sceneImg), render.Wrap(screen))
	g.hud.Draw(g.world, screen)

	if g.debug {
		system.DrawPhysicsDebug(g.physics.Space(), g.world, screen)
		system.DrawPlayerStateDebug(g.world, g.layers, screen)
	}

	switch g.mode {
	case modeMenu:
		g.mainUI.Draw(screen)
	case modePaused:
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) pause() {
	if g.mode != modePlaying {
		return
	}
	g.mode = modePaused
	g.updateCursor()
}

func (g *Game) resume() {
	g.mode = modePlaying
	g.input.Reset()
	g.updateCursor()
}

func (g *Game) openMainMenu() {
	g.mode = modeMenu
	g.updateCursor()
}

func (g *Game) requestQuit() {
	g.quit = true
}

func (g *Game) updateCursor() {
	if g.mode == modePlaying {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		return
	}
	ebiten.SetCursorMode(ebiten.CursorModeVisible)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
