package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

// ScriptLoader resolves a behaviour script by name.
type ScriptLoader func(name string) ([]byte, error)

// ScriptPlayer starts narration by id.
type ScriptPlayer interface {
	PlayScript(id string)
}

// WindowToggle gates the window ability.
type WindowToggle interface {
	SetWindowEnabled(enabled bool)
}

// LevelScriptDeps are the hosts a level script can reach. Nil members turn
// the matching host function into a no-op.
type LevelScriptDeps struct {
	Load     ScriptLoader
	Dialogue ScriptPlayer
	Window   WindowToggle
	Layers   *WorldLayers
}

// Handlers are optional; scripts assign the ones they need, e.g.
// `on_start = func(host, level) { ... }`.
const levelScriptPrelude = `
on_start := undefined
on_end := undefined
on_gate := undefined
on_cut := undefined
`

const levelScriptDispatch = `
if __event == "start" {
	if is_function(on_start) { on_start(__host, __level) }
} else if __event == "end" {
	if is_function(on_end) { on_end(__host, __level) }
} else if __event == "gate" {
	if is_function(on_gate) { on_gate(__host, __level, __arg) }
} else if __event == "cut" {
	if is_function(on_cut) { on_cut(__host, __level, __arg) }
}
`

// LevelScriptSystem runs the level's behaviour script. It forwards gate and
// cut events from the world queue to the script once per tick.
type LevelScriptSystem struct {
	deps LevelScriptDeps

	world    *ecs.World
	level    string
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

func NewLevelScriptSystem(deps LevelScriptDeps) *LevelScriptSystem {
	return &LevelScriptSystem{deps: deps}
}

// Load compiles script for level. An empty script name unloads. A failed
// compile leaves the level without behaviours.
func (s *LevelScriptSystem) Load(w *ecs.World, level, script string) error {
	if s == nil {
		return nil
	}
	s.world = w
	s.level = level
	s.name = script
	s.compiled = nil
	s.state = &tengo.Map{Value: map[string]tengo.Object{}}
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if s.deps.Load == nil {
		return fmt.Errorf("script: load %s: no loader", script)
	}
	src, err := s.deps.Load(script)
	if err != nil {
		return fmt.Errorf("script: load %s: %w", script, err)
	}

	full := levelScriptPrelude + "\n" + string(src) + "\n" + levelScriptDispatch
	sc := tengo.NewScript([]byte(full))
	_ = sc.Add("__event", "")
	_ = sc.Add("__host", map[string]any{})
	_ = sc.Add("__level", "")
	_ = sc.Add("__arg", "")
	_ = sc.Add("__state", map[string]any{})
	sc.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := sc.Compile()
	if err != nil {
		return fmt.Errorf("script: compile %s: %w", script, err)
	}
	s.compiled = compiled
	return nil
}

func (s *LevelScriptSystem) Loaded() bool { return s != nil && s.compiled != nil }

// Start runs on_start. Called once the level transition has finished.
func (s *LevelScriptSystem) Start() { s.fire("start", tengo.UndefinedValue) }

// End runs on_end. Called before the level changes.
func (s *LevelScriptSystem) End() { s.fire("end", tengo.UndefinedValue) }

func (s *LevelScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	for _, ev := range w.Events().Drain() {
		if w != s.world {
			continue
		}
		switch ev.Type {
		case ecs.EventGateUnlocked:
			id, _ := ev.Data.(string)
			s.fire("gate", &tengo.String{Value: id})
		case ecs.EventCutApplied:
			res, _ := ev.Data.(CutResult)
			s.fire("cut", &tengo.Int{Value: int64(res.Clipped)})
		}
	}
}

func (s *LevelScriptSystem) fire(event string, arg tengo.Object) {
	if s == nil || s.compiled == nil {
		return
	}
	if err := s.run(event, arg); err != nil {
		log.Printf("script: %s %s: %v", s.name, event, err)
	}
}

func (s *LevelScriptSystem) run(event string, arg tengo.Object) error {
	if err := s.compiled.Set("__event", event); err != nil {
		return err
	}
	if err := s.compiled.Set("__host", s.host()); err != nil {
		return err
	}
	if err := s.compiled.Set("__level", s.level); err != nil {
		return err
	}
	if err := s.compiled.Set("__arg", arg); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *LevelScriptSystem) host() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["play_script"] = &tengo.UserFunction{Name: "play_script", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.deps.Dialogue == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		id := strings.TrimSpace(scriptString(args[0]))
		if id == "" {
			return tengo.FalseValue, nil
		}
		s.deps.Dialogue.PlayScript(id)
		return tengo.TrueValue, nil
	}}

	values["set_window_enabled"] = &tengo.UserFunction{Name: "set_window_enabled", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.deps.Window == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		s.deps.Window.SetWindowEnabled(!args[0].IsFalsy())
		return tengo.TrueValue, nil
	}}

	values["reveal"] = &tengo.UserFunction{Name: "reveal", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.Int{}, nil
		}
		return &tengo.Int{Value: int64(s.reveal(scriptString(args[0])))}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, scriptString(a))
		}
		log.Printf("script: %s: %s", s.name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// reveal clips every registered entity under the named layer root and
// returns how many changed.
func (s *LevelScriptSystem) reveal(rootName string) int {
	if s.deps.Layers == nil || s.world == nil || rootName == "" {
		return 0
	}
	w := s.world
	roots := map[uint64]bool{}
	ecs.ForEach(w, component.LayerRootComponent.Kind(), func(e ecs.Entity, lr *component.LayerRoot) {
		if lr.Name == rootName {
			roots[uint64(e)] = true
		}
	})
	if len(roots) == 0 {
		log.Printf("script: %s: reveal %q: no such layer root", s.name, rootName)
		return 0
	}

	n := 0
	ecs.ForEach(w, component.LayerMemberComponent.Kind(), func(e ecs.Entity, m *component.LayerMember) {
		if !roots[m.Root] || !s.deps.Layers.IsRegistered(e) {
			return
		}
		c, ok := ecs.Get(w, e, component.ClippableComponent.Kind())
		if !ok || c.Clipped {
			return
		}
		if err := s.deps.Layers.Clip(w, e); err == nil {
			n++
		}
	})
	ecs.ForEach(w, component.EntangledPairComponent.Kind(), func(e ecs.Entity, pair *component.EntangledPair) {
		m, ok := ecs.Get(w, e, component.LayerMemberComponent.Kind())
		if !ok || !roots[m.Root] {
			return
		}
		for _, half := range []uint64{pair.Heart, pair.Real} {
			obj := ecs.Entity(half)
			c, ok := ecs.Get(w, obj, component.ClippableComponent.Kind())
			if !ok || c.Clipped {
				continue
			}
			if err := s.deps.Layers.Clip(w, obj); err == nil {
				n++
			}
		}
	})
	return n
}

func scriptString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
