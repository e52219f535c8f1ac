package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// snapshot describes where the player stands, formatted as a level entity
// so it can be pasted into a level file.
func (g *Game) snapshot() string {
	if g.world == nil || g.scene == nil {
		return ""
	}
	t, ok := ecs.Get(g.world, g.scene.Player, component.TransformComponent.Kind())
	if !ok {
		return ""
	}
	level := ""
	if g.scene.Level != nil {
		level = g.scene.Level.Name
	}
	return fmt.Sprintf(`{"level": %q, "state": %q, "x": %.1f, "y": %.1f}`, level, g.controller.StateName(), t.X, t.Y)
}

// copySnapshot puts the snapshot on the system clipboard when F9 is pressed.
func (g *Game) copySnapshot() {
	if !g.debug || !inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		return
	}
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr != nil {
		log.Printf("clipboard: %v", clipboardErr)
		return
	}
	s := g.snapshot()
	if s == "" {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(s))
	log.Printf("copied %s", s)
}
