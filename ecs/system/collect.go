package system

import (
	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

// TransitionCapture starts the level-change capture.
type TransitionCapture interface {
	CapturePreTransition(preview, nextLevel string)
}

// CollectSystem pulls collected canvases toward the player, then removes
// them and hands off to the level transition.
type CollectSystem struct {
	capture TransitionCapture
}

func NewCollectSystem(capture TransitionCapture) *CollectSystem {
	return &CollectSystem{capture: capture}
}

func (s *CollectSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach2(w, component.CollectComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, c *component.Collect, t *component.Transform) {
		c.Elapsed++
		f := 1.0
		if c.Frames > 0 {
			f = common.Clamp01(float64(c.Elapsed) / float64(c.Frames))
		}
		t.X = common.Lerp(c.FromX, c.ToX, f)
		t.Y = common.Lerp(c.FromY, c.ToY, f)
		t.ScaleX = 1 - f
		t.ScaleY = 1 - f
		if f < 1 {
			return
		}

		var preview, next string
		if canvas, ok := ecs.Get(w, e, component.CanvasComponent.Kind()); ok {
			preview, next = canvas.Preview, canvas.NextLevel
		}
		ecs.DestroyEntity(w, e)
		if s.capture != nil {
			s.capture.CapturePreTransition(preview, next)
		}
	})
}
