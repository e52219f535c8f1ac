package system

import (
	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
)

type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

// Reset forgets cached entities. Called between levels.
func (cs *CameraSystem) Reset() {
	cs.camEntity = 0
	cs.targetEntity = 0
}

// Update eases the camera transform (top-left corner) toward the player.
func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if !ecs.IsAlive(w, cs.camEntity) {
		cs.camEntity, _ = ecs.First(w, component.CameraComponent.Kind())
	}
	if !ecs.IsAlive(w, cs.targetEntity) {
		cs.targetEntity, _ = ecs.First(w, component.PlayerTagComponent.Kind())
	}

	cam, ok := ecs.Get(w, cs.camEntity, component.CameraComponent.Kind())
	if !ok {
		return
	}
	camTransform, ok := ecs.Get(w, cs.camEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}
	target, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	viewW, viewH := cameraView(cam)
	goalX := target.X - viewW/2
	goalY := target.Y - viewH/2
	s := cam.Smoothness
	if s <= 0 || s > 1 {
		s = 1
	}
	camTransform.X += (goalX - camTransform.X) * s
	camTransform.Y += (goalY - camTransform.Y) * s
}

// Snap centers the camera on the player immediately.
func (cs *CameraSystem) Snap(w *ecs.World) {
	cam, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return
	}
	c, _ := ecs.Get(w, cam, component.CameraComponent.Kind())
	camTransform, ok := ecs.Get(w, cam, component.TransformComponent.Kind())
	if !ok {
		return
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	target, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	viewW, viewH := cameraView(c)
	camTransform.X = target.X - viewW/2
	camTransform.Y = target.Y - viewH/2
}

// cameraView returns the visible world size.
func cameraView(cam *component.Camera) (float64, float64) {
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return cam.Width / zoom, cam.Height / zoom
}

// CameraOrigin returns the camera's top-left world position and zoom.
func CameraOrigin(w *ecs.World) (x, y, zoom float64, ok bool) {
	cam, found := ecs.First(w, component.CameraComponent.Kind())
	if !found {
		return 0, 0, 1, false
	}
	c, _ := ecs.Get(w, cam, component.CameraComponent.Kind())
	t, found := ecs.Get(w, cam, component.TransformComponent.Kind())
	if !found {
		return 0, 0, 1, false
	}
	zoom = c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return t.X, t.Y, zoom, true
}
