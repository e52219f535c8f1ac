package entity

import (
	"fmt"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
)

const (
	defaultViewWidth  = 1280
	defaultViewHeight = 720
)

func NewCameraAt(w *ecs.World, x, y float64, spec prefabs.CameraComponentSpec) (ecs.Entity, error) {
	smooth := spec.Smoothness
	if smooth == 0 {
		smooth = 0.15
	}
	zoom := spec.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	camera := ecs.CreateEntity(w)
	if err := ecs.Add(w, camera, component.CameraTagComponent.Kind(), &component.CameraTag{}); err != nil {
		return 0, fmt.Errorf("camera: add camera tag: %w", err)
	}
	if err := SetEntityTransform(w, camera, x, y, 0); err != nil {
		return 0, fmt.Errorf("camera: add transform: %w", err)
	}
	if err := ecs.Add(w, camera, component.CameraComponent.Kind(), &component.Camera{
		Zoom:       zoom,
		Smoothness: smooth,
		Width:      orDefault(spec.Width, defaultViewWidth),
		Height:     orDefault(spec.Height, defaultViewHeight),
	}); err != nil {
		return 0, fmt.Errorf("camera: add camera component: %w", err)
	}

	return camera, nil
}

func buildCamera(w *ecs.World, ent levels.Entity, ctx *buildContext) (ecs.Entity, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraComponentSpec](ent.Props)
	if err != nil {
		return 0, err
	}
	e, err := NewCameraAt(w, ent.X, ent.Y, spec)
	if err == nil && ctx != nil && ctx.Scene != nil {
		ctx.Scene.Camera = e
	}
	return e, err
}
