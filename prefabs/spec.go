package prefabs

import (
	"fmt"
	"image/color"

	"github.com/milk9111/heartwindow/common"
	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/ecs/system"
	"gopkg.in/yaml.v3"
)

const (
	PlayerFile     = "player.yaml"
	CompositorFile = "compositor.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// PlayerSpec holds the player's movement and interaction tunables.
type PlayerSpec struct {
	Name             string    `yaml:"name"`
	Speed            float64   `yaml:"speed"`
	Gravity          float64   `yaml:"gravity"`
	JumpForce        float64   `yaml:"jump_force"`
	MouseSensitivity float64   `yaml:"mouse_sensitivity"`
	Reach            float64   `yaml:"reach"`
	FadeSeconds      float64   `yaml:"fade_seconds"`
	Width            float64   `yaml:"width"`
	Height           float64   `yaml:"height"`
	CrouchHeight     float64   `yaml:"crouch_height"`
	LandingThreshold float64   `yaml:"landing_threshold"`
	DissolveSeconds  float64   `yaml:"dissolve_seconds"`
	Mass             float64   `yaml:"mass"`
	Color            YAMLColor `yaml:"color"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec](PlayerFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Apply copies the tunables onto p, leaving runtime state alone.
func (s *PlayerSpec) Apply(p *component.Player) {
	if s == nil || p == nil {
		return
	}
	p.Speed = s.Speed
	p.Gravity = s.Gravity
	p.JumpForce = s.JumpForce
	p.MouseSensitivity = s.MouseSensitivity
	p.Reach = s.Reach
	p.FadeSeconds = s.FadeSeconds
	p.Height = s.Height
	p.CrouchHeight = s.CrouchHeight
	p.LandingThreshold = s.LandingThreshold
	p.DissolveSeconds = s.DissolveSeconds
}

// CompositorSpec holds the ripple and transition tunables.
type CompositorSpec struct {
	RippleSeconds     float64           `yaml:"ripple_seconds"`
	RippleTarget      float64           `yaml:"ripple_target"`
	RippleCurve       []system.Keyframe `yaml:"ripple_curve"`
	DepthDownscale    int               `yaml:"depth_downscale"`
	TransitionSeconds float64           `yaml:"transition_seconds"`
	PatternScale      float64           `yaml:"pattern_scale"`
	HeartTint         YAMLColor         `yaml:"heart_tint"`
	MaskEdge          YAMLColor         `yaml:"mask_edge"`
}

func LoadCompositorSpec() (*CompositorSpec, error) {
	spec, err := LoadSpec[CompositorSpec](CompositorFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Config fills a compositor config, keeping defaults for unset fields.
func (s *CompositorSpec) Config() system.CompositorConfig {
	cfg := system.DefaultCompositorConfig()
	if s == nil {
		return cfg
	}
	if s.RippleSeconds > 0 {
		cfg.RippleSeconds = s.RippleSeconds
	}
	if s.RippleTarget != 0 {
		cfg.RippleTarget = s.RippleTarget
	}
	if len(s.RippleCurve) > 0 {
		cfg.RippleCurve = system.NewKeyframeCurve(s.RippleCurve)
	}
	if s.DepthDownscale > 0 {
		cfg.DepthDownscale = s.DepthDownscale
	}
	if s.TransitionSeconds > 0 {
		cfg.TransitionSeconds = s.TransitionSeconds
	}
	if s.PatternScale > 0 {
		cfg.PatternScale = s.PatternScale
	}
	return cfg
}

type YAMLColor struct {
	color.Color
}

// RGBA8 returns the color, or fallback when unset.
func (c YAMLColor) RGBA8(fallback color.RGBA) color.RGBA {
	if c.Color == nil {
		return fallback
	}
	return color.RGBAModel.Convert(c.Color).(color.RGBA)
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	col, err := common.ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = col
	return nil
}
