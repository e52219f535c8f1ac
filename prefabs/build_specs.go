package prefabs

import "gopkg.in/yaml.v3"

// DecodeComponentSpec converts a loosely typed props map, as found in level
// files, into T using its yaml tags.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type CameraComponentSpec struct {
	Zoom       float64 `yaml:"zoom"`
	Smoothness float64 `yaml:"smoothness"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
}

type WindowComponentSpec struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Distance float64 `yaml:"distance"`
}

type InteractableComponentSpec struct {
	Prompt     string `yaml:"prompt"`
	FlavorText string `yaml:"flavor_text"`
}

type PickupComponentSpec struct {
	Width      float64   `yaml:"width"`
	Height     float64   `yaml:"height"`
	Dissolves  bool      `yaml:"dissolves"`
	Gate       string    `yaml:"gate"`
	FlavorText string    `yaml:"flavor_text"`
	Color      YAMLColor `yaml:"color"`
}

type CanvasComponentSpec struct {
	Width     float64   `yaml:"width"`
	Height    float64   `yaml:"height"`
	Preview   string    `yaml:"preview"`
	NextLevel string    `yaml:"next_level"`
	Color     YAMLColor `yaml:"color"`
}

type GateZoneComponentSpec struct {
	ID     string  `yaml:"id"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type DeathPlaneComponentSpec struct {
	Y float64 `yaml:"y"`
}
