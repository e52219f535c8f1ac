package render

import (
	"embed"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	ShaderBlend      = "blend"
	ShaderRipple     = "ripple"
	ShaderTransition = "transition"
)

//go:embed shaders/*.kage
var shaderFS embed.FS

var shaders = map[string]*ebiten.Shader{}

// LoadShader compiles an embedded Kage program once and caches it by name.
func LoadShader(name string) (*ebiten.Shader, error) {
	if name == "" {
		return nil, fmt.Errorf("empty shader name")
	}
	if s := shaders[name]; s != nil {
		return s, nil
	}
	src, err := shaderFS.ReadFile("shaders/" + name + ".kage")
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("shader %s: compile: %w", name, err)
	}
	shaders[name] = s
	return s, nil
}

// ShaderSource returns the embedded program text.
func ShaderSource(name string) ([]byte, error) {
	return shaderFS.ReadFile("shaders/" + name + ".kage")
}
