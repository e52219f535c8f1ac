package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.json dialogue.yaml scripts/*.tengo
var LevelsFS embed.FS

// Dir is checked for on-disk scripts before the embedded copies.
var Dir = "levels"

var (
	ErrUnknownLevel = errors.New("levels: unknown level")
	ErrBadWorld     = errors.New("levels: bad layer world")
)

// Level is one scene. Coordinates are world pixels; geometry x/y is the
// center of the box.
type Level struct {
	Name       string   `json:"name"`
	Index      int      `json:"index"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Script     string   `json:"script,omitempty"`
	Dialogue   string   `json:"dialogue,omitempty"`
	Next       string   `json:"next,omitempty"`
	Background string   `json:"background,omitempty"`
	Layers     []Layer  `json:"layers"`
	Entities   []Entity `json:"entities,omitempty"`
}

// Layer is a world container: "real", "heart" or "entangled".
type Layer struct {
	Name     string     `json:"name"`
	World    string     `json:"world"`
	Color    string     `json:"color,omitempty"`
	Geometry []Geometry `json:"geometry,omitempty"`
	Pairs    []Pair     `json:"pairs,omitempty"`
}

type Geometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Material string  `json:"material,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// Pair is one object present in both worlds.
type Pair struct {
	Heart Geometry `json:"heart"`
	Real  Geometry `json:"real"`
}

type Entity struct {
	Type  string                 `json:"type"`
	X     float64                `json:"x"`
	Y     float64                `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// Validate reports the first authoring error.
func (l *Level) Validate() error {
	for _, layer := range l.Layers {
		switch layer.World {
		case "real", "heart":
			if len(layer.Pairs) > 0 {
				return fmt.Errorf("levels: %s layer %q: pairs need an entangled layer: %w", l.Name, layer.Name, ErrBadWorld)
			}
		case "entangled":
			if len(layer.Geometry) > 0 {
				return fmt.Errorf("levels: %s layer %q: entangled layers hold pairs only: %w", l.Name, layer.Name, ErrBadWorld)
			}
		default:
			return fmt.Errorf("levels: %s layer %q world %q: %w", l.Name, layer.Name, layer.World, ErrBadWorld)
		}
	}
	return nil
}

func LoadLevelFromFS(name string) (*Level, error) {
	file := cleanLevelName(name) + ".json"
	data, err := fs.ReadFile(LevelsFS, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("levels: read %s: %w", name, ErrUnknownLevel)
		}
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = cleanLevelName(name)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Names lists the embedded levels in play order.
func Names() []string {
	entries, err := fs.Glob(LevelsFS, "*.json")
	if err != nil {
		return nil
	}
	type item struct {
		name  string
		index int
	}
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e, ".json")
		lvl, err := LoadLevelFromFS(name)
		if err != nil {
			continue
		}
		items = append(items, item{name: name, index: lvl.Index})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].index != items[j].index {
			return items[i].index < items[j].index
		}
		return items[i].name < items[j].name
	})
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.name)
	}
	return out
}

// NextAfter resolves the level that follows name: its explicit Next, else
// the next one in play order. ok is false after the last level.
func NextAfter(name string) (string, bool) {
	name = cleanLevelName(name)
	if lvl, err := LoadLevelFromFS(name); err == nil && lvl.Next != "" {
		return lvl.Next, true
	}
	names := Names()
	for i, n := range names {
		if n == name && i+1 < len(names) {
			return names[i+1], true
		}
	}
	return "", false
}

// Resolve picks the level to load after current. An explicit id wins;
// otherwise the next level in order, wrapping to the first after the last.
func Resolve(current, id string) string {
	if id != "" {
		return cleanLevelName(id)
	}
	if next, ok := NextAfter(current); ok {
		return next
	}
	if names := Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// LoadScript prefers an on-disk copy under Dir/scripts.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return LevelsFS.ReadFile(clean)
}

// DialogueFile is the narration table, script id to lines.
const DialogueFile = "dialogue.yaml"

// LoadDialogue reads the narration table, preferring an on-disk copy under
// Dir.
func LoadDialogue() (map[string][]string, error) {
	data, err := os.ReadFile(filepath.Join(Dir, DialogueFile))
	if err != nil {
		data, err = LevelsFS.ReadFile(DialogueFile)
	}
	if err != nil {
		return nil, fmt.Errorf("levels: read dialogue: %w", err)
	}
	out := map[string][]string{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("levels: unmarshal dialogue: %w", err)
	}
	return out, nil
}

func cleanLevelName(name string) string {
	s := filepath.ToSlash(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "levels/")
	return strings.TrimSuffix(s, ".json")
}

func cleanScriptPath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "levels/")
	s = strings.TrimPrefix(s, "scripts/")
	return path.Join("scripts", s)
}
