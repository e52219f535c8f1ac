package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/milk9111/heartwindow/ecs"
	"github.com/milk9111/heartwindow/ecs/entity"
	"github.com/milk9111/heartwindow/ecs/system"
	"github.com/milk9111/heartwindow/levels"
	"github.com/milk9111/heartwindow/prefabs"
)

type report struct {
	Name      string
	Heart     int
	Real      int
	Entangled int
	Next      string
}

func (r report) String() string {
	return fmt.Sprintf("%-12s heart=%-3d real=%-3d entangled=%-3d next=%s", r.Name, r.Heart, r.Real, r.Entangled, r.Next)
}

// check builds a level the way the game does and verifies its references.
func check(name string, player *prefabs.PlayerSpec, dialogue map[string][]string) (report, error) {
	lvl, err := levels.LoadLevelFromFS(name)
	if err != nil {
		return report{}, err
	}
	world := ecs.NewWorld()
	scene, err := entity.LoadLevelToWorld(world, lvl, player)
	if err != nil {
		return report{}, err
	}
	layers := system.NewWorldLayers()
	for _, root := range scene.Roots {
		if _, err := layers.Scan(world, root); err != nil {
			return report{}, fmt.Errorf("%s: scan: %w", lvl.Name, err)
		}
	}
	if lvl.Dialogue != "" {
		if _, ok := dialogue[lvl.Dialogue]; !ok {
			return report{}, fmt.Errorf("%s: unknown dialogue %q", lvl.Name, lvl.Dialogue)
		}
	}
	if lvl.Script != "" {
		scripts := system.NewLevelScriptSystem(system.LevelScriptDeps{Load: levels.LoadScript, Layers: layers})
		if err := scripts.Load(world, lvl.Name, lvl.Script); err != nil {
			return report{}, err
		}
	}
	if lvl.Next != "" {
		if _, err := levels.LoadLevelFromFS(lvl.Next); err != nil {
			return report{}, fmt.Errorf("%s: next: %w", lvl.Name, err)
		}
	}
	return report{
		Name:      lvl.Name,
		Heart:     len(layers.Heart()),
		Real:      len(layers.Real()),
		Entangled: len(layers.Entangled()),
		Next:      levels.Resolve(lvl.Name, ""),
	}, nil
}

func main() {
	levelName := flag.String("level", "", "check a single level (basename, .json optional)")
	flag.Parse()

	player, err := prefabs.LoadPlayerSpec()
	if err != nil {
		log.Fatal(err)
	}
	dialogue, err := levels.LoadDialogue()
	if err != nil {
		log.Fatal(err)
	}

	names := levels.Names()
	if *levelName != "" {
		names = []string{*levelName}
	}
	failed := false
	for _, name := range names {
		r, err := check(name, player, dialogue)
		if err != nil {
			log.Printf("FAIL %s: %v", name, err)
			failed = true
			continue
		}
		fmt.Println(r)
	}
	if failed {
		os.Exit(1)
	}
}
