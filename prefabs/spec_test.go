package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/heartwindow/ecs/component"
	"github.com/milk9111/heartwindow/ecs/system"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedSpecs(t *testing.T) {
	p, err := LoadPlayerSpec()
	if err != nil {
		t.Fatalf("load player: %v", err)
	}
	if p.Speed <= 0 || p.Height <= p.CrouchHeight {
		t.Fatalf("unexpected player tunables: %+v", p)
	}
	var comp component.Player
	p.Apply(&comp)
	if comp.Speed != p.Speed || comp.CrouchHeight != p.CrouchHeight {
		t.Fatalf("apply did not copy tunables: %+v", comp)
	}

	c, err := LoadCompositorSpec()
	if err != nil {
		t.Fatalf("load compositor: %v", err)
	}
	cfg := c.Config()
	if cfg.DepthDownscale != 4 || cfg.RippleTarget != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, ok := cfg.RippleCurve.(system.KeyframeCurve); !ok {
		t.Fatalf("expected keyframe curve, got %T", cfg.RippleCurve)
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	old := Dir
	Dir = dir
	defer func() { Dir = old }()

	if err := os.WriteFile(filepath.Join(dir, CompositorFile), []byte("ripple_target: 9\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCompositorSpec()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := c.Config()
	if cfg.RippleTarget != 9 || cfg.RippleSeconds != system.DefaultCompositorConfig().RippleSeconds {
		t.Fatalf("expected override with defaults, got %+v", cfg)
	}
	if _, ok := ModTime(CompositorFile); !ok {
		t.Fatalf("expected mod time for disk copy")
	}
	if _, ok := ModTime(PlayerFile); ok {
		t.Fatalf("expected no mod time for embedded-only file")
	}
}

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{in: `"#ff0000"`, want: color.NRGBA{R: 0xff, A: 0xff}},
		{in: `"00ff0080"`, want: color.NRGBA{G: 0xff, A: 0x80}},
		{in: `"#fff"`, err: true},
		{in: `"#gg0000"`, err: true},
		{in: `[1, 2]`, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var c YAMLColor
			err := yaml.Unmarshal([]byte(tc.in), &c)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if c.Color != tc.want {
				t.Fatalf("got %v want %v", c.Color, tc.want)
			}
		})
	}

	var unset YAMLColor
	fallback := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	if unset.RGBA8(fallback) != fallback {
		t.Fatalf("expected fallback for unset color")
	}
}

func TestDecodeComponentSpec(t *testing.T) {
	raw := map[string]any{"gate": "door", "dissolves": true, "width": 12.5, "color": "#102030"}
	pk, err := DecodeComponentSpec[PickupComponentSpec](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pk.Gate != "door" || !pk.Dissolves || pk.Width != 12.5 {
		t.Fatalf("unexpected pickup spec: %+v", pk)
	}
	if got := pk.Color.RGBA8(color.RGBA{}); got != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}) {
		t.Fatalf("unexpected color: %v", got)
	}

	empty, err := DecodeComponentSpec[GateZoneComponentSpec](nil)
	if err != nil || empty.ID != "" {
		t.Fatalf("expected zero value for nil props")
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, PlayerFile), []byte("speed: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case name := <-w.Events:
		if name != PlayerFile {
			t.Fatalf("expected %s, got %s", PlayerFile, name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no watcher event")
	}
}

func TestWatcherDrainDeduplicates(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "attic.tengo"), []byte("x := 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	var got []string
	for len(got) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
		got = w.Drain()
	}
	if len(got) != 1 || got[0] != "attic.tengo" {
		t.Fatalf("expected one attic.tengo change, got %v", got)
	}
	if rest := w.Drain(); len(rest) != 0 {
		t.Fatalf("expected empty drain, got %v", rest)
	}
}
