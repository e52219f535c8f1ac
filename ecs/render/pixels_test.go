package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/milk9111/heartwindow/ecs/system"
)

func TestMaskRoundTrip(t *testing.T) {
	pixels := []byte{
		0, 0, 0, 0, 255, 255, 255, 255,
		9, 9, 9, 128, 0, 0, 0, 0,
	}
	m := MaskFromRGBA(pixels, 2, 2)
	if m.Width != 2 || m.Height != 2 || m.Covered() != 2 {
		t.Fatalf("unexpected mask: %+v", m)
	}
	if m.At(1, 0) != 255 || m.At(0, 1) != 128 || m.At(0, 0) != 0 {
		t.Fatalf("alpha not kept: %v", m.Alpha)
	}
	out := MaskToRGBA(m)
	if !bytes.Equal(out[4:8], []byte{255, 255, 255, 255}) || !bytes.Equal(out[8:12], []byte{128, 128, 128, 128}) {
		t.Fatalf("unexpected upload: %v", out)
	}
}

func TestMaskFromShortReadback(t *testing.T) {
	if m := MaskFromRGBA(make([]byte, 4), 2, 2); m.Width != 0 || len(m.Alpha) != 0 {
		t.Fatalf("expected empty mask, got %+v", m)
	}
}

func TestDepthRoundTrip(t *testing.T) {
	d := system.DepthFrame{Width: 3, Height: 1, Depth: []float32{0, 0.4, 1.5}}
	pixels := DepthToRGBA(d)
	if pixels[3] != 255 || pixels[8] != 255 || pixels[4] != 102 {
		t.Fatalf("unexpected pixels: %v", pixels)
	}
	back := DepthFromRGBA(pixels, 3, 1)
	if back.Depth[0] != 0 || back.Depth[2] != 1 {
		t.Fatalf("unexpected depth: %v", back.Depth)
	}
	if diff := back.Depth[1] - 0.4; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected ~0.4, got %v", back.Depth[1])
	}
}

func TestShadersEmbedded(t *testing.T) {
	for _, name := range []string{ShaderBlend, ShaderRipple, ShaderTransition} {
		src, err := ShaderSource(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.Contains(string(src), "func Fragment(") {
			t.Fatalf("%s: missing fragment entry point", name)
		}
	}
}
