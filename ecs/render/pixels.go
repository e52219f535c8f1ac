package render

import (
	"math"

	"github.com/milk9111/heartwindow/ecs/system"
)

// MaskFromRGBA keeps the alpha channel of an RGBA readback.
func MaskFromRGBA(pixels []byte, width, height int) system.MaskFrame {
	n := width * height
	if n <= 0 || len(pixels) < 4*n {
		return system.MaskFrame{}
	}
	alpha := make([]byte, n)
	for i := range alpha {
		alpha[i] = pixels[4*i+3]
	}
	return system.MaskFrame{Width: width, Height: height, Alpha: alpha}
}

// MaskToRGBA expands the mask into premultiplied white.
func MaskToRGBA(m system.MaskFrame) []byte {
	out := make([]byte, 4*m.Width*m.Height)
	for i, a := range m.Alpha {
		if 4*i+3 >= len(out) {
			break
		}
		out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = a, a, a, a
	}
	return out
}

// DepthFromRGBA reads depth from the red channel.
func DepthFromRGBA(pixels []byte, width, height int) system.DepthFrame {
	n := width * height
	if n <= 0 || len(pixels) < 4*n {
		return system.DepthFrame{}
	}
	depth := make([]float32, n)
	for i := range depth {
		depth[i] = float32(pixels[4*i]) / 255
	}
	return system.DepthFrame{Width: width, Height: height, Depth: depth}
}

// DepthToRGBA writes depth back as opaque gray.
func DepthToRGBA(d system.DepthFrame) []byte {
	out := make([]byte, 4*d.Width*d.Height)
	for i, v := range d.Depth {
		if 4*i+3 >= len(out) {
			break
		}
		g := uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
		out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = g, g, g, 255
	}
	return out
}
