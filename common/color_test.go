package common

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{in: "#102030", want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}},
		{in: "10203040", want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{in: " #ffffff ", want: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "#fff", err: true},
		{in: "#gg0000", err: true},
	}
	for _, tc := range cases {
		got, err := ParseHexColor(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %v, %v", tc.in, got, err)
		}
	}
}

func TestHexOr(t *testing.T) {
	fallback := color.RGBA{R: 9, A: 255}
	if got := HexOr("", fallback); got != fallback {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := HexOr("nope", fallback); got != fallback {
		t.Fatalf("expected fallback for malformed, got %v", got)
	}
	if got := HexOr("#010203", fallback); got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("unexpected color %v", got)
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(-1) != 0 || Clamp01(2) != 1 || Clamp01(0.25) != 0.25 {
		t.Fatalf("clamp out of range")
	}
}
