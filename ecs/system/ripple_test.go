package system

import (
	"math"
	"testing"
)

func TestRippleLinearSamples(t *testing.T) {
	r := &Ripple{Start: 0, Duration: 1, Target: 5, Curve: LinearCurve{}}
	tests := []struct {
		name string
		now  float64
		want float64
		done bool
	}{
		{name: "start", now: 0, want: 0},
		{name: "half", now: 0.5, want: 2.5},
		{name: "end", now: 1.0, want: 0, done: true},
		{name: "expired", now: 1.2, want: 0, done: true},
		{name: "before start", now: -0.1, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, done := r.Sample(tc.now)
			if math.Abs(got-tc.want) > 1e-9 || done != tc.done {
				t.Fatalf("Sample(%v) = %v,%v want %v,%v", tc.now, got, done, tc.want, tc.done)
			}
		})
	}
}

func TestRippleBoundedByTarget(t *testing.T) {
	curve := NewKeyframeCurve([]Keyframe{{T: 1, V: 1.5}, {T: 0, V: -0.2}, {T: 0.3, V: 0.8}})
	r := &Ripple{Start: 2, Duration: 0.5, Target: 3, Curve: curve}
	for i := 0; i <= 100; i++ {
		now := 2 + float64(i)*0.005
		got, _ := r.Sample(now)
		if got < 0 || got > r.Target {
			t.Fatalf("Sample(%v) = %v outside [0,%v]", now, got, r.Target)
		}
	}
}

func TestKeyframeCurveInterpolates(t *testing.T) {
	curve := NewKeyframeCurve([]Keyframe{{T: 0.5, V: 1}, {T: 0, V: 0}, {T: 1, V: 0.5}})
	tests := []struct {
		x    float64
		want float64
	}{
		{x: -1, want: 0},
		{x: 0.25, want: 0.5},
		{x: 0.5, want: 1},
		{x: 0.75, want: 0.75},
		{x: 2, want: 0.5},
	}
	for _, tc := range tests {
		if got := curve.Eval(tc.x); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Eval(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
	if got := (KeyframeCurve{}).Eval(0.3); got != 0.3 {
		t.Fatalf("empty curve should be linear, got %v", got)
	}
}

func TestNilRippleIsDone(t *testing.T) {
	var r *Ripple
	if got, done := r.Sample(1); got != 0 || !done {
		t.Fatalf("nil ripple should be finished with zero offset")
	}
}
