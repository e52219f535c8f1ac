package system

import (
	"sort"

	"github.com/milk9111/heartwindow/common"
)

// Curve maps an elapsed fraction in [0,1] to a magnitude fraction.
type Curve interface {
	Eval(x float64) float64
}

// LinearCurve is the identity ramp.
type LinearCurve struct{}

func (LinearCurve) Eval(x float64) float64 { return common.Clamp01(x) }

// Keyframe is one point of a KeyframeCurve.
type Keyframe struct {
	T float64 `yaml:"t"`
	V float64 `yaml:"v"`
}

// KeyframeCurve interpolates linearly between keyframes sorted by T. Inputs
// before the first or after the last key hold the end values.
type KeyframeCurve []Keyframe

func NewKeyframeCurve(keys []Keyframe) KeyframeCurve {
	out := append(KeyframeCurve(nil), keys...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out
}

func (c KeyframeCurve) Eval(x float64) float64 {
	if len(c) == 0 {
		return common.Clamp01(x)
	}
	if x <= c[0].T {
		return c[0].V
	}
	last := c[len(c)-1]
	if x >= last.T {
		return last.V
	}
	i := sort.Search(len(c), func(i int) bool { return c[i].T >= x })
	a, b := c[i-1], c[i]
	if b.T == a.T {
		return b.V
	}
	f := (x - a.T) / (b.T - a.T)
	return a.V + (b.V-a.V)*f
}

// Ripple is one time-bounded distortion. A newer ripple supersedes an older
// one by pointer identity.
type Ripple struct {
	Start    float64
	Duration float64
	Target   float64
	Curve    Curve
}

// Sample returns the distortion offset at now and whether the ripple has
// finished. Times outside [Start, Start+Duration) yield zero.
func (r *Ripple) Sample(now float64) (float64, bool) {
	if r == nil || r.Duration <= 0 {
		return 0, true
	}
	elapsed := now - r.Start
	if elapsed < 0 {
		return 0, false
	}
	if elapsed >= r.Duration {
		return 0, true
	}
	curve := r.Curve
	if curve == nil {
		curve = LinearCurve{}
	}
	frac := common.Clamp01(elapsed / r.Duration)
	return common.Clamp01(curve.Eval(frac)) * r.Target, false
}
