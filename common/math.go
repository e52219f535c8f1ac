package common

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Base resolution the game lays out at.
const (
	BaseWidth  = 1280
	BaseHeight = 720
)
