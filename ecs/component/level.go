package component

// LevelInfo describes the loaded level.
type LevelInfo struct {
	Name       string
	Index      int
	Script     string
	Dialogue   string
	Width      float64
	Height     float64
	NextLevel  string
	Background string
}

// Fade is the screen fade runtime. Alpha 1 is fully black.
type Fade struct {
	Alpha  float64
	Timer  int
	Frames int
	In     bool
}

var LevelInfoComponent = NewComponent[LevelInfo]()
var FadeComponent = NewComponent[Fade]()
