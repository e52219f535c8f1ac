package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

// SpawnPoint marks where the player (re)appears in a level.
type SpawnPoint struct{}

var SpawnPointComponent = NewComponent[SpawnPoint]()

// DeathPlane marks the height below which the player is returned to spawn.
type DeathPlane struct{}

var DeathPlaneComponent = NewComponent[DeathPlane]()

// MaskGeometry marks entities drawn by the flat mask pass.
type MaskGeometry struct{}

var MaskGeometryComponent = NewComponent[MaskGeometry]()
