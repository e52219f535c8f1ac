package component

// WorldLayer identifies which world an entity belongs to.
type WorldLayer int

const (
	LayerReal WorldLayer = iota
	LayerHeart
	LayerEntangled
	LayerMask
)

func (l WorldLayer) String() string {
	switch l {
	case LayerReal:
		return "real"
	case LayerHeart:
		return "heart"
	case LayerEntangled:
		return "entangled"
	case LayerMask:
		return "mask"
	default:
		return "unknown"
	}
}

// LayerRoot is a world container. Geometry points at it via LayerMember.
type LayerRoot struct {
	Name  string
	Layer WorldLayer
}

// LayerMember records the containing root entity.
type LayerMember struct {
	Root uint64
}

// EntangledPair lives on a child of an entangled root and names the two
// halves of one logical object.
type EntangledPair struct {
	Heart uint64
	Real  uint64
}

// Clippable is added by a layer scan. Clipped flips only through the
// registry's Clip/Revert.
type Clippable struct {
	Layer    WorldLayer
	Clipped  bool
	Material string
}

// ClipRecord holds the pre-clip state needed to revert a clip.
type ClipRecord struct {
	Dissolved bool
	Solid     bool
}

var LayerRootComponent = NewComponent[LayerRoot]()
var LayerMemberComponent = NewComponent[LayerMember]()
var EntangledPairComponent = NewComponent[EntangledPair]()
var ClippableComponent = NewComponent[Clippable]()
var ClipRecordComponent = NewComponent[ClipRecord]()
