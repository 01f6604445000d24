package game

// Contents is a bitmask describing what occupies a point or volume of space.
type Contents uint32

const (
	ContentsSolid Contents = 1 << iota
	ContentsWater
	ContentsSlime
	ContentsLava
	ContentsPlayerClip
	ContentsMonsterClip
	ContentsBody
	ContentsCorpse
	ContentsTrigger
)

const (
	// MaskSolid is the set of contents nothing may pass through.
	MaskSolid = ContentsSolid
	// MaskWater is every swimmable liquid.
	MaskWater = ContentsWater | ContentsSlime | ContentsLava
	// MaskPlayerSolid is the clip mask of a living player.
	MaskPlayerSolid = ContentsSolid | ContentsPlayerClip | ContentsBody
	// MaskDeadSolid is the clip mask of a dead player.
	MaskDeadSolid = ContentsSolid | ContentsPlayerClip
	// MaskAll matches any contents.
	MaskAll = ^Contents(0)
)

// Has returns true if any of the given bits are set.
func (c Contents) Has(mask Contents) bool {
	return c&mask != 0
}

// SurfaceFlags describe material properties of a contacted surface.
type SurfaceFlags uint32

const (
	SurfaceSlick SurfaceFlags = 1 << iota
	SurfaceLadder
	SurfaceNoStep
	SurfaceNoImpact
)

// Has returns true if any of the given flags are set.
func (s SurfaceFlags) Has(flags SurfaceFlags) bool {
	return s&flags != 0
}
