package game

import "fmt"

// Handle is a weak reference to an entity. It is resolved through the geometry
// collaborator on demand and never keeps the referent alive: a handle whose
// entity has been removed, or whose slot has been reused, resolves to nothing.
type Handle struct {
	ID         uint32
	Generation uint32
}

var (
	// NoEntity is the zero handle.
	NoEntity = Handle{}
	// WorldHandle refers to the static world geometry.
	WorldHandle = Handle{ID: 1, Generation: 1}
)

// IsNone returns true if the handle refers to no entity.
func (h Handle) IsNone() bool {
	return h.ID == 0
}

// IsWorld returns true if the handle refers to the static world.
func (h Handle) IsWorld() bool {
	return h == WorldHandle
}

func (h Handle) String() string {
	if h.IsNone() {
		return "none"
	} else if h.IsWorld() {
		return "world"
	}
	return fmt.Sprintf("#%d.%d", h.ID, h.Generation)
}
