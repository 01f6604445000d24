package pmove

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

// GeometryQuery answers every collision question the movement core asks. All
// calls are synchronous.
type GeometryQuery interface {
	// Trace sweeps a shape through the world.
	Trace(q game.TraceQuery) game.Trace
	// Contents returns the contents at a point.
	Contents(point mgl32.Vec3, mask game.Contents, ignore game.Handle) game.Contents
	// ShapeContents returns the contents the shape overlaps when placed at origin.
	ShapeContents(shape cube.BBox, axis mgl32.Mat3, origin mgl32.Vec3, mask game.Contents, ignore game.Handle) game.Contents
	// Contacts returns every surface touching the shape within the query depth.
	Contacts(q game.ContactQuery) []game.Contact
	// Entity resolves a handle. It returns false if the entity no longer exists.
	Entity(h game.Handle) (game.Entity, bool)
}

// Pusher is implemented by geometry that can move entities out of the way of a
// character. ClipPush pushes whatever the hit trace ran into along the
// remainder of the query and returns the re-clipped trace and the total mass
// that was pushed. A zero mass means nothing moved and the trace is ignored.
type Pusher interface {
	ClipPush(q game.TraceQuery, hit game.Trace) (game.Trace, float32)
}

// MovementBody is the capability set a character exposes to the geometry it
// is linked into.
type MovementBody interface {
	Handle() game.Handle
	Origin() mgl32.Vec3
	Axis() mgl32.Mat3
	Bounds() cube.BBox
	ClipMask() game.Contents
}

// BodyLinker is implemented by geometry that tracks characters as solid
// bodies.
type BodyLinker interface {
	Link(body MovementBody)
	Unlink(h game.Handle)
}
