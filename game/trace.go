package game

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// TraceQuery describes a shape swept from Start to End.
type TraceQuery struct {
	// Shape is the local bounding box of the swept shape. A zero box traces a point.
	Shape cube.BBox
	// Axis is the orientation of the shape.
	Axis mgl32.Mat3

	Start, End mgl32.Vec3
	Mask       Contents
	// Ignore is an entity the trace passes through, usually the tracer itself.
	Ignore Handle
}

// PointQuery returns a query tracing a single point.
func PointQuery(start, end mgl32.Vec3, mask Contents, ignore Handle) TraceQuery {
	return TraceQuery{Axis: mgl32.Ident3(), Start: start, End: end, Mask: mask, Ignore: ignore}
}

// Contact is the surface information of a trace hit or a resting contact.
type Contact struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	// Dist is the plane distance of the contacted surface along Normal.
	Dist     float32
	Contents Contents
	Surface  SurfaceFlags
	Entity   Handle
	// ID identifies the contacted part of the entity (brush or body index).
	ID int32
}

// Trace is the immutable result of a TraceQuery.
type Trace struct {
	// Fraction is the traveled fraction of the query in [0, 1].
	Fraction float32
	EndPos   mgl32.Vec3
	// StartSolid is set when the shape started embedded in solid geometry.
	StartSolid bool
	Contact    Contact
}

// Blocked returns true if the trace did not complete.
func (t Trace) Blocked() bool {
	return t.Fraction < 1
}

// ContactQuery asks for every surface touching Shape at Origin within Depth
// along Dir.
type ContactQuery struct {
	Shape  cube.BBox
	Axis   mgl32.Mat3
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
	Depth  float32
	Mask   Contents
	Ignore Handle
}

// ImpactInfo describes how an entity reacts to an impulse.
type ImpactInfo struct {
	InvMass  float32
	Position mgl32.Vec3
	Velocity mgl32.Vec3
}
