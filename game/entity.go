package game

import "github.com/go-gl/mathgl/mgl32"

// Entity is the capability set the movement core needs from anything it can
// touch, stand on, push or climb onto.
type Entity interface {
	Handle() Handle
	// Mantleable reports whether a character may climb onto the entity.
	Mantleable() bool
	Origin() mgl32.Vec3
	// Axis is the orientation of the entity. Columns are the local basis vectors.
	Axis() mgl32.Mat3
	ImpactInfo(id int32, point mgl32.Vec3) ImpactInfo
	ApplyImpulse(id int32, point, impulse mgl32.Vec3)
}
