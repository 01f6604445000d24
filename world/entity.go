package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

// Entity is a rigid collection of brushes sharing an origin and orientation.
// Movable entities can be pushed by characters and receive impulses.
type Entity struct {
	w      *World
	handle game.Handle
	name   string

	origin mgl32.Vec3
	axis   mgl32.Mat3

	brushes []*Brush
	solids  []solid

	mantleable bool
	movable    bool
	mass       float32
	velocity   mgl32.Vec3
}

// EntityOptions describe a new entity.
type EntityOptions struct {
	Name   string
	Origin mgl32.Vec3
	// Yaw is the initial heading of the entity in degrees.
	Yaw        float32
	Brushes    []*Brush
	Mantleable bool
	// Movable entities are pushed out of the way of characters. A movable
	// entity needs a positive mass.
	Movable bool
	Mass    float32
}

func (e *Entity) Handle() game.Handle {
	return e.handle
}

// Name returns the name the entity was spawned with.
func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) Mantleable() bool {
	return e.mantleable
}

func (e *Entity) Origin() mgl32.Vec3 {
	e.w.RLock()
	defer e.w.RUnlock()
	return e.origin
}

func (e *Entity) Axis() mgl32.Mat3 {
	e.w.RLock()
	defer e.w.RUnlock()
	return e.axis
}

// Velocity returns the velocity accumulated from impulses.
func (e *Entity) Velocity() mgl32.Vec3 {
	e.w.RLock()
	defer e.w.RUnlock()
	return e.velocity
}

func (e *Entity) invMass() float32 {
	if !e.movable || e.mass <= 0 {
		return 0
	}
	return 1 / e.mass
}

// ImpactInfo reports a zero inverse mass for static entities.
func (e *Entity) ImpactInfo(_ int32, point mgl32.Vec3) game.ImpactInfo {
	e.w.RLock()
	defer e.w.RUnlock()
	return game.ImpactInfo{InvMass: e.invMass(), Position: point, Velocity: e.velocity}
}

// ApplyImpulse changes the velocity of a movable entity.
func (e *Entity) ApplyImpulse(_ int32, _ mgl32.Vec3, impulse mgl32.Vec3) {
	e.w.Lock()
	defer e.w.Unlock()
	if inv := e.invMass(); inv != 0 {
		e.velocity = e.velocity.Add(impulse.Mul(inv))
	}
}

// place recomputes the world space solids of the entity. The world must be
// locked.
func (e *Entity) place() {
	e.solids = e.solids[:0]
	for i, b := range e.brushes {
		e.solids = append(e.solids, b.place(e.origin, e.axis, e.handle, int32(i)))
	}
}
