package pmove

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

// WaterLevel is the discrete immersion depth of a character.
type WaterLevel uint8

const (
	WaterLevelNone WaterLevel = iota
	WaterLevelFeet
	WaterLevelWaist
	WaterLevelHead
)

// ContactState is the ground, ladder and water contact of a character. It is
// recomputed every tick.
type ContactState struct {
	Walking     bool
	GroundPlane bool
	// GroundTrace is the synthetic trace built from the ground contacts.
	GroundTrace   game.Trace
	GroundSurface game.SurfaceFlags
	GroundEntity  game.Handle

	Ladder       bool
	LadderNormal mgl32.Vec3

	WaterLevel    WaterLevel
	WaterContents game.Contents
}

// GroundNormal returns the averaged normal of the ground contacts.
func (c ContactState) GroundNormal() mgl32.Vec3 {
	return c.GroundTrace.Contact.Normal
}
