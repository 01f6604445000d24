package pmove

import "github.com/go-gl/mathgl/mgl32"

// MoveResult captures the outcome of a single tick.
type MoveResult struct {
	Locomotion Locomotion

	Origin   mgl32.Vec3
	Velocity mgl32.Vec3
	// Delta is the displacement of the tick.
	Delta mgl32.Vec3

	Walking     bool
	GroundPlane bool
	Ladder      bool
	WaterLevel  WaterLevel

	Flags MovementFlags
	Phase MantlePhase
}

func (p *Player) resultFromState(l Locomotion, oldOrigin mgl32.Vec3) MoveResult {
	return MoveResult{
		Locomotion:  l,
		Origin:      p.current.Origin,
		Velocity:    p.current.Velocity,
		Delta:       p.current.Origin.Sub(oldOrigin),
		Walking:     p.contact.Walking,
		GroundPlane: p.contact.GroundPlane,
		Ladder:      p.contact.Ladder,
		WaterLevel:  p.contact.WaterLevel,
		Flags:       p.current.Flags,
		Phase:       p.mantle.Phase,
	}
}
