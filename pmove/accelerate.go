package pmove

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/omath"
)

// Accelerate adds velocity along wishDir until the speed along it reaches
// wishSpeed. It never brakes: friction handles slowing down.
func Accelerate(velocity, wishDir mgl32.Vec3, wishSpeed, accel, dt float32) mgl32.Vec3 {
	current := velocity.Dot(wishDir)
	add := wishSpeed - current
	if add <= 0 {
		return velocity
	}
	delta := accel * dt * wishSpeed
	if delta > add {
		delta = add
	}
	return velocity.Add(wishDir.Mul(delta))
}

// FrictionInput is everything the friction model depends on.
type FrictionInput struct {
	Velocity      mgl32.Vec3
	GravityNormal mgl32.Vec3
	Type          MovementType
	Walking       bool
	// Flying uses the spectator regime.
	Flying     bool
	WaterLevel WaterLevel
	// Slick is set when standing on a surface without friction.
	Slick bool
	// Knockback is set while the knockback timer runs.
	Knockback bool
	Dt        float32
}

// Friction slows the velocity down according to the regime the character is
// in: spectating, walking, swimming or falling.
func Friction(in FrictionInput) mgl32.Vec3 {
	vel := in.Velocity
	if in.Walking {
		// Slope movement is ignored.
		vel = omath.RemoveComponent(vel, in.GravityNormal)
	}

	speed := math32.Sqrt(vel.Dot(vel))
	if speed < 1 {
		// Keep only the gravity component so the character can sink under water.
		along := in.Velocity.Dot(in.GravityNormal)
		if math32.Abs(along) < 1e-5 {
			return mgl32.Vec3{}
		}
		return in.GravityNormal.Mul(along)
	}

	var drop float32
	switch {
	case in.Type == MovementSpectator || in.Flying:
		drop = speed * FlyFriction * in.Dt
	case in.Walking && in.WaterLevel <= WaterLevelFeet:
		if !in.Slick && !in.Knockback {
			control := speed
			if control < StopSpeed {
				control = StopSpeed
			}
			drop = control * GroundFriction * in.Dt
		}
	case in.WaterLevel != WaterLevelNone:
		drop = speed * WaterFriction * float32(in.WaterLevel) * in.Dt
	default:
		drop = speed * AirFriction * in.Dt
	}

	newSpeed := speed - drop
	if newSpeed < 0 {
		newSpeed = 0
	}
	return in.Velocity.Mul(newSpeed / speed)
}

func (p *Player) accelerate(wishDir mgl32.Vec3, wishSpeed, accel float32) {
	p.current.Velocity = Accelerate(p.current.Velocity, wishDir, wishSpeed, accel, p.frametime)
}

func (p *Player) friction() {
	p.current.Velocity = Friction(FrictionInput{
		Velocity:      p.current.Velocity,
		GravityNormal: p.gravityNormal,
		Type:          p.current.MovementType,
		Walking:       p.contact.Walking,
		Flying:        p.flying,
		WaterLevel:    p.contact.WaterLevel,
		Slick:         p.contact.GroundSurface.Has(game.SurfaceSlick),
		Knockback:     p.current.Flags.Has(FlagTimeKnockback),
		Dt:            p.frametime,
	})
}

// cmdScale returns the factor that turns axial move values into a speed, so
// that diagonal input is not faster than straight input. Walking ignores the
// up move since crouching doubles as moving down.
func (p *Player) cmdScale(cmd Command) float32 {
	forward := absInt(int32(cmd.ForwardMove))
	right := absInt(int32(cmd.RightMove))
	var up int32
	if !p.contact.Walking {
		up = absInt(int32(cmd.UpMove))
	}

	max := forward
	if right > max {
		max = right
	}
	if up > max {
		max = up
	}
	if max == 0 {
		return 0
	}

	total := math32.Sqrt(float32(forward*forward + right*right + up*up))
	return p.playerSpeed * float32(max) / (AxialMoveMax * total)
}

func absInt(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
