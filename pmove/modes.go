package pmove

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/omath"
)

// Locomotion is the movement mode that owns a tick. Exactly one is selected
// per tick.
type Locomotion uint8

const (
	LocomotionNone Locomotion = iota
	LocomotionDead
	LocomotionMantle
	LocomotionLadder
	LocomotionWaterJump
	LocomotionSwim
	LocomotionWalk
	LocomotionAir
	LocomotionSpectator
	LocomotionNoclip
	LocomotionFly
)

func (l Locomotion) String() string {
	switch l {
	case LocomotionNone:
		return "none"
	case LocomotionDead:
		return "dead"
	case LocomotionMantle:
		return "mantle"
	case LocomotionLadder:
		return "ladder"
	case LocomotionWaterJump:
		return "waterjump"
	case LocomotionSwim:
		return "swim"
	case LocomotionWalk:
		return "walk"
	case LocomotionAir:
		return "air"
	case LocomotionSpectator:
		return "spectator"
	case LocomotionNoclip:
		return "noclip"
	case LocomotionFly:
		return "fly"
	}
	return "unknown"
}

// selectLocomotion picks the mode for the tick in fixed precedence: dead,
// flying, mantle, ladder, water jump, swimming, walking and finally air.
func (p *Player) selectLocomotion() Locomotion {
	switch {
	case p.current.MovementType == MovementDead:
		return LocomotionDead
	case p.flying:
		return LocomotionFly
	case p.IsMantling():
		return LocomotionMantle
	case p.contact.Ladder:
		return LocomotionLadder
	case p.current.Flags.Has(FlagTimeWaterJump):
		return LocomotionWaterJump
	case p.contact.WaterLevel > WaterLevelFeet:
		return LocomotionSwim
	case p.contact.Walking:
		return LocomotionWalk
	default:
		return LocomotionAir
	}
}

func (p *Player) runLocomotion(l Locomotion) {
	switch l {
	case LocomotionDead:
		p.DeadMove()
	case LocomotionMantle:
		p.MantleMove()
	case LocomotionLadder:
		p.LadderMove()
	case LocomotionWaterJump:
		p.WaterJumpMove()
	case LocomotionSwim:
		p.WaterMove()
	case LocomotionWalk:
		p.WalkMove()
	case LocomotionAir:
		p.AirMove()
	case LocomotionSpectator:
		p.SpectatorMove()
	case LocomotionNoclip:
		p.NoclipMove()
	case LocomotionFly:
		p.FlyMove()
	}
}

// flyWish returns the wish velocity of the free flying modes.
func (p *Player) flyWish(scale float32, withUp bool) mgl32.Vec3 {
	if scale == 0 {
		return mgl32.Vec3{}
	}
	wish := p.viewForward.Mul(float32(p.command.ForwardMove)).Add(p.viewRight.Mul(float32(p.command.RightMove))).Mul(scale)
	if withUp {
		wish = wish.Sub(p.gravityNormal.Mul(scale * float32(p.command.UpMove)))
	}
	return wish
}

// flattenView projects the view vectors onto the plane orthogonal to gravity.
func (p *Player) flattenView() {
	p.viewForward = p.flatten(p.viewForward)
	p.viewRight = p.flatten(p.viewRight)
}

// WaterJumpMove leaves the character without control while it jumps out of
// water. The timer is cancelled as soon as it falls again.
func (p *Player) WaterJumpMove() {
	p.SlideMove(true, true, false, false)

	if p.current.Velocity.Dot(p.gravityNormal) > 0 {
		p.current.ClearTimers()
	}
}

// WaterMove swims. Without input the character slowly sinks.
func (p *Player) WaterMove() {
	if p.CheckWaterJump() {
		p.WaterJumpMove()
		return
	}

	p.friction()

	scale := p.cmdScale(p.command)
	var wish mgl32.Vec3
	if scale == 0 {
		wish = p.gravityNormal.Mul(WaterSinkSpeed)
	} else {
		wish = p.flyWish(scale, true)
	}

	wishDir, wishSpeed := omath.Normalize(wish)
	if max := p.playerSpeed * SwimScale; wishSpeed > max {
		wishSpeed = max
	}
	p.accelerate(wishDir, wishSpeed, WaterAccelerate)

	// Make sure slopes can be walked up easily under water.
	if normal := p.contact.GroundNormal(); p.contact.GroundPlane && p.current.Velocity.Dot(normal) < 0 {
		speed := vecLen(p.current.Velocity)
		vel, _ := omath.Normalize(omath.ProjectOntoPlane(p.current.Velocity, normal, Overclip))
		p.current.Velocity = vel.Mul(speed)
	}

	p.Dbg.Notify(DebugModeWater, true, "swim level=%v wish=%v vel=%v", p.contact.WaterLevel, wish, p.current.Velocity)
	p.SlideMove(false, false, false, false)
}

// FlyMove moves freely in all directions, colliding with the world. It runs
// instead of every other mode while flying is enabled through SetFlying.
func (p *Player) FlyMove() {
	p.friction()

	wishDir, wishSpeed := omath.Normalize(p.flyWish(p.cmdScale(p.command), true))
	p.accelerate(wishDir, wishSpeed, FlyAccelerate)

	p.SlideMove(false, false, false, false)
}

// AirMove has little control over the velocity and falls with gravity.
func (p *Player) AirMove() {
	p.friction()

	scale := p.cmdScale(p.command)

	p.flattenView()
	p.viewForward, _ = omath.Normalize(p.viewForward)
	p.viewRight, _ = omath.Normalize(p.viewRight)

	wish := p.flatten(p.viewForward.Mul(float32(p.command.ForwardMove)).Add(p.viewRight.Mul(float32(p.command.RightMove))))
	wishDir, wishSpeed := omath.Normalize(wish)
	wishSpeed *= scale

	p.accelerate(wishDir, wishSpeed, AirAccelerate)

	// A plane too steep to stand on still has to be slid along.
	if p.contact.GroundPlane {
		p.current.Velocity = omath.ProjectOntoPlane(p.current.Velocity, p.contact.GroundNormal(), Overclip)
	}

	p.SlideMove(true, false, false, false)
}

// WalkMove moves the character along the ground.
func (p *Player) WalkMove() {
	normal := p.contact.GroundNormal()

	if p.contact.WaterLevel > WaterLevelWaist && p.viewForward.Dot(normal) > 0 {
		// Begin swimming.
		p.WaterMove()
		return
	}

	if p.CheckJump() {
		if p.contact.WaterLevel > WaterLevelFeet {
			p.WaterMove()
		} else {
			p.AirMove()
		}
		return
	}

	p.friction()

	scale := p.cmdScale(p.command)

	p.flattenView()
	p.viewForward, _ = omath.Normalize(omath.ProjectOntoPlane(p.viewForward, normal, Overclip))
	p.viewRight, _ = omath.Normalize(omath.ProjectOntoPlane(p.viewRight, normal, Overclip))

	wish := p.viewForward.Mul(float32(p.command.ForwardMove)).Add(p.viewRight.Mul(float32(p.command.RightMove)))
	wishDir, wishSpeed := omath.Normalize(wish)
	wishSpeed *= scale

	// Wading or walking on the bottom is slower.
	if p.contact.WaterLevel != WaterLevelNone {
		waterScale := 1 - (1-SwimScale)*(float32(p.contact.WaterLevel)/3)
		if max := p.playerSpeed * waterScale; wishSpeed > max {
			wishSpeed = max
		}
	}

	// Getting hit or standing on a slick surface takes away full control.
	slippery := p.contact.GroundSurface.Has(game.SurfaceSlick) || p.current.Flags.Has(FlagTimeKnockback)
	accel := float32(GroundAccelerate)
	if slippery {
		accel = AirAccelerate
	}
	p.accelerate(wishDir, wishSpeed, accel)
	if slippery {
		p.current.Velocity = p.current.Velocity.Add(p.gravity.Mul(p.frametime))
	}

	oldVel := p.current.Velocity
	p.current.Velocity = omath.ProjectOntoPlane(p.current.Velocity, normal, Overclip)

	// Speed is not lost going up or down a slope, unless the velocity was
	// clipped into the opposite direction.
	if oldVel.Dot(p.current.Velocity) > 0 {
		newSq := p.current.Velocity.Dot(p.current.Velocity)
		oldSq := oldVel.Dot(oldVel)
		if newSq > 1 && oldSq > 1 {
			p.current.Velocity = p.current.Velocity.Mul(math32.Sqrt(oldSq / newSq))
		}
	}

	// Standing still.
	if hz := p.flatten(p.current.Velocity); hz.Dot(hz) == 0 {
		return
	}

	p.Dbg.Notify(DebugModeMove, true, "walk wishDir=%v wishSpeed=%v vel=%v", wishDir, wishSpeed, p.current.Velocity)
	p.SlideMove(false, true, true, true)
}

// DeadMove slows a dead character on the ground down with extra friction.
func (p *Player) DeadMove() {
	if !p.contact.Walking {
		return
	}

	dir, speed := omath.Normalize(p.current.Velocity)
	speed -= DeadFriction
	if speed <= 0 {
		p.current.Velocity = mgl32.Vec3{}
		return
	}
	p.current.Velocity = dir.Mul(speed)
}

// NoclipMove flies through everything.
func (p *Player) NoclipMove() {
	speed := vecLen(p.current.Velocity)
	if speed < NoclipStopSpeed {
		p.current.Velocity = mgl32.Vec3{}
	} else {
		if stop := p.playerSpeed * 0.3; speed < stop {
			speed = stop
		}
		drop := speed * NoclipFriction * p.frametime
		newSpeed := speed - drop
		if newSpeed < 0 {
			newSpeed = 0
		}
		p.current.Velocity = p.current.Velocity.Mul(newSpeed / speed)
	}

	wishDir, wishSpeed := omath.Normalize(p.flyWish(p.cmdScale(p.command), true))
	p.accelerate(wishDir, wishSpeed, GroundAccelerate)

	p.current.Origin = p.current.Origin.Add(p.current.Velocity.Mul(p.frametime))
}

// SpectatorMove flies without gravity, colliding with the world.
func (p *Player) SpectatorMove() {
	p.friction()

	wishDir, wishSpeed := omath.Normalize(p.flyWish(p.cmdScale(p.command), false))
	p.accelerate(wishDir, wishSpeed, FlyAccelerate)

	p.SlideMove(false, false, false, false)
}

// LadderMove climbs. Looking up or down selects the direction of the forward
// input, strafing moves along the ladder plane.
func (p *Player) LadderMove() {
	gN := p.gravityNormal
	ladderNormal := p.contact.LadderNormal

	// Stick to the ladder.
	p.current.Velocity = omath.Component(p.current.Velocity, gN).Sub(ladderNormal.Mul(LadderStickSpeed))

	upscale := omath.ClampFloat((gN.Mul(-1).Dot(p.viewForward)+0.5)*2.5, -1, 1)

	scale := p.cmdScale(p.command)
	wish := gN.Mul(-0.9 * upscale * scale * float32(p.command.ForwardMove))

	if p.command.RightMove != 0 {
		right := p.flatten(p.viewRight)
		right, _ = omath.Normalize(omath.RemoveComponent(right, ladderNormal))
		// Looking away from the ladder.
		if ladderNormal.Dot(p.viewForward) > 0 {
			right = right.Mul(-1)
		}
		wish = wish.Add(right.Mul(2 * scale * float32(p.command.RightMove)))
	}

	if p.command.UpMove != 0 {
		wish = wish.Add(gN.Mul(-0.5 * scale * float32(p.command.UpMove)))
	}

	p.friction()

	wishDir, wishSpeed := omath.Normalize(wish)
	p.accelerate(wishDir, wishSpeed, GroundAccelerate)

	// Cap the vertical velocity.
	up := p.current.Velocity.Dot(gN.Mul(-1))
	if up < -LadderSpeed {
		p.current.Velocity = p.current.Velocity.Add(gN.Mul(up + LadderSpeed))
	} else if up > LadderSpeed {
		p.current.Velocity = p.current.Velocity.Add(gN.Mul(up - LadderSpeed))
	}

	// Without vertical input gravity is compensated towards a standstill.
	if wishDir.Dot(gN) == 0 {
		if p.current.Velocity.Dot(gN) < 0 {
			p.current.Velocity = p.current.Velocity.Add(p.gravity.Mul(p.frametime))
			if p.current.Velocity.Dot(gN) > 0 {
				p.current.Velocity = omath.RemoveComponent(p.current.Velocity, gN)
			}
		} else {
			p.current.Velocity = p.current.Velocity.Sub(p.gravity.Mul(p.frametime))
			if p.current.Velocity.Dot(gN) < 0 {
				p.current.Velocity = omath.RemoveComponent(p.current.Velocity, gN)
			}
		}
	}

	p.Dbg.Notify(DebugModeLadder, true, "ladder wish=%v vel=%v", wish, p.current.Velocity)
	p.SlideMove(false, p.command.ForwardMove > 0, false, false)
}

// CheckJump jumps if the jump input was pressed again and there is room to
// stand. The added velocity reaches the maximum jump height under gravity.
func (p *Player) CheckJump() bool {
	if p.command.UpMove < JumpThreshold {
		return false
	}
	// Jump has to be released first.
	if p.current.Flags.Has(FlagJumpHeld) {
		return false
	}
	if p.current.Flags.Has(FlagDucked) {
		return false
	}

	p.contact.GroundPlane = false
	p.contact.Walking = false
	p.current.SetFlags(FlagJumpHeld | FlagJumped)

	dir, g := omath.Normalize(p.gravity.Mul(-1))
	p.current.Velocity = p.current.Velocity.Add(dir.Mul(math32.Sqrt(2 * p.maxJumpHeight * g)))

	p.Dbg.Notify(DebugModeMove, true, "jumped vel=%v", p.current.Velocity)
	return true
}

// CheckWaterJump launches the character out of the water when it swims at
// waist level against a ledge with free space above it.
func (p *Player) CheckWaterJump() bool {
	if p.current.MovementTime != 0 {
		return false
	}
	if p.contact.WaterLevel != WaterLevelWaist {
		return false
	}

	forward, _ := omath.Normalize(p.flatten(p.viewForward))

	spot := p.current.Origin.Add(forward.Mul(WaterJumpReach)).Sub(p.gravityNormal.Mul(WaterJumpFloor))
	if !p.geo.Contents(spot, game.MaskAll, p.self).Has(game.ContentsSolid) {
		return false
	}

	spot = spot.Sub(p.gravityNormal.Mul(WaterJumpClear))
	if p.geo.Contents(spot, game.MaskAll, p.self) != 0 {
		return false
	}

	p.current.Velocity = p.viewForward.Mul(WaterJumpForward).Sub(p.gravityNormal.Mul(WaterJumpUp))
	p.current.ArmTimer(FlagTimeWaterJump, WaterJumpTime)

	p.Dbg.Notify(DebugModeWater, true, "water jump vel=%v", p.current.Velocity)
	return true
}
