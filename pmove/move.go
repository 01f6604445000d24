package pmove

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/omath"
)

// MovePlayer runs one tick of msec milliseconds with the input set through
// SetPlayerInput.
func (p *Player) MovePlayer(msec int32) MoveResult {
	p.Dbg.advance()
	oldOrigin := p.current.Origin

	p.contact.Walking = false
	p.contact.GroundPlane = false
	p.contact.Ladder = false

	p.framemsec = msec
	p.frametime = float32(msec) * 0.001
	p.playerSpeed = p.walkSpeed

	p.current.ClearFlags(TransientFlags)
	p.current.StepUp = 0

	if p.command.UpMove < JumpThreshold {
		// Jump released.
		p.current.ClearFlags(FlagJumpHeld)
		if !p.IsMantling() {
			p.mantle.StartArmed = true
		}
	}

	if p.current.MovementType == MovementFreeze {
		return p.resultFromState(LocomotionNone, oldOrigin)
	}

	// Move the velocity into the frame of the pusher.
	p.current.Velocity = p.current.Velocity.Sub(p.current.PushVelocity)

	p.viewForward = p.axis.Mul3x1(omath.ToForward(p.viewAngles))
	p.viewRight, _ = omath.Normalize(p.gravityNormal.Cross(p.viewForward))

	switch p.current.MovementType {
	case MovementSpectator:
		p.SpectatorMove()
		p.DropTimers()
		return p.resultFromState(LocomotionSpectator, oldOrigin)
	case MovementNoclip:
		p.NoclipMove()
		p.DropTimers()
		return p.resultFromState(LocomotionNoclip, oldOrigin)
	case MovementDead:
		p.command = Command{}
	}

	p.SetWaterLevel()
	p.CheckGround()
	p.CheckLadder()
	p.CheckDuck()
	p.DropTimers()
	p.UpdateMantleTimers()

	if p.CheckJumpHeldDown() {
		p.PerformMantle()
	}

	l := p.selectLocomotion()
	p.Dbg.Notify(DebugModeMove, true, "locomotion=%v origin=%v vel=%v cmd=%+v", l, p.current.Origin, p.current.Velocity, p.command)
	p.runLocomotion(l)

	p.SetWaterLevel()
	p.CheckGround()

	// Back into the world frame.
	p.current.Velocity = p.current.Velocity.Add(p.current.PushVelocity)
	p.current.PushVelocity = mgl32.Vec3{}

	return p.resultFromState(l, oldOrigin)
}

// Evaluate advances the character by one tick. A character bound to a master
// follows it instead of moving by itself.
func (p *Player) Evaluate(timeStepMsec int32) MoveResult {
	p.contact.WaterLevel = WaterLevelNone
	p.contact.WaterContents = 0
	oldOrigin := p.current.Origin

	if mOrigin, mAxis, ok := p.masterPosition(); ok {
		p.current.Origin = mOrigin.Add(mAxis.Mul3x1(p.current.LocalOrigin))
		p.link()
		if timeStepMsec > 0 {
			p.current.Velocity = p.current.Origin.Sub(oldOrigin).Mul(1000 / float32(timeStepMsec))
		}
		yaw := omath.Yaw(mAxis.Col(0))
		p.masterDeltaYaw = yaw - p.masterYaw
		p.masterYaw = yaw
		return p.resultFromState(LocomotionNone, oldOrigin)
	}

	res := p.MovePlayer(timeStepMsec)
	p.link()
	return res
}
