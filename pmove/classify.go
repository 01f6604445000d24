package pmove

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/omath"
)

// SetWaterLevel samples the contents at the feet, the waist and the head of the
// character. Each level is only checked if the one below it is in water.
func (p *Player) SetWaterLevel() {
	p.contact.WaterLevel = WaterLevelNone
	p.contact.WaterContents = 0

	min, max := p.bounds.Min(), p.bounds.Max()

	feet := p.current.Origin.Sub(p.gravityNormal.Mul(min[2] + 1))
	contents := p.geo.Contents(feet, game.MaskAll, p.self)
	if !contents.Has(game.MaskWater) {
		return
	}
	p.contact.WaterContents = contents
	p.contact.WaterLevel = WaterLevelFeet

	waist := p.current.Origin.Sub(p.gravityNormal.Mul((max[2] - min[2]) * 0.5))
	if !p.geo.Contents(waist, game.MaskAll, p.self).Has(game.MaskWater) {
		return
	}
	p.contact.WaterLevel = WaterLevelWaist

	head := p.current.Origin.Sub(p.gravityNormal.Mul(max[2] - 1))
	if p.geo.Contents(head, game.MaskAll, p.self).Has(game.MaskWater) {
		p.contact.WaterLevel = WaterLevelHead
	}
}

// evaluateContacts collects the surfaces touching the character along gravity.
func (p *Player) evaluateContacts() {
	p.contacts = p.geo.Contacts(game.ContactQuery{
		Shape:  p.bounds,
		Axis:   p.axis,
		Origin: p.current.Origin,
		Dir:    p.gravityNormal,
		Depth:  ContactEpsilon,
		Mask:   p.clipMask,
		Ignore: p.self,
	})
}

// hasGroundContacts returns true if any of the last evaluated contacts
// supports the character.
func (p *Player) hasGroundContacts() bool {
	up := p.up()
	for _, c := range p.contacts {
		if c.Normal.Dot(up) > 0 {
			return true
		}
	}
	return false
}

// groundTraceFromContacts builds a trace standing in for a ground trace out of
// the contact manifold, with the contact normals averaged.
func (p *Player) groundTraceFromContacts() game.Trace {
	tr := game.Trace{EndPos: p.current.Origin, Fraction: 1}
	if len(p.contacts) == 0 {
		return tr
	}
	tr.Fraction = 0
	tr.Contact = p.contacts[0]
	normal := tr.Contact.Normal
	for _, c := range p.contacts[1:] {
		normal = normal.Add(c.Normal)
	}
	tr.Contact.Normal, _ = omath.Normalize(normal)
	return tr
}

// correctAllSolid fabricates flat ground under a character stuck in solid
// geometry.
func (p *Player) correctAllSolid(tr *game.Trace, contents game.Contents) {
	if p.debugLevel {
		p.log.WithField("origin", p.current.Origin).Debug("allsolid")
	}
	if tr.Fraction < 1 {
		return
	}
	*tr = game.Trace{
		Fraction:   0,
		EndPos:     p.current.Origin,
		StartSolid: true,
		Contact: game.Contact{
			Point:    p.current.Origin,
			Normal:   mgl32.Vec3{0, 0, 1},
			Dist:     p.current.Origin.Z(),
			Contents: contents,
			Entity:   game.WorldHandle,
		},
	}
}

// CheckGround classifies the contact of the character with the ground.
func (p *Player) CheckGround() {
	hadGroundContacts := p.hasGroundContacts()

	p.link()
	p.evaluateContacts()

	tr := p.groundTraceFromContacts()

	contents := p.geo.ShapeContents(p.bounds, p.axis, p.current.Origin, game.MaskAll, p.self)
	if contents.Has(game.MaskSolid) {
		p.correctAllSolid(&tr, contents)
	} else if p.mantle.Phase == MantleFixClipping {
		p.setMantlePhase(MantleNotMantling)
	}
	p.contact.GroundTrace = tr

	if tr.Fraction == 1 {
		p.contact.GroundPlane = false
		p.contact.Walking = false
		p.contact.GroundSurface = 0
		p.contact.GroundEntity = game.NoEntity
		return
	}

	p.contact.GroundSurface = tr.Contact.Surface
	p.contact.GroundEntity = tr.Contact.Entity

	up := p.up()
	normal := tr.Contact.Normal
	vel := p.current.Velocity

	// Thrown off the ground.
	if vel.Dot(up) > 0 && vel.Dot(normal) > KickoffSpeed {
		if p.debugLevel {
			p.log.WithField("velocity", vel).Debug("kickoff")
		}
		p.Dbg.Notify(DebugModeGround, true, "kickoff vel=%v normal=%v", vel, normal)
		p.contact.GroundPlane = false
		p.contact.Walking = false
		return
	}

	// Slopes that are too steep are not ground.
	if normal.Dot(up) < MinWalkNormal {
		if p.debugLevel {
			p.log.WithField("normal", normal).Debug("steep")
		}
		if d := vel.Dot(p.gravityNormal); d > MaxSteepSlideSpeed {
			p.current.Velocity = vel.Sub(p.gravityNormal.Mul(d - MaxSteepSlideSpeed))
		}
		p.Dbg.Notify(DebugModeGround, true, "steep normal=%v vel=%v", normal, p.current.Velocity)
		p.contact.GroundPlane = true
		p.contact.Walking = false
		return
	}

	p.contact.GroundPlane = true
	p.contact.Walking = true

	// Solid ground ends a water jump.
	if p.current.Flags.Has(FlagTimeWaterJump) {
		p.current.ClearTimers()
	}

	// Landing after a fall, not after walking down a slope.
	if !hadGroundContacts && vel.Dot(up) < -LandingFallSpeed {
		p.current.ArmTimer(FlagTimeLand, LandingTime)
		p.Dbg.Notify(DebugModeGround, true, "landed with vel=%v", vel)
	}

	p.collide(tr, p.current.Velocity)

	if ent, ok := p.geo.Entity(p.contact.GroundEntity); ok {
		info := ent.ImpactInfo(tr.Contact.ID, tr.Contact.Point)
		if info.InvMass != 0 {
			ent.ApplyImpulse(tr.Contact.ID, tr.Contact.Point, p.current.Velocity.Mul(1/(info.InvMass*GroundImpulseScale)))
		}
	}
}

// CheckDuck sets the height of the collision shape. The character only stands
// up when there is room to do so.
func (p *Player) CheckDuck() {
	var height float32
	if p.current.MovementType == MovementDead {
		height = p.conf.DeadHeight
	} else {
		if p.command.UpMove < 0 && !p.contact.Ladder {
			p.current.SetFlags(FlagDucked)
		} else if p.current.Flags.Has(FlagDucked) {
			end := p.current.Origin.Sub(p.gravityNormal.Mul(p.conf.NormalHeight - p.conf.CrouchHeight))
			if tr := p.trace(p.current.Origin, end); tr.Fraction >= 1 {
				p.current.ClearFlags(FlagDucked)
			}
		}

		if p.current.Flags.Has(FlagDucked) {
			p.playerSpeed = p.crouchSpeed
			height = p.conf.CrouchHeight
		} else {
			height = p.conf.NormalHeight
		}
	}

	if p.bounds.Max()[2] != height {
		p.bounds = game.WithHeight(p.bounds, height)
	}
}

// CheckLadder arms ladder movement when two traces, one a step above the
// other, both touch a ladder surface.
func (p *Player) CheckLadder() {
	if p.current.MovementTime != 0 {
		return
	}
	// Walking backwards on the ground.
	if p.contact.Walking && p.command.ForwardMove <= 0 {
		return
	}
	if p.IsMantling() {
		return
	}

	forward, _ := omath.Normalize(p.flatten(p.viewForward))

	dist := float32(LadderTraceAir)
	if p.contact.Walking {
		dist = LadderTraceWalking
	}

	tr := p.trace(p.current.Origin, p.current.Origin.Add(forward.Mul(dist)))
	if tr.Fraction >= 1 || !tr.Contact.Surface.Has(game.SurfaceLadder) {
		return
	}

	up := p.trace(p.current.Origin, p.current.Origin.Sub(p.gravityNormal.Mul(p.maxStepHeight*LadderStepFraction)))
	tr = p.trace(up.EndPos, up.EndPos.Add(forward.Mul(dist)))
	if tr.Fraction < 1 && tr.Contact.Surface.Has(game.SurfaceLadder) {
		p.contact.Ladder = true
		p.contact.LadderNormal = tr.Contact.Normal
		p.Dbg.Notify(DebugModeLadder, true, "on ladder normal=%v", tr.Contact.Normal)
	}
}

// DropTimers counts the movement timer down, clearing every timer flag once it
// runs out.
func (p *Player) DropTimers() {
	if p.current.MovementTime == 0 {
		return
	}
	if p.framemsec >= p.current.MovementTime {
		p.current.ClearTimers()
		return
	}
	p.current.MovementTime -= p.framemsec
}
