package pmove

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/omath"
)

// SlideMove moves the character along its velocity for the rest of the tick,
// clipping the velocity against every plane it runs into. It returns true if
// anything was hit, and false when the whole move went through on the first
// trace.
func (p *Player) SlideMove(gravity, stepUp, stepDown, push bool) bool {
	var (
		planes    [MaxClipPlanes]mgl32.Vec3
		numPlanes int
		endVel    mgl32.Vec3
		end       mgl32.Vec3
	)

	dbg := p.Dbg
	groundNormal := p.contact.GroundNormal()

	if gravity {
		endVel = p.current.Velocity.Add(p.gravity.Mul(p.frametime))
		p.current.Velocity = p.current.Velocity.Add(endVel).Mul(0.5)
		if p.contact.GroundPlane {
			p.current.Velocity = omath.ProjectOntoPlane(p.current.Velocity, groundNormal, Overclip)
		}
	} else {
		endVel = p.current.Velocity
	}

	timeLeft := p.frametime

	// Velocity is never turned back against the ground plane or itself.
	if p.contact.GroundPlane {
		planes[numPlanes] = groundNormal
		numPlanes++
	}
	planes[numPlanes], _ = omath.Normalize(p.current.Velocity)
	numPlanes++

	bump := 0
	for ; bump < MaxBumps; bump++ {
		end = p.current.Origin.Add(p.current.Velocity.Mul(timeLeft))
		tr := p.trace(p.current.Origin, end)

		timeLeft -= timeLeft * tr.Fraction
		p.current.Origin = tr.EndPos
		if tr.Fraction >= 1 {
			break
		}

		stepped := false
		if stepUp {
			var done bool
			tr, timeLeft, stepped, done = p.tryStepUp(tr, timeLeft)
			if done {
				break
			}
		}

		if push && !tr.Contact.Entity.IsNone() && !tr.Contact.Entity.IsWorld() {
			if pusher, ok := p.geo.(Pusher); ok {
				q := game.TraceQuery{
					Shape:  p.bounds,
					Axis:   p.axis,
					Start:  p.current.Origin,
					End:    end,
					Mask:   p.clipMask,
					Ignore: p.self,
				}
				// The re-clipped trace starts where the hit left the character.
				if pushed, mass := pusher.ClipPush(q, tr); mass > 0 {
					keep := 1 - omath.ClampFloat(mass-PushMassFloor, 0, PushMassCeiling)/PushMassRange
					p.pushImpulse(tr, keep)
					p.current.Velocity = p.current.Velocity.Mul(keep)
					dbg.Notify(DebugModeSlide, true, "pushed mass=%v vel=%v", mass, p.current.Velocity)

					tr = pushed
					p.current.Origin = tr.EndPos
					timeLeft -= timeLeft * tr.Fraction
					if tr.Fraction >= 1 {
						break
					}
				}
			}
		}

		if !stepped {
			p.collide(tr, p.current.Velocity)
		}

		if numPlanes >= MaxClipPlanes {
			dbg.Notify(DebugModeSlide, true, "too many clip planes at %v", p.current.Origin)
			p.current.Velocity = mgl32.Vec3{}
			return true
		}

		normal := tr.Contact.Normal
		// The same plane as before: nudge velocity out along it to get past
		// epsilon issues with non-axial planes.
		same := false
		for i := 0; i < numPlanes; i++ {
			if normal.Dot(planes[i]) > SamePlaneCos {
				p.current.Velocity = p.current.Velocity.Add(normal)
				same = true
				break
			}
		}
		if same {
			continue
		}
		planes[numPlanes] = normal
		numPlanes++

		var blocked bool
		endVel, blocked = p.clipToPlanes(planes[:numPlanes], endVel)
		if blocked {
			dbg.Notify(DebugModeSlide, true, "stopped dead at a triple plane interaction")
			p.current.Velocity = mgl32.Vec3{}
			return true
		}
	}

	if stepDown && p.contact.GroundPlane {
		stepEnd := p.current.Origin.Add(p.gravityNormal.Mul(p.maxStepHeight))
		down := p.trace(p.current.Origin, stepEnd)
		if down.Fraction > 1e-4 && down.Fraction < 1 {
			p.current.StepUp -= down.EndPos.Sub(p.current.Origin).Dot(p.gravityNormal)
			p.current.Origin = down.EndPos
			p.current.SetFlags(FlagSteppedDown)
			p.current.Velocity = p.current.Velocity.Mul(StepScale)
			dbg.Notify(DebugModeSlide, true, "stepped down to %v", p.current.Origin)
		}
	}

	if gravity {
		p.current.Velocity = endVel
	}

	// Come to a dead stop when the velocity orthogonal to gravity flipped.
	if p.flatten(p.current.Velocity).Dot(p.flatten(endVel)) < 0 {
		p.current.Velocity = omath.Component(p.current.Velocity, p.gravityNormal)
	}
	return bump != 0
}

// tryStepUp attempts to step over the obstacle the flat trace ran into. done is
// set when the stepped path consumed the whole move.
func (p *Player) tryStepUp(flat game.Trace, timeLeft float32) (tr game.Trace, left float32, stepped, done bool) {
	tr, left = flat, timeLeft

	nearGround := p.contact.GroundPlane || p.contact.Ladder
	if !nearGround {
		// Stepping near the ground lets the character move up stairs while jumping.
		down := p.trace(p.current.Origin, p.current.Origin.Add(p.gravityNormal.Mul(p.maxStepHeight)))
		nearGround = down.Fraction < 1 && down.Contact.Normal.Dot(p.up()) > MinWalkNormal
	}
	if !nearGround {
		return
	}

	up := p.trace(p.current.Origin, p.current.Origin.Sub(p.gravityNormal.Mul(p.maxStepHeight)))
	forward := p.trace(up.EndPos, up.EndPos.Add(p.current.Velocity.Mul(timeLeft)))
	down := p.trace(forward.EndPos, forward.EndPos.Add(p.gravityNormal.Mul(p.maxStepHeight)))
	if down.Fraction < 1 && down.Contact.Normal.Dot(p.up()) <= MinWalkNormal {
		return
	}

	if forward.Fraction >= 1 {
		p.commitStep(down.EndPos)
		return tr, 0, true, true
	}
	if forward.Fraction > flat.Fraction {
		left -= left * forward.Fraction
		p.commitStep(down.EndPos)
		return forward, left, true, false
	}
	return
}

// pushImpulse sets the pushed entity moving along with the share of the
// velocity into it that the character keeps.
func (p *Player) pushImpulse(hit game.Trace, keep float32) {
	ent, ok := p.geo.Entity(hit.Contact.Entity)
	if !ok {
		return
	}
	info := ent.ImpactInfo(hit.Contact.ID, hit.Contact.Point)
	if info.InvMass == 0 {
		return
	}
	into := omath.Component(p.current.Velocity, hit.Contact.Normal)
	ent.ApplyImpulse(hit.Contact.ID, hit.Contact.Point, into.Mul(keep/info.InvMass))
}

func (p *Player) commitStep(to mgl32.Vec3) {
	p.current.StepUp -= to.Sub(p.current.Origin).Dot(p.gravityNormal)
	p.current.Origin = to
	p.current.SetFlags(FlagSteppedUp)
	p.current.Velocity = p.current.Velocity.Mul(StepScale)
	p.Dbg.Notify(DebugModeSlide, true, "stepped up to %v (stepUp=%v)", to, p.current.StepUp)
}

// clipToPlanes changes the velocity so it parallels all the clip planes,
// sliding along the crease of two planes when needed. The end velocity is
// clipped the same way and returned. blocked is set when three planes meet.
func (p *Player) clipToPlanes(planes []mgl32.Vec3, endVel mgl32.Vec3) (mgl32.Vec3, bool) {
	vel := p.current.Velocity
	for i := range planes {
		if vel.Dot(planes[i]) >= ClipInteract {
			continue
		}

		clipVel := omath.ProjectOntoPlane(vel, planes[i], Overclip)
		endClipVel := omath.ProjectOntoPlane(endVel, planes[i], Overclip)

		for j := range planes {
			if j == i || clipVel.Dot(planes[j]) >= ClipInteract {
				continue
			}

			clipVel = omath.ProjectOntoPlane(clipVel, planes[j], Overclip)
			endClipVel = omath.ProjectOntoPlane(endClipVel, planes[j], Overclip)

			// Still fine if it does not go back into the first plane.
			if clipVel.Dot(planes[i]) >= 0 {
				continue
			}

			crease, _ := omath.Normalize(planes[i].Cross(planes[j]))
			clipVel = crease.Mul(crease.Dot(vel))
			endClipVel = crease.Mul(crease.Dot(endVel))

			for k := range planes {
				if k == i || k == j || clipVel.Dot(planes[k]) >= ClipInteract {
					continue
				}
				return endVel, true
			}
		}

		p.current.Velocity = clipVel
		return endClipVel, false
	}
	return endVel, false
}
