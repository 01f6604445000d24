package pmove

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/assert"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/omath"
)

// MantlePhase is a phase of climbing onto a ledge. Phases only ever advance in
// declaration order, unless the mantle is cancelled.
type MantlePhase uint8

const (
	MantleNotMantling MantlePhase = iota
	MantleHanging
	MantlePulling
	MantleShiftingHands
	MantlePushing
	// MantleFixClipping holds after the push until the character is no longer
	// embedded in solid geometry.
	MantleFixClipping
	mantlePhaseCount
)

func (m MantlePhase) String() string {
	switch m {
	case MantleNotMantling:
		return "not mantling"
	case MantleHanging:
		return "hanging"
	case MantlePulling:
		return "pulling"
	case MantleShiftingHands:
		return "shifting hands"
	case MantlePushing:
		return "pushing"
	case MantleFixClipping:
		return "fix clipping"
	}
	return "unknown"
}

// MantleState is the state of the mantle maneuver of a character.
type MantleState struct {
	Phase MantlePhase
	// TimeRemaining is the time left in the current phase in milliseconds.
	TimeRemaining float32

	// Waypoints of the climb. They are relative to Entity when it is set.
	PullStart mgl32.Vec3
	PullEnd   mgl32.Vec3
	PushEnd   mgl32.Vec3

	Entity   game.Handle
	EntityID int32

	// JumpHeldTime grows while jump is held.
	JumpHeldTime float32
	// StartArmed is set once jump was released outside a mantle.
	StartArmed bool
}

// IsMantling returns true while a visible mantle phase is running.
func (p *Player) IsMantling() bool {
	return p.mantle.Phase != MantleNotMantling && p.mantle.Phase != MantleFixClipping
}

func (p *Player) MantlePhase() MantlePhase {
	return p.mantle.Phase
}

// CancelMantle stops the mantle immediately, whatever phase it is in.
func (p *Player) CancelMantle() {
	p.setMantlePhase(MantleNotMantling)
	p.mantle.TimeRemaining = 0
}

func (p *Player) setMantlePhase(to MantlePhase) {
	assert.IsTrue(to < mantlePhaseCount, "unknown mantle phase %d", to)
	from := p.mantle.Phase
	if from == to {
		return
	}
	p.mantle.Phase = to
	p.Dbg.Notify(DebugModeMantle, true, "mantle phase %v -> %v", from, to)
	if p.onMantle != nil {
		p.onMantle(from, to)
	}
}

// CheckJumpHeldDown returns true once jump was held long enough to attempt a
// mantle.
func (p *Player) CheckJumpHeldDown() bool {
	return p.mantle.JumpHeldTime > p.conf.Mantle.JumpHoldTrigger
}

// MantleReach returns the maximum vertical and horizontal distance of a
// mantle target, and how far to look for one.
func (p *Player) MantleReach() (vertical, horizontal, traceDist float32) {
	armReach := p.conf.NormalHeight * p.conf.Mantle.Reach
	armVertical := p.conf.NormalHeight * p.conf.Mantle.Height

	if p.current.Flags.Has(FlagDucked) {
		vertical = p.conf.CrouchHeight + armVertical
	} else {
		vertical = p.conf.NormalHeight + armVertical
	}
	return vertical, armReach, armReach
}

// PerformMantle looks for a ledge in front of the character and starts a
// mantle onto it if it can be reached.
func (p *Player) PerformMantle() {
	if p.IsMantling() || !p.mantle.StartArmed || p.flying {
		return
	}

	p.mantle.Entity = game.NoEntity
	p.mantle.EntityID = 0

	forward, _ := omath.Normalize(omath.ToForward(p.viewAngles))
	maxVertical, maxHorizontal, traceDist := p.MantleReach()
	eye := p.EyePosition()

	tr := p.MantleTargetTrace(traceDist, eye, forward)
	if tr.Fraction >= 1 {
		return
	}

	end, ok := p.ComputeMantlePathForTarget(maxVertical, maxHorizontal, eye, tr)
	if !ok {
		return
	}

	up := p.up()
	phase := MantlePushing
	if end.Dot(up) < eye.Dot(up) {
		if p.contact.GroundPlane {
			phase = MantlePulling
		} else {
			phase = MantleHanging
		}
	}
	p.StartMantle(phase, eye, p.current.Origin, end)
}

// MantleTargetTrace casts the gaze of the character. When the gaze misses, a
// thin slab through the middle of the body is swept forward instead. A hit on
// an entity that can not be mantled counts as a miss.
func (p *Player) MantleTargetTrace(dist float32, eye, forward mgl32.Vec3) game.Trace {
	tr := p.geo.Trace(game.PointQuery(eye, eye.Add(forward.Mul(dist)), game.MaskSolid, p.self))

	if tr.Fraction >= 1 {
		flat := omath.ProjectOntoPlane(forward, p.up(), 1)
		tr = p.geo.Trace(game.TraceQuery{
			Shape:  game.MidlineSlab(p.bounds, MantleSlabThickness),
			Axis:   p.axis,
			Start:  p.current.Origin,
			End:    p.current.Origin.Add(flat.Mul(dist)),
			Mask:   game.MaskSolid,
			Ignore: p.self,
		})
	}

	if tr.Contact.Entity.IsNone() {
		return tr
	}
	if ent, ok := p.geo.Entity(tr.Contact.Entity); ok && ent.Mantleable() {
		p.mantle.Entity = tr.Contact.Entity
		p.mantle.EntityID = tr.Contact.ID
		return tr
	}
	p.mantle.Entity = game.NoEntity
	tr.Fraction = 1
	return tr
}

// ComputeMantlePathForTarget finds where the character ends up when mantling
// onto the target and checks that the path there is free and within reach. The
// mantled entity is cleared when the target can not be mantled.
func (p *Player) ComputeMantlePathForTarget(maxVertical, maxHorizontal float32, eye mgl32.Vec3, target game.Trace) (mgl32.Vec3, bool) {
	end, ok := p.mantleableSurface(maxVertical, target)
	if ok {
		ok = p.mantlePathClear(p.current.Origin, end)
	}
	if ok {
		d := end.Sub(eye)
		upDist := math32.Abs(d.Dot(p.up()))
		nonUpDist := math32.Sqrt(math32.Max(0, d.Dot(d)-upDist*upDist))
		if upDist > maxVertical || nonUpDist > maxHorizontal {
			p.Dbg.Notify(DebugModeMantle, true, "target out of reach: up=%v hz=%v (max %v, %v)", upDist, nonUpDist, maxVertical, maxHorizontal)
			ok = false
		}
	}
	if !ok {
		p.mantle.Entity = game.NoEntity
		p.mantle.EntityID = 0
	}
	return end, ok
}

// crouchShape returns the collision shape at crouch height.
func (p *Player) crouchShape() cube.BBox {
	return game.WithHeight(p.bounds, p.conf.CrouchHeight)
}

// mantleableSurface moves a crouched shape up from the target point until it
// fits. A fit found right above an obstacle that can not be mantled is
// rejected, as is a surface that is too steep to stand on.
func (p *Player) mantleableSurface(maxVertical float32, target game.Trace) (mgl32.Vec3, bool) {
	if target.Fraction < 1 {
		if ent, ok := p.geo.Entity(target.Contact.Entity); !ok || !ent.Mantleable() {
			return mgl32.Vec3{}, false
		}
	}

	up := p.up()
	shape := p.crouchShape()

	orthogonal := omath.RemoveComponent(target.Contact.Point, up)
	parallel := omath.Component(target.Contact.Point, up)
	originParallel := omath.Component(p.current.Origin, up)

	used := vecLen(parallel.Sub(originParallel))
	pos := orthogonal.Add(parallel)

	possible := false
	lastMantleable := true
	searching := used < maxVertical
	for searching {
		tr := p.traceShape(shape, pos, pos)
		if tr.Fraction >= 1 {
			possible = lastMantleable
			break
		}

		// A shelf above something that can not be mantled may still be mantled.
		ent, ok := p.geo.Entity(tr.Contact.Entity)
		lastMantleable = !ok || ent.Mantleable()

		if used >= maxVertical {
			searching = false
			continue
		}
		inc := math32.Max(math32.Min(maxVertical-used, MantleTestIncrement), 1)
		parallel = parallel.Add(up.Mul(inc))
		used = vecLen(parallel.Sub(originParallel))
		pos = orthogonal.Add(parallel)
	}

	if !possible {
		p.Dbg.Notify(DebugModeMantle, true, "no mantleable surface within reach (used=%v)", used)
		return mgl32.Vec3{}, false
	}

	floor := p.traceShape(shape, pos, pos.Add(p.gravityNormal.Mul(MantleTestIncrement)))
	if floor.Fraction < 1 {
		if flatness := floor.Contact.Normal.Dot(up); flatness < p.conf.Mantle.MinFlatness {
			p.Dbg.Notify(DebugModeMantle, true, "surface too steep: %v < %v", flatness, p.conf.Mantle.MinFlatness)
			return mgl32.Vec3{}, false
		}
	}
	return pos, true
}

// mantlePathClear checks that a crouched shape can move straight up from the
// start to the height of the end point.
func (p *Player) mantlePathClear(start, end mgl32.Vec3) bool {
	up := p.up()
	moveUpEnd := omath.RemoveComponent(start, up).Add(omath.Component(end, up))
	tr := p.traceShape(p.crouchShape(), start, moveUpEnd)
	if tr.Fraction < 1 {
		p.Dbg.Notify(DebugModeMantle, true, "no vertical clearance along mantle path (fraction=%v)", tr.Fraction)
		return false
	}
	return true
}

// StartMantle begins a mantle in the given phase. Velocity is cancelled so it
// does not carry over once the mantle completes.
func (p *Player) StartMantle(phase MantlePhase, eye, start, end mgl32.Vec3) {
	assert.IsTrue(phase >= MantleHanging && phase <= MantlePushing, "mantle can not start in phase %v", phase)

	p.mantle.StartArmed = false
	vel := p.current.Velocity
	p.current.Velocity = mgl32.Vec3{}

	ent, hasEntity := p.geo.Entity(p.mantle.Entity)
	if !hasEntity {
		p.mantle.Entity = game.NoEntity
	}

	switch phase {
	case MantleHanging:
		// Hanging off a movable object pulls it along.
		if hasEntity {
			if info := ent.ImpactInfo(p.mantle.EntityID, end); info.InvMass != 0 {
				ent.ApplyImpulse(p.mantle.EntityID, end, vel.Mul(1/(info.InvMass*HangImpulseScale)))
			}
		}
	case MantlePushing:
		p.current.SetFlags(FlagDucked)
	}

	p.setMantlePhase(phase)
	p.mantle.TimeRemaining = p.conf.Mantle.PhaseDuration(phase)

	// Pull up to about two thirds of the eye height.
	pullEnd := eye.Add(p.gravityNormal.Mul(p.conf.NormalHeight / 3))

	if hasEntity {
		start = worldToLocal(ent, start)
		end = worldToLocal(ent, end)
		pullEnd = worldToLocal(ent, pullEnd)
	}

	p.mantle.PushEnd = end
	if phase == MantlePulling || phase == MantleHanging {
		p.mantle.PullStart = start
		p.mantle.PullEnd = pullEnd
	} else {
		p.mantle.PullEnd = start
	}
}

// UpdateMantleTimers advances the jump hold timer and the mantle phases. A
// large tick may run through several phases, carrying the leftover time over.
func (p *Player) UpdateMantleTimers() {
	left := float32(p.framemsec)

	if p.current.Flags.Has(FlagJumpHeld) {
		p.mantle.JumpHeldTime += float32(p.framemsec)
	} else {
		p.mantle.JumpHeldTime = 0
	}

	if !p.IsMantling() {
		return
	}

	for p.IsMantling() && left >= p.mantle.TimeRemaining {
		left -= p.mantle.TimeRemaining

		var next MantlePhase
		switch p.mantle.Phase {
		case MantleHanging:
			next = MantlePulling
		case MantlePulling:
			next = MantleShiftingHands
		case MantleShiftingHands:
			next = MantlePushing
			p.current.SetFlags(FlagDucked)
		case MantlePushing:
			next = MantleFixClipping
			p.current.SetFlags(FlagDucked)
			p.viewAngles[2] = 0
		}
		p.setMantlePhase(next)
		p.mantle.TimeRemaining = p.conf.Mantle.PhaseDuration(next)
	}

	if p.mantle.Phase == MantleFixClipping {
		p.mantle.TimeRemaining = 0
	} else {
		p.mantle.TimeRemaining -= left
	}
}

// MantleMove places the character along the climb path of the current phase.
func (p *Player) MantleMove() {
	m := &p.mantle

	var ratio float32
	if dur := p.conf.Mantle.PhaseDuration(m.Phase); dur != 0 {
		ratio = (dur - m.TimeRemaining) / dur
	}
	rock := math32.Sin(math32.Pi * ratio)
	ease := math32.Sin(ratio * math32.Pi / 2)

	pos := p.current.Origin
	switch m.Phase {
	case MantleHanging:
		pos = m.PullStart.Add(p.viewRight.Mul(rock * MantleRockHang))
		p.viewAngles[2] = rock * MantleRockHang
	case MantlePulling:
		pos = m.PullStart.Add(m.PullEnd.Sub(m.PullStart).Mul(ease))
	case MantleShiftingHands:
		pos = m.PullEnd.Add(p.viewRight.Mul(rock * MantleRockShiftHands))
		p.viewAngles[2] = rock * MantleRockShiftHands
	case MantlePushing:
		pos = m.PullEnd.Add(m.PushEnd.Sub(m.PullEnd).Mul(ease))
		p.current.SetFlags(FlagDucked)
		pos = pos.Add(p.viewRight.Mul(rock * MantleRockPush))
		p.viewAngles[2] = rock * MantleRockPush
	}

	if !m.Entity.IsNone() {
		ent, ok := p.geo.Entity(m.Entity)
		if !ok {
			// The mantled entity is gone, and the path with it.
			p.Dbg.Notify(DebugModeMantle, true, "mantled entity %v disappeared", m.Entity)
			p.CancelMantle()
			m.Entity = game.NoEntity
			return
		}
		pos = localToWorld(ent, pos)
	}

	p.Dbg.Notify(DebugModeMantle, true, "mantle %v ratio=%.3f pos=%v", m.Phase, ratio, pos)
	p.SetOrigin(pos)
}

// worldToLocal transforms a world position into the frame of the entity.
func worldToLocal(ent game.Entity, pos mgl32.Vec3) mgl32.Vec3 {
	return ent.Axis().Transpose().Mul3x1(pos.Sub(ent.Origin()))
}

// localToWorld transforms a position in the frame of the entity into world
// space.
func localToWorld(ent game.Entity, pos mgl32.Vec3) mgl32.Vec3 {
	return ent.Origin().Add(ent.Axis().Mul3x1(pos))
}
