package pmove

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/oerror"
)

// Archive is the ordered field list a Player is persisted as. Field order is
// fixed, so two archives of identical players encode identically.
type Archive = orderedmap.OrderedMap[string, any]

func saveKinematic(a *Archive, prefix string, s KinematicState) {
	a.Set(prefix+".origin", s.Origin)
	a.Set(prefix+".velocity", s.Velocity)
	a.Set(prefix+".localOrigin", s.LocalOrigin)
	a.Set(prefix+".pushVelocity", s.PushVelocity)
	a.Set(prefix+".stepUp", s.StepUp)
	a.Set(prefix+".movementType", s.MovementType)
	a.Set(prefix+".movementFlags", s.Flags)
	a.Set(prefix+".movementTime", s.MovementTime)
}

// Save writes the full movement state of the player into an archive.
func (p *Player) Save() *Archive {
	a := orderedmap.NewOrderedMap[string, any]()

	saveKinematic(a, "current", p.current)
	saveKinematic(a, "saved", p.saved)

	a.Set("walkSpeed", p.walkSpeed)
	a.Set("crouchSpeed", p.crouchSpeed)
	a.Set("maxStepHeight", p.maxStepHeight)
	a.Set("maxJumpHeight", p.maxJumpHeight)
	a.Set("debugLevel", p.debugLevel)
	a.Set("flying", p.flying)

	a.Set("command", p.command)
	a.Set("viewAngles", p.viewAngles)

	a.Set("framemsec", p.framemsec)
	a.Set("frametime", p.frametime)
	a.Set("playerSpeed", p.playerSpeed)
	a.Set("viewForward", p.viewForward)
	a.Set("viewRight", p.viewRight)

	a.Set("walking", p.contact.Walking)
	a.Set("groundPlane", p.contact.GroundPlane)
	a.Set("groundTrace", p.contact.GroundTrace)
	a.Set("groundSurface", p.contact.GroundSurface)
	a.Set("groundEntity", p.contact.GroundEntity)

	a.Set("ladder", p.contact.Ladder)
	a.Set("ladderNormal", p.contact.LadderNormal)

	a.Set("waterLevel", p.contact.WaterLevel)
	a.Set("waterContents", p.contact.WaterContents)

	a.Set("clipHeight", p.bounds.Max()[2])

	a.Set("mantle.phase", p.mantle.Phase)
	a.Set("mantle.startArmed", p.mantle.StartArmed)
	a.Set("mantle.pullStart", p.mantle.PullStart)
	a.Set("mantle.pullEnd", p.mantle.PullEnd)
	a.Set("mantle.pushEnd", p.mantle.PushEnd)
	a.Set("mantle.entity", p.mantle.Entity)
	a.Set("mantle.entityID", p.mantle.EntityID)
	a.Set("mantle.time", p.mantle.TimeRemaining)
	a.Set("mantle.jumpHeldTime", p.mantle.JumpHeldTime)
	return a
}

// archiveReader reads typed fields from an archive, keeping the first error.
type archiveReader struct {
	a   *Archive
	err error
}

func read[T any](r *archiveReader, key string, dst *T) {
	if r.err != nil {
		return
	}
	v, ok := r.a.Get(key)
	if !ok {
		r.err = oerror.New(game.ErrorArchiveMissing, key)
		return
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		r.err = oerror.New(game.ErrorArchiveType, key, v, fmt.Sprintf("%T", zero))
		return
	}
	*dst = t
}

func readKinematic(r *archiveReader, prefix string, s *KinematicState) {
	read(r, prefix+".origin", &s.Origin)
	read(r, prefix+".velocity", &s.Velocity)
	read(r, prefix+".localOrigin", &s.LocalOrigin)
	read(r, prefix+".pushVelocity", &s.PushVelocity)
	read(r, prefix+".stepUp", &s.StepUp)
	read(r, prefix+".movementType", &s.MovementType)
	read(r, prefix+".movementFlags", &s.Flags)
	read(r, prefix+".movementTime", &s.MovementTime)
}

// Restore reads the movement state written by Save. The player is left
// untouched if the archive is incomplete.
func (p *Player) Restore(a *Archive) error {
	var (
		r          = &archiveReader{a: a}
		current    KinematicState
		saved      KinematicState
		contact    ContactState
		mantle     MantleState
		clipHeight float32

		walkSpeed, crouchSpeed       float32
		maxStepHeight, maxJumpHeight float32
		debugLevel, flying           bool
		command                      Command
		viewAngles                   mgl32.Vec3
		framemsec                    int32
		frametime, playerSpeed       float32
		viewForward, viewRight       mgl32.Vec3
	)

	readKinematic(r, "current", &current)
	readKinematic(r, "saved", &saved)

	read(r, "walkSpeed", &walkSpeed)
	read(r, "crouchSpeed", &crouchSpeed)
	read(r, "maxStepHeight", &maxStepHeight)
	read(r, "maxJumpHeight", &maxJumpHeight)
	read(r, "debugLevel", &debugLevel)
	read(r, "flying", &flying)

	read(r, "command", &command)
	read(r, "viewAngles", &viewAngles)

	read(r, "framemsec", &framemsec)
	read(r, "frametime", &frametime)
	read(r, "playerSpeed", &playerSpeed)
	read(r, "viewForward", &viewForward)
	read(r, "viewRight", &viewRight)

	read(r, "walking", &contact.Walking)
	read(r, "groundPlane", &contact.GroundPlane)
	read(r, "groundTrace", &contact.GroundTrace)
	read(r, "groundSurface", &contact.GroundSurface)
	read(r, "groundEntity", &contact.GroundEntity)

	read(r, "ladder", &contact.Ladder)
	read(r, "ladderNormal", &contact.LadderNormal)

	read(r, "waterLevel", &contact.WaterLevel)
	read(r, "waterContents", &contact.WaterContents)

	read(r, "clipHeight", &clipHeight)

	read(r, "mantle.phase", &mantle.Phase)
	read(r, "mantle.startArmed", &mantle.StartArmed)
	read(r, "mantle.pullStart", &mantle.PullStart)
	read(r, "mantle.pullEnd", &mantle.PullEnd)
	read(r, "mantle.pushEnd", &mantle.PushEnd)
	read(r, "mantle.entity", &mantle.Entity)
	read(r, "mantle.entityID", &mantle.EntityID)
	read(r, "mantle.time", &mantle.TimeRemaining)
	read(r, "mantle.jumpHeldTime", &mantle.JumpHeldTime)

	if r.err != nil {
		return oerror.Wrap(r.err, "pmove: restore")
	}
	if mantle.Phase >= mantlePhaseCount {
		return oerror.New("pmove: restore: unknown mantle phase %d", mantle.Phase)
	}

	p.current, p.saved = current, saved
	p.walkSpeed, p.crouchSpeed = walkSpeed, crouchSpeed
	p.maxStepHeight, p.maxJumpHeight = maxStepHeight, maxJumpHeight
	p.debugLevel, p.flying = debugLevel, flying
	p.command, p.viewAngles = command, viewAngles
	p.framemsec, p.frametime, p.playerSpeed = framemsec, frametime, playerSpeed
	p.viewForward, p.viewRight = viewForward, viewRight
	p.contact = contact
	p.mantle = mantle
	p.bounds = game.WithHeight(p.bounds, clipHeight)

	p.link()
	p.evaluateContacts()
	return nil
}
