package pmove

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/assert"
)

// MovementType selects the overall movement regime of a character.
type MovementType uint8

const (
	MovementNormal MovementType = iota
	MovementDead
	MovementSpectator
	MovementFreeze
	MovementNoclip
)

func (t MovementType) String() string {
	switch t {
	case MovementNormal:
		return "normal"
	case MovementDead:
		return "dead"
	case MovementSpectator:
		return "spectator"
	case MovementFreeze:
		return "freeze"
	case MovementNoclip:
		return "noclip"
	}
	return "unknown"
}

// MovementFlags is the typed bitset of per-character movement flags.
type MovementFlags uint8

const (
	FlagDucked MovementFlags = 1 << iota
	FlagJumped
	FlagSteppedUp
	FlagSteppedDown
	FlagJumpHeld
	FlagTimeLand
	FlagTimeKnockback
	FlagTimeWaterJump

	// TimerFlags select the meaning of KinematicState.MovementTime. They are
	// always cleared together.
	TimerFlags = FlagTimeLand | FlagTimeKnockback | FlagTimeWaterJump
	// TransientFlags are reset at the start of every tick.
	TransientFlags = FlagJumped | FlagSteppedUp | FlagSteppedDown
)

// Has returns true if all the given flags are set.
func (f MovementFlags) Has(flags MovementFlags) bool {
	return f&flags == flags
}

// KinematicState is the authoritative movement data of one character.
type KinematicState struct {
	Origin   mgl32.Vec3
	Velocity mgl32.Vec3
	// LocalOrigin is the origin relative to the master the character is bound to.
	LocalOrigin mgl32.Vec3
	// PushVelocity is imparted by external movers and kept out of the acceleration math.
	PushVelocity mgl32.Vec3
	// StepUp is the vertical displacement caused by stair stepping this tick.
	StepUp float32

	MovementType MovementType
	Flags        MovementFlags
	// MovementTime is a countdown in milliseconds. Its meaning is selected by the active timer flag.
	MovementTime int32
}

func (s *KinematicState) SetFlags(flags MovementFlags) {
	s.Flags |= flags
}

func (s *KinematicState) ClearFlags(flags MovementFlags) {
	s.Flags &^= flags
}

// ArmTimer starts the countdown for the given timer flag, replacing any timer
// that was running.
func (s *KinematicState) ArmTimer(flag MovementFlags, msec int32) {
	assert.IsTrue(flag&TimerFlags == flag && flag != 0, "ArmTimer called with non-timer flags %08b", flag)
	assert.IsTrue(flag&(flag-1) == 0, "ArmTimer called with more than one timer flag %08b", flag)
	s.Flags &^= TimerFlags
	s.Flags |= flag
	s.MovementTime = msec
}

// ClearTimers stops the running countdown and clears every timer flag.
func (s *KinematicState) ClearTimers() {
	s.Flags &^= TimerFlags
	s.MovementTime = 0
}

// ActiveTimer returns the timer flag that is running, or zero.
func (s *KinematicState) ActiveTimer() MovementFlags {
	return s.Flags & TimerFlags
}
