package pmove

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

// MantleConfig holds the tunables of the mantle maneuver. Durations are in
// milliseconds.
type MantleConfig struct {
	// Reach is the horizontal arm reach as a fraction of the normal height.
	Reach float32
	// Height is the vertical arm reach as a fraction of the normal height.
	Height float32
	// MinFlatness is the smallest dot of the landing surface normal with up.
	MinFlatness float32

	HangTime       float32
	PullTime       float32
	ShiftHandsTime float32
	PushTime       float32

	// JumpHoldTrigger is how long jump must be held before a mantle is attempted.
	JumpHoldTrigger float32
}

// Config is the immutable set of tunables a Player is constructed with.
type Config struct {
	Gravity mgl32.Vec3

	WalkSpeed     float32
	CrouchSpeed   float32
	MaxStepHeight float32
	MaxJumpHeight float32

	BoundsWidth      float32
	NormalHeight     float32
	CrouchHeight     float32
	DeadHeight       float32
	NormalViewHeight float32
	CrouchViewHeight float32

	Mass     float32
	ClipMask game.Contents

	Mantle MantleConfig
}

// DefaultConfig returns the stock tunables: units are roughly an inch, time is
// in milliseconds and Z points up.
func DefaultConfig() Config {
	return Config{
		Gravity: mgl32.Vec3{0, 0, -1066},

		WalkSpeed:     140,
		CrouchSpeed:   80,
		MaxStepHeight: 18,
		MaxJumpHeight: 48,

		BoundsWidth:      32,
		NormalHeight:     74,
		CrouchHeight:     38,
		DeadHeight:       20,
		NormalViewHeight: 68,
		CrouchViewHeight: 32,

		Mass:     100,
		ClipMask: game.MaskPlayerSolid,

		Mantle: MantleConfig{
			Reach:       0.5,
			Height:      0.35,
			MinFlatness: 0.5,

			HangTime:       750,
			PullTime:       750,
			ShiftHandsTime: 500,
			PushTime:       800,

			JumpHoldTrigger: 100,
		},
	}
}

// PhaseDuration returns the configured duration of a mantle phase.
func (c MantleConfig) PhaseDuration(phase MantlePhase) float32 {
	switch phase {
	case MantleHanging:
		return c.HangTime
	case MantlePulling:
		return c.PullTime
	case MantleShiftingHands:
		return c.ShiftHandsTime
	case MantlePushing:
		return c.PushTime
	default:
		return 0
	}
}
