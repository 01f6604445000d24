package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/oerror"
	"github.com/oomph-ac/pmove/pmove"
)

const (
	// VelocityMax is the largest velocity component a snapshot can carry.
	VelocityMax = 4000

	VelocityExponentBits = 5
	VelocityMantissaBits = 10
	// VelocityTotalBits includes the sign bit.
	VelocityTotalBits = 1 + VelocityExponentBits + VelocityMantissaBits

	MovementTypeBits  = 3
	MovementFlagsBits = 8
)

// Write appends the kinematic state of a character to the message. Origin is
// sent exactly, velocity is reduced to VelocityTotalBits per component and the
// remaining fields are only sent when they differ from their usual value.
func Write(w *Writer, s pmove.KinematicState) {
	for i := 0; i < 3; i++ {
		w.WriteFloat(s.Origin[i])
	}
	for i := 0; i < 3; i++ {
		w.WriteReducedFloat(clampVelocity(s.Velocity[i]), VelocityExponentBits, VelocityMantissaBits)
	}
	for i := 0; i < 3; i++ {
		w.WriteDeltaFloat(s.Origin[i], s.LocalOrigin[i])
	}
	for i := 0; i < 3; i++ {
		w.WriteDeltaReducedFloat(0, clampVelocity(s.PushVelocity[i]), VelocityExponentBits, VelocityMantissaBits)
	}
	w.WriteDeltaFloat(0, s.StepUp)
	w.WriteBits(uint32(s.MovementType), MovementTypeBits)
	w.WriteBits(uint32(s.Flags), MovementFlagsBits)
	w.WriteDeltaInt(0, s.MovementTime)
}

// Read decodes a kinematic state written by Write.
func Read(r *Reader) (pmove.KinematicState, error) {
	var s pmove.KinematicState
	for i := 0; i < 3; i++ {
		s.Origin[i] = r.ReadFloat()
	}
	for i := 0; i < 3; i++ {
		s.Velocity[i] = r.ReadReducedFloat(VelocityExponentBits, VelocityMantissaBits)
	}
	for i := 0; i < 3; i++ {
		s.LocalOrigin[i] = r.ReadDeltaFloat(s.Origin[i])
	}
	for i := 0; i < 3; i++ {
		s.PushVelocity[i] = r.ReadDeltaReducedFloat(0, VelocityExponentBits, VelocityMantissaBits)
	}
	s.StepUp = r.ReadDeltaFloat(0)
	s.MovementType = pmove.MovementType(r.ReadBits(MovementTypeBits))
	s.Flags = pmove.MovementFlags(r.ReadBits(MovementFlagsBits))
	s.MovementTime = r.ReadDeltaInt(0)

	if err := r.Err(); err != nil {
		return pmove.KinematicState{}, err
	}
	if s.MovementType > pmove.MovementNoclip {
		return pmove.KinematicState{}, oerror.New("snapshot: unknown movement type %d", s.MovementType)
	}
	if timers := s.Flags & pmove.TimerFlags; timers&(timers-1) != 0 {
		return pmove.KinematicState{}, oerror.New("snapshot: more than one timer flag set (%08b)", s.Flags)
	}
	return s, nil
}

// Encode returns the snapshot of a single kinematic state.
func Encode(s pmove.KinematicState) []byte {
	w := &Writer{}
	Write(w, s)
	return w.Bytes()
}

// Decode is the inverse of Encode.
func Decode(data []byte) (pmove.KinematicState, error) {
	return Read(NewReader(data))
}

// Velocity returns v the way it looks after a round trip through a snapshot.
func Velocity(v mgl32.Vec3) mgl32.Vec3 {
	for i := range v {
		v[i] = expandFloat(reduceFloat(clampVelocity(v[i]), VelocityExponentBits, VelocityMantissaBits), VelocityExponentBits, VelocityMantissaBits)
	}
	return v
}

func clampVelocity(f float32) float32 {
	switch {
	case f > VelocityMax:
		return VelocityMax
	case f < -VelocityMax:
		return -VelocityMax
	}
	return f
}
