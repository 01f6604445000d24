package pmove

// Command is the per-tick movement input of a character. Move values are axial
// in [-127, 127].
type Command struct {
	ForwardMove int8
	RightMove   int8
	UpMove      int8
}

// clampAxial keeps a move value inside the symmetric axial range.
func clampAxial(v int8) int8 {
	if v < -AxialMoveMax {
		return -AxialMoveMax
	}
	return v
}

// Clamped returns the command with every move value inside the axial range.
func (c Command) Clamped() Command {
	return Command{
		ForwardMove: clampAxial(c.ForwardMove),
		RightMove:   clampAxial(c.RightMove),
		UpMove:      clampAxial(c.UpMove),
	}
}
