package game

import (
	"math"

	"orb-arena/internal/protocol"
)

// InputState is the sanitized latest input for one player. Inputs are not
// queued; the most recent frame staged before a tick wins.
type InputState struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	Attack bool
	AimX   float64
	AimY   float64
	Seq    uint64
}

// sanitizeInput converts a decoded wire payload into an InputState. Missing
// or non-finite aim coordinates fall back to the player's current position,
// which turns a degenerate aim into a harmless zero-length direction.
func sanitizeInput(in protocol.InputPayload, x, y float64) InputState {
	aimX, aimY := x, y
	if in.MouseX != nil && isFinite(*in.MouseX) {
		aimX = *in.MouseX
	}
	if in.MouseY != nil && isFinite(*in.MouseY) {
		aimY = *in.MouseY
	}
	return InputState{
		Up:     in.Up,
		Down:   in.Down,
		Left:   in.Left,
		Right:  in.Right,
		Attack: in.Attack,
		AimX:   aimX,
		AimY:   aimY,
		Seq:    in.Seq,
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
