package hysteresis

import (
	"math"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

// Compensate returns the extra steps needed to take up cable slack before a move of steps, and
// the direction state after the move.
//
// The first move out of Neutral takes up half of offset. A reversal takes up the full offset
// when enabled. With compensation disabled a reversal adds nothing but the state still moves
// to the new direction; it is never left on the old one. Turning compensation back on therefore
// only takes up slack on the next real reversal.
func Compensate(state elbowdriver.Direction, steps, offset float64, enabled bool) (float64, elbowdriver.Direction) {
	next := elbowdriver.DirectionOf(steps)
	if next == elbowdriver.Neutral {
		return 0, state
	}

	switch {
	case state == elbowdriver.Neutral:
		return math.Copysign(offset, steps) / 2, next
	case state != next && enabled:
		return math.Copysign(offset, steps), next
	default:
		return 0, next
	}
}

// Offsets holds the slack compensation magnitude of each joint, in steps
type Offsets map[elbowdriver.Joint]float64

// Tracker applies Compensate for a set of joints with their own offsets
type Tracker struct {
	Offsets Offsets
	Enabled bool
}

// Compensate looks up the joint's offset. Joints without an offset get no compensation but
// their direction is still tracked
func (t Tracker) Compensate(j elbowdriver.Joint, state elbowdriver.Direction, steps float64) (float64, elbowdriver.Direction) {
	return Compensate(state, steps, t.Offsets[j], t.Enabled)
}
