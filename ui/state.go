package ui

import (
	"fmt"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

// jointState is what a joint row displays
type jointState struct {
	angle     float64
	direction elbowdriver.Direction
}

func (s jointState) String() string {
	return fmt.Sprintf("%7.2f° %s", s.angle, arrow(s.direction))
}

func arrow(d elbowdriver.Direction) string {
	switch d {
	case elbowdriver.Positive:
		return "▲"
	case elbowdriver.Negative:
		return "▼"
	default:
		return "•"
	}
}

func jointStates(angles elbowdriver.Angles, directions elbowdriver.Directions) map[elbowdriver.Joint]jointState {
	out := make(map[elbowdriver.Joint]jointState, len(elbowdriver.Joints))
	for _, j := range elbowdriver.Joints {
		out[j] = jointState{angle: angles[j], direction: directions[j]}
	}
	return out
}
