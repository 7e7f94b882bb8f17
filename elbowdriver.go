package elbowdriver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HomeAngle is the cumulative angle, in degrees, every joint starts at
const HomeAngle = 90.0

var (
	ErrUnknownJoint = errors.New("unknown joint")
	ErrInvalidDelta = errors.New("invalid delta")
	ErrMissingAngle = errors.New("missing current angle")
	ErrUnknownMotor = errors.New("unknown motor")
)

// Joint identifies one actuated degree of freedom of the manipulator
type Joint int

const (
	JointUnknown Joint = iota
	ElbowPitch
	ElbowYaw
	WristPitch
	LeftJaw
	RightJaw
	Roll
)

// Joints lists every valid joint in canonical evaluation order
var Joints = []Joint{ElbowPitch, ElbowYaw, WristPitch, LeftJaw, RightJaw, Roll}

func (j Joint) String() string {
	switch j {
	case ElbowPitch:
		return "EP"
	case ElbowYaw:
		return "EY"
	case WristPitch:
		return "WP"
	case LeftJaw:
		return "LJ"
	case RightJaw:
		return "RJ"
	case Roll:
		return "ROLL"
	default:
		fallthrough
	case JointUnknown:
		return "Unknown"
	}
}

// Valid is true for the six actuated joints
func (j Joint) Valid() bool {
	return j >= ElbowPitch && j <= Roll
}

// ParseJoint accepts the short motor-group codes (EP, EY, WP, LJ, RJ, ROLL) and the
// Q-numbering used by the calibration data (Q1, Q2, Q3, Q4L, Q4R)
func ParseJoint(s string) (Joint, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EP", "Q1":
		return ElbowPitch, nil
	case "EY", "Q2":
		return ElbowYaw, nil
	case "WP", "Q3":
		return WristPitch, nil
	case "LJ", "Q4L":
		return LeftJaw, nil
	case "RJ", "Q4R":
		return RightJaw, nil
	case "ROLL", "R":
		return Roll, nil
	}
	return JointUnknown, fmt.Errorf("%w: %q", ErrUnknownJoint, s)
}

// MarshalText lets joints be used as YAML and JSON map keys
func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJoint, int(j))
	}
	return []byte(j.String()), nil
}

func (j *Joint) UnmarshalText(b []byte) error {
	parsed, err := ParseJoint(string(b))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// Motor is a slot in the step vector. The order is shared with the firmware and must never change
type Motor int

const (
	EPU Motor = iota
	EPD
	EYR
	EYL
	WPD
	WPU
	RJL
	LJR
	LJL
	RJR
	ROLL

	NumMotors = int(ROLL) + 1
)

var motorNames = [NumMotors]string{"EPU", "EPD", "EYR", "EYL", "WPD", "WPU", "RJL", "LJR", "LJL", "RJR", "ROLL"}

func (m Motor) String() string {
	if m < 0 || int(m) >= NumMotors {
		return "Unknown"
	}
	return motorNames[m]
}

func (m Motor) Valid() bool {
	return m >= 0 && int(m) < NumMotors
}

// Next is the following motor in step vector order, wrapping after ROLL
func (m Motor) Next() Motor {
	if !m.Valid() {
		return EPU
	}
	return Motor((int(m) + 1) % NumMotors)
}

// ParseMotor accepts a motor name in any case
func ParseMotor(s string) (Motor, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range motorNames {
		if n == name {
			return Motor(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownMotor, s)
}

// Direction is the last direction a joint moved in. It is used for backlash compensation. -1, 0, +1
type Direction int8

const (
	Negative Direction = -1
	Neutral  Direction = 0
	Positive Direction = +1
)

func (d Direction) String() string {
	switch d {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// DirectionOf returns the sign of v as a Direction
func DirectionOf(v float64) Direction {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	default:
		return Neutral
	}
}

// StepVector is one integer step count per motor, in Motor order
type StepVector [NumMotors]int

// String formats the vector as comma-separated integers
func (v StepVector) String() string {
	parts := make([]string, NumMotors)
	for i, s := range v {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

// IsZero is true when no motor moves
func (v StepVector) IsZero() bool {
	return v == StepVector{}
}

// RawSteps accumulates unrounded per-motor contributions before the single final rounding
type RawSteps [NumMotors]float64

// Add sums other into r element-wise
func (r *RawSteps) Add(other RawSteps) {
	for i := range r {
		r[i] += other[i]
	}
}

// Round rounds every slot to the nearest integer, half away from zero
func (r RawSteps) Round() StepVector {
	var v StepVector
	for i, s := range r {
		v[i] = int(math.Round(s))
	}
	return v
}

// Angles holds the cumulative absolute angle of each joint in degrees
type Angles map[Joint]float64

// HomeAngles returns every joint at HomeAngle
func HomeAngles() Angles {
	a := Angles{}
	for _, j := range Joints {
		a[j] = HomeAngle
	}
	return a
}

// Clone returns an independent copy
func (a Angles) Clone() Angles {
	c := make(Angles, len(a))
	for j, v := range a {
		c[j] = v
	}
	return c
}

// Directions holds the last movement direction of each joint
type Directions map[Joint]Direction

// Clone returns an independent copy
func (d Directions) Clone() Directions {
	c := make(Directions, len(d))
	for j, v := range d {
		c[j] = v
	}
	return c
}
