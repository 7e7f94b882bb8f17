package mapper

import (
	"errors"
	"fmt"
	"math"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/hysteresis"
)

// SignedMotor is a motor slot and the sign its steps take for a positive contribution
type SignedMotor struct {
	Motor elbowdriver.Motor
	Sign  float64
}

// Plus and Minus build SignedMotors
func Plus(m elbowdriver.Motor) SignedMotor  { return SignedMotor{Motor: m, Sign: +1} }
func Minus(m elbowdriver.Motor) SignedMotor { return SignedMotor{Motor: m, Sign: -1} }

func apply(out *elbowdriver.RawSteps, motors []SignedMotor, steps float64) {
	for _, sm := range motors {
		out[sm.Motor] += sm.Sign * steps
	}
}

// Actuation is how a joint rotates itself: its own cables wound through a lever radius by one
// drive type
type Actuation struct {
	Motors   []SignedMotor
	RadiusMM float64
	Drive    Drive
	// Round takes the nearest whole step instead of truncating toward zero
	Round bool
}

// Length is the cable travel for a rotation of deltaDeg
func (a Actuation) Length(deltaDeg float64) float64 {
	return radians(deltaDeg) * a.RadiusMM
}

// RawSteps is the untruncated step count for a rotation of deltaDeg
func (a Actuation) RawSteps(deltaDeg float64) float64 {
	return a.Length(deltaDeg) * a.Drive.StepsPerMM()
}

// Steps is the whole step count for a rotation of deltaDeg
func (a Actuation) Steps(deltaDeg float64) float64 {
	if a.Round {
		return math.Round(a.RawSteps(deltaDeg))
	}
	return stepsForLength(a.Length(deltaDeg), a.Drive)
}

// Angle converts a step count back to the joint rotation in radians
func (a Actuation) Angle(steps float64) float64 {
	return steps / a.Drive.StepsPerMM() / a.RadiusMM
}

func (a Actuation) validate() error {
	if len(a.Motors) == 0 {
		return errors.New("actuation has no motors")
	}
	for _, sm := range a.Motors {
		if sm.Motor < 0 || int(sm.Motor) >= elbowdriver.NumMotors {
			return fmt.Errorf("invalid motor slot %d", int(sm.Motor))
		}
	}
	if a.RadiusMM <= 0 {
		return errors.New("actuation radius must be positive")
	}
	return validDrive(a.Drive)
}

// Coupling adds the compensation a joint's motion requires on other joints' motors
type Coupling interface {
	Contribute(out *elbowdriver.RawSteps, currentDeg, deltaDeg float64)
}

// Mapper turns one joint's angle change into a step vector for every motor
type Mapper struct {
	Joint     elbowdriver.Joint
	Primary   Actuation
	Couplings []Coupling
	Backlash  *hysteresis.Tracker
}

// Validate checks the mapper can produce finite steps
func (m *Mapper) Validate() error {
	if !m.Joint.Valid() {
		return fmt.Errorf("%w: %d", elbowdriver.ErrUnknownJoint, int(m.Joint))
	}
	if err := m.Primary.validate(); err != nil {
		return fmt.Errorf("%s: %w", m.Joint, err)
	}
	return nil
}

// Steps maps a move of deltaDeg from currentDeg. Geometric contributions are whole steps;
// the backlash compensation may be fractional and is only rounded by the aggregator
func (m *Mapper) Steps(currentDeg, deltaDeg float64, state elbowdriver.Direction) (elbowdriver.RawSteps, elbowdriver.Direction) {
	var out elbowdriver.RawSteps
	if deltaDeg == 0 {
		return out, state
	}

	steps := m.Primary.Steps(deltaDeg)

	next := state
	if m.Backlash != nil {
		var comp float64
		comp, next = m.Backlash.Compensate(m.Joint, state, m.Primary.RawSteps(deltaDeg))
		steps += comp
	} else {
		next = elbowdriver.DirectionOf(deltaDeg)
	}

	apply(&out, m.Primary.Motors, steps)

	for _, c := range m.Couplings {
		c.Contribute(&out, currentDeg, deltaDeg)
	}

	return out, next
}

// Set holds one mapper per joint
type Set map[elbowdriver.Joint]*Mapper

// Lookup returns the mapper for j or an error wrapping ErrUnknownJoint
func (s Set) Lookup(j elbowdriver.Joint) (*Mapper, error) {
	m, ok := s[j]
	if !ok || m == nil {
		return nil, fmt.Errorf("%w: no mapper for %s", elbowdriver.ErrUnknownJoint, j)
	}
	return m, nil
}

// StepsToAngle converts primary steps back to degrees, for display and checks
func (m *Mapper) StepsToAngle(steps float64) float64 {
	return m.Primary.Angle(steps) * 180 / math.Pi
}
