package mapper

import (
	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/calibration"
	"github.com/PCIGITI/elbow-driver/geometry"
)

// CableRun is a set of cables passing straight over the joint's pulley. They change length
// linearly with the joint angle
type CableRun struct {
	RadiusMM float64
	Drive    Drive
	Motors   []SignedMotor
}

var _ Coupling = CableRun{}

func (c CableRun) Contribute(out *elbowdriver.RawSteps, _, deltaDeg float64) {
	apply(out, c.Motors, stepsForLength(radians(deltaDeg)*c.RadiusMM, c.Drive))
}

// RoutedCables are cables whose path over the joint follows a geometry model. Pos motors
// follow the model's first length and Neg motors its second. AngleOffset is subtracted from
// the cumulative joint angle before evaluating the model
type RoutedCables struct {
	Path        geometry.PathModel
	AngleOffset float64
	Drive       Drive
	Pos         []SignedMotor
	Neg         []SignedMotor
}

var _ Coupling = RoutedCables{}

func (r RoutedCables) Contribute(out *elbowdriver.RawSteps, currentDeg, deltaDeg float64) {
	from := currentDeg - r.AngleOffset
	posFrom, negFrom := r.Path.Lengths(from)
	posTo, negTo := r.Path.Lengths(from + deltaDeg)

	apply(out, r.Pos, stepsForLength(posTo-posFrom, r.Drive))
	apply(out, r.Neg, stepsForLength(negTo-negFrom, r.Drive))
}

// Calibrated cancels the measured coupling into another joint by rotating that joint back by
// the predicted amount with its own actuation
type Calibrated struct {
	Predictor calibration.Predictor
	Target    Actuation
}

var _ Coupling = Calibrated{}

func (c Calibrated) Contribute(out *elbowdriver.RawSteps, currentDeg, deltaDeg float64) {
	if c.Predictor == nil {
		return
	}
	induced := c.Predictor.PredictDelta(radians(currentDeg), radians(deltaDeg))
	if induced == 0 {
		return
	}
	mm := -induced * c.Target.RadiusMM
	apply(out, c.Target.Motors, stepsForLength(mm, c.Target.Drive))
}
