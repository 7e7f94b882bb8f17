package motion

import (
	"fmt"
	"math"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/mapper"
)

// Deltas are the requested angle changes in degrees
type Deltas map[elbowdriver.Joint]float64

// Result is a combined command and the state to persist for the next one
type Result struct {
	Steps      elbowdriver.StepVector
	Angles     elbowdriver.Angles
	Directions elbowdriver.Directions
}

// Aggregator combines simultaneous joint moves into one step vector
type Aggregator struct {
	mappers mapper.Set
}

func NewAggregator(mappers mapper.Set) *Aggregator {
	return &Aggregator{mappers: mappers}
}

// Combine maps every nonzero delta with its joint's mapper, sums the raw vectors in joint order
// and rounds once. The input maps are not modified. Joints that do not move keep their angle
// and direction entries untouched
func (a *Aggregator) Combine(deltas Deltas, angles elbowdriver.Angles, directions elbowdriver.Directions) (Result, error) {
	for j, d := range deltas {
		if !j.Valid() {
			return Result{}, fmt.Errorf("%w: %d", elbowdriver.ErrUnknownJoint, int(j))
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return Result{}, fmt.Errorf("%w: %s delta is %v", elbowdriver.ErrInvalidDelta, j, d)
		}
		if d == 0 {
			continue
		}
		if _, ok := angles[j]; !ok {
			return Result{}, fmt.Errorf("%w: %s", elbowdriver.ErrMissingAngle, j)
		}
		if _, err := a.mappers.Lookup(j); err != nil {
			return Result{}, err
		}
	}

	result := Result{
		Angles:     angles.Clone(),
		Directions: directions.Clone(),
	}

	var total elbowdriver.RawSteps
	for _, j := range elbowdriver.Joints {
		d := deltas[j]
		if d == 0 {
			continue
		}

		m, _ := a.mappers.Lookup(j)
		raw, next := m.Steps(angles[j], d, directions[j])
		total.Add(raw)

		result.Angles[j] = angles[j] + d
		result.Directions[j] = next
	}

	result.Steps = total.Round()
	return result, nil
}
