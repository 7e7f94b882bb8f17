package mapper

import (
	"errors"
	"math"
)

// Drive converts a cable length change into motor steps. Lead-screw cable motors and
// capstan joint motors have different constants
type Drive interface {
	StepsPerMM() float64
}

// LeadScrew advances a cable carriage PitchMM per motor revolution
type LeadScrew struct {
	StepsPerRev float64 `yaml:"steps_per_rev"`
	PitchMM     float64 `yaml:"pitch_mm"`
}

func (l LeadScrew) StepsPerMM() float64 {
	return l.StepsPerRev / l.PitchMM
}

// Capstan winds cable directly onto a motor pulley of RadiusMM
type Capstan struct {
	StepsPerRev float64 `yaml:"steps_per_rev"`
	RadiusMM    float64 `yaml:"radius_mm"`
}

func (c Capstan) StepsPerMM() float64 {
	return c.StepsPerRev / (2 * math.Pi * c.RadiusMM)
}

func validDrive(d Drive) error {
	if d == nil {
		return errors.New("missing drive")
	}
	k := d.StepsPerMM()
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return errors.New("drive must have a positive finite steps per mm")
	}
	return nil
}

// stepsForLength truncates toward zero so a partial step is never commanded
func stepsForLength(mm float64, d Drive) float64 {
	return math.Trunc(mm * d.StepsPerMM())
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
