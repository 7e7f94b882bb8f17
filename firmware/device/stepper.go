//go:build tinygo

package device

import (
	"machine"
	"time"
)

const defaultPulseWidth = 5 * time.Microsecond

// stepDir drives a stepper through a step/dir driver board
type stepDir struct {
	step       machine.Pin
	dir        machine.Pin
	invert     bool
	pulseWidth time.Duration
	forward    bool
}

func newStepDir(cfg StepDirConfig, pulseWidth time.Duration) *stepDir {
	if pulseWidth == 0 {
		pulseWidth = defaultPulseWidth
	}

	s := &stepDir{
		step:       cfg.Step,
		dir:        cfg.Dir,
		invert:     cfg.Invert,
		pulseWidth: pulseWidth,
	}
	for _, p := range []machine.Pin{s.step, s.dir} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	s.step.Low()
	s.setDirection(true)
	return s
}

func (s *stepDir) setDirection(forward bool) {
	s.forward = forward
	s.dir.Set(forward != s.invert)
}

// Step pulses the step pin once, switching direction first if needed
func (s *stepDir) Step(forward bool) {
	if forward != s.forward {
		s.setDirection(forward)
	}
	s.step.High()
	time.Sleep(s.pulseWidth)
	s.step.Low()
}
