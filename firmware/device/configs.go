//go:build tinygo

package device

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/easystepper"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

// cableMotors are the step/dir driven motors. ROLL is the last slot and uses a 4-wire stepper
const cableMotors = elbowdriver.NumMotors - 1

// StepDirConfig are the pins of one step/dir driver. Invert flips the direction pin for a motor
// wound the other way
type StepDirConfig struct {
	Step   machine.Pin
	Dir    machine.Pin
	Invert bool
}

// Config has the pins and timing of the motor board
type Config struct {
	Motors [cableMotors]StepDirConfig
	Roll   easystepper.DeviceConfig

	// StepDelay is the time between ticks of a combined move
	StepDelay time.Duration
	// PulseWidth is how long the step pin is held high
	PulseWidth time.Duration
}
