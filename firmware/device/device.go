//go:build tinygo

package device

import (
	"fmt"
	"machine"
	"time"

	"tinygo.org/x/drivers/easystepper"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/firmware/commands"
	"github.com/PCIGITI/elbow-driver/firmware/schedule"
)

const defaultStepDelay = 1500 * time.Microsecond

// Device is the motor board. Cable motors move together in one interleaved move, the roll motor
// follows
type Device struct {
	motors    [cableMotors]*stepDir
	roll      *easystepper.Device
	stepDelay time.Duration
	positions [elbowdriver.NumMotors]int64
}

var _ commands.Device = (*Device)(nil)

// New configures every pin
func New(cfg Config) (*Device, error) {
	if cfg.StepDelay == 0 {
		cfg.StepDelay = defaultStepDelay
	}

	d := &Device{stepDelay: cfg.StepDelay}
	for i, m := range cfg.Motors {
		d.motors[i] = newStepDir(m, cfg.PulseWidth)
	}

	roll, err := easystepper.New(cfg.Roll)
	if err != nil {
		return nil, fmt.Errorf("error creating roll stepper: %w", err)
	}
	roll.Configure()
	d.roll = roll

	return d, nil
}

// Execute moves the cable motors together, then the roll motor
func (d *Device) Execute(v elbowdriver.StepVector) error {
	counts := make([]int, cableMotors)
	copy(counts, v[:cableMotors])

	start := time.Now()
	schedule.Interleave(counts,
		func(t int) {
			// hold a fixed tick rate so long moves keep the same speed
			next := start.Add(time.Duration(t) * d.stepDelay)
			if wait := time.Until(next); wait > 0 {
				time.Sleep(wait)
			}
		},
		func(i int, forward bool) {
			d.motors[i].Step(forward)
			if forward {
				d.positions[i]++
			} else {
				d.positions[i]--
			}
		},
	)

	if roll := v[elbowdriver.ROLL]; roll != 0 {
		d.roll.Move(int32(roll))
		d.positions[elbowdriver.ROLL] += int64(roll)
	}

	return nil
}

func (d *Device) Positions() [elbowdriver.NumMotors]int64 {
	return d.positions
}

// Release turns off the roll motor coils. Step/dir drivers hold position on their own
func (d *Device) Release() {
	d.roll.Off()
}

func (d *Device) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (d *Device) Println(s ...string) {
	for i, part := range s {
		if i > 0 {
			machine.Serial.WriteByte(' ')
		}
		machine.Serial.Write([]byte(part))
	}
	machine.Serial.Write([]byte("\r\n"))
}
