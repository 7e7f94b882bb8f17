//go:build tinygo

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/easystepper"

	"github.com/PCIGITI/elbow-driver/firmware/commands"
	"github.com/PCIGITI/elbow-driver/firmware/device"
	"github.com/PCIGITI/elbow-driver/protocol"
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: protocol.DefaultBaudRate})

	// Motor order: EPU, EPD, EYR, EYL, WPD, WPU, RJL, LJR, LJL, RJR
	cfg := device.Config{
		Motors: [10]device.StepDirConfig{
			{Step: machine.GP0, Dir: machine.GP1},
			{Step: machine.GP2, Dir: machine.GP3},
			{Step: machine.GP4, Dir: machine.GP5},
			{Step: machine.GP6, Dir: machine.GP7},
			{Step: machine.GP8, Dir: machine.GP9},
			{Step: machine.GP10, Dir: machine.GP11},
			{Step: machine.GP12, Dir: machine.GP13},
			{Step: machine.GP14, Dir: machine.GP15},
			{Step: machine.GP16, Dir: machine.GP17},
			{Step: machine.GP18, Dir: machine.GP19},
		},
		Roll: easystepper.DeviceConfig{
			Pin1:      machine.GP20,
			Pin2:      machine.GP21,
			Pin3:      machine.GP22,
			Pin4:      machine.GP26,
			StepCount: 200,
			RPM:       10,
			Mode:      easystepper.ModeFour,
		},
		StepDelay: 1500 * time.Microsecond,
	}

	d, err := device.New(cfg)
	if err != nil {
		panic(err)
	}

	println("motors ready")
	commands.Run(d, nil)
}
