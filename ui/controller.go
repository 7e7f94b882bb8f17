package ui

import (
	"context"
	"fmt"
	"time"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/motion"
)

// driver is the part of *controller.Controller the panel uses
type driver interface {
	Move(ctx context.Context, deltas motion.Deltas) (elbowdriver.StepVector, error)
	Home(ctx context.Context)
	State() (elbowdriver.Angles, elbowdriver.Directions)
	SetBacklash(enabled bool) error
	Backlash() bool
	StepMotor(ctx context.Context, m elbowdriver.Motor, n int) error
}

type controllerWrapper struct {
	ctx           context.Context
	driver        driver
	lastMoveTimer *timer
	log           func(string)
}

func (c *controllerWrapper) logf(format string, args ...any) {
	if c.log != nil {
		c.log(fmt.Sprintf(format, args...))
	}
}

func (c *controllerWrapper) Jog(j elbowdriver.Joint, delta float64) error {
	return c.Move(motion.Deltas{j: delta})
}

func (c *controllerWrapper) Move(deltas motion.Deltas) error {
	steps, err := c.driver.Move(c.ctx, deltas)
	if err != nil {
		c.logf("error: %v", err)
		return err
	}

	if c.lastMoveTimer != nil {
		c.lastMoveTimer.Set(time.Now())
	}
	c.logf("%s -> %s", deltas, steps)
	return nil
}

// Command runs a typed move like "EP+10.3 WP-5"
func (c *controllerWrapper) Command(line string) error {
	deltas, err := motion.ParseDeltas(line)
	if err != nil {
		c.logf("error: %v", err)
		return err
	}
	return c.Move(deltas)
}

func (c *controllerWrapper) Home() {
	c.driver.Home(c.ctx)
	c.logf("home")
}

func (c *controllerWrapper) SetBacklash(enabled bool) {
	err := c.driver.SetBacklash(enabled)
	if err != nil {
		c.logf("error: %v", err)
		return
	}
	c.logf("backlash compensation %t", enabled)
}

func (c *controllerWrapper) StepMotor(m elbowdriver.Motor, n int) error {
	err := c.driver.StepMotor(c.ctx, m, n)
	if err != nil {
		c.logf("error: %v", err)
		return err
	}
	c.logf("%s %+d", m, n)
	return nil
}

func (c *controllerWrapper) States() map[elbowdriver.Joint]jointState {
	return jointStates(c.driver.State())
}
