package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/controller"
	"github.com/PCIGITI/elbow-driver/motion"
)

type fakeDriver struct {
	angles     elbowdriver.Angles
	directions elbowdriver.Directions
	moves      []motion.Deltas
	stepped    []string
	backlash   bool
	err        error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		angles:     elbowdriver.HomeAngles(),
		directions: elbowdriver.Directions{},
		backlash:   true,
	}
}

func (f *fakeDriver) Move(_ context.Context, d motion.Deltas) (elbowdriver.StepVector, error) {
	if f.err != nil {
		return elbowdriver.StepVector{}, f.err
	}
	f.moves = append(f.moves, d)
	for j, delta := range d {
		f.angles[j] += delta
		f.directions[j] = elbowdriver.DirectionOf(delta)
	}
	return elbowdriver.StepVector{7}, nil
}

func (f *fakeDriver) Home(context.Context) {
	f.angles = elbowdriver.HomeAngles()
	f.directions = elbowdriver.Directions{}
}

func (f *fakeDriver) State() (elbowdriver.Angles, elbowdriver.Directions) {
	return f.angles.Clone(), f.directions.Clone()
}

func (f *fakeDriver) SetBacklash(enabled bool) error {
	f.backlash = enabled
	return nil
}

func (f *fakeDriver) Backlash() bool {
	return f.backlash
}

func (f *fakeDriver) StepMotor(_ context.Context, m elbowdriver.Motor, n int) error {
	if f.err != nil {
		return f.err
	}
	f.stepped = append(f.stepped, fmt.Sprintf("%s %+d", m, n))
	return nil
}

func TestJointState(t *testing.T) {
	assert.Equal(t, "  90.00° •", jointState{angle: 90}.String())
	assert.Equal(t, " -12.50° ▼", jointState{angle: -12.5, direction: elbowdriver.Negative}.String())
	assert.Equal(t, " 100.30° ▲", jointState{angle: 100.3, direction: elbowdriver.Positive}.String())
}

func TestControllerWrapper(t *testing.T) {
	d := newFakeDriver()
	var logs []string
	c := &controllerWrapper{
		ctx:           context.Background(),
		driver:        d,
		lastMoveTimer: newTimer("last move"),
		log:           func(s string) { logs = append(logs, s) },
	}

	require.NoError(t, c.Command("EP+10.3 WP-5"))
	require.NoError(t, c.Jog(elbowdriver.Roll, 2))
	assert.Len(t, d.moves, 2)
	assert.Equal(t, "EP+10.3 WP-5 -> 7,0,0,0,0,0,0,0,0,0,0", logs[0])
	assert.NotContains(t, c.lastMoveTimer.format(time.Now()), "--:--")

	assert.Error(t, c.Command("EP"))
	d.err = errors.New("unplugged")
	assert.Error(t, c.Jog(elbowdriver.Roll, 1))
	assert.Equal(t, "error: unplugged", logs[len(logs)-1])

	states := c.States()
	assert.Equal(t, jointState{angle: 92, direction: elbowdriver.Positive}, states[elbowdriver.Roll])

	c.Home()
	c.SetBacklash(false)
	assert.False(t, d.backlash)
	assert.Equal(t, jointState{angle: 90}, c.States()[elbowdriver.Roll])
}

func TestTimerFormat(t *testing.T) {
	tm := newTimer("last move")
	now := time.Now()
	assert.Equal(t, "last move --:--", tm.format(now))

	tm.Set(now.Add(-75 * time.Second))
	assert.Equal(t, "last move 01:15", tm.format(now))
}

func TestPanel(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	d := newFakeDriver()
	p := newPanel(context.Background(), d)
	w := a.NewWindow("test")
	w.SetContent(p.content())

	require.Len(t, p.rows, len(elbowdriver.Joints))
	ep := p.rows[0]
	assert.Equal(t, elbowdriver.ElbowPitch, ep.joint)
	assert.Equal(t, "  90.00° •", ep.value.Text)

	test.Tap(ep.plus)
	assert.Equal(t, motion.Deltas{elbowdriver.ElbowPitch: defaultJog}, d.moves[0])
	assert.Equal(t, "  95.00° ▲", ep.value.Text)

	ep.jog.SetValue(2.5)
	test.Tap(ep.minus)
	assert.Equal(t, motion.Deltas{elbowdriver.ElbowPitch: -2.5}, d.moves[1])

	ep.entry.OnSubmitted("-1.5")
	assert.Equal(t, motion.Deltas{elbowdriver.ElbowPitch: -1.5}, d.moves[2])
	ep.entry.OnSubmitted("abc")
	assert.Len(t, d.moves, 3)

	p.command.OnSubmitted("WP-5 LJ+1")
	assert.Equal(t, motion.Deltas{elbowdriver.WristPitch: -5, elbowdriver.LeftJaw: 1}, d.moves[3])
	assert.Empty(t, p.command.Text)

	assert.True(t, p.backlash.Checked)
	p.backlash.SetChecked(false)
	assert.False(t, d.backlash)

	assert.True(t, strings.Contains(p.logContent.Text, "WP-5 LJ+1"))
}

func TestPanelMotors(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	d := newFakeDriver()
	p := newPanel(context.Background(), d)
	w := a.NewWindow("test")
	w.SetContent(p.content())

	assert.Equal(t, "EPU", p.motors.motor.Selected)
	assert.Equal(t, "-10", p.motors.stepLabel.Text)

	test.Tap(p.motors.tension)
	p.motors.motor.SetSelected("LJR")
	test.Tap(p.motors.detension)
	p.motors.steps.SetValue(-200)
	test.Tap(p.motors.step)

	p.motors.steps.SetValue(0)
	test.Tap(p.motors.step)

	assert.Equal(t, []string{"EPU -10", "LJR +100", "LJR -200"}, d.stepped)
	assert.Equal(t, elbowdriver.HomeAngles(), d.angles)
	assert.Contains(t, p.logContent.Text, "LJR -200")

	d.err = errors.New("unplugged")
	test.Tap(p.motors.tension)
	assert.Contains(t, p.logContent.Text, "error: unplugged")
}

func TestPreferences(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	cfg := &controller.Config{}
	loadPreferences(a.Preferences(), cfg)
	assert.Equal(t, controller.Config{BaudRate: "9600"}, *cfg)

	cfg.SerialPort = "/dev/ttyACM0"
	cfg.ConstantsFile = "constants.yaml"
	savePreferences(a.Preferences(), cfg)

	loaded := &controller.Config{}
	loadPreferences(a.Preferences(), loaded)
	assert.Equal(t, *cfg, *loaded)
}

func TestValidateBaudRate(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"9600", true},
		{" 115200 ", true},
		{"", false},
		{"fast", false},
		{"0", false},
		{"-9600", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateBaudRate(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConnectionForm(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	w := a.NewWindow("test")
	defer w.Close()

	t.Run("MissingPortFallsBack", func(t *testing.T) {
		cfg := &controller.Config{SerialPort: "/dev/gone", BaudRate: "9600"}
		form := connectionForm(cfg, []string{"/dev/ttyACM0", controller.SerialPortNone}, w)

		assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
		assert.Len(t, form.Items, 5)
		assert.Equal(t, "Connect", form.SubmitText)
	})

	t.Run("KeepsKnownPort", func(t *testing.T) {
		cfg := &controller.Config{SerialPort: controller.SerialPortNone, BaudRate: "9600"}
		connectionForm(cfg, []string{"/dev/ttyACM0", controller.SerialPortNone}, w)

		assert.Equal(t, controller.SerialPortNone, cfg.SerialPort)
	})
}
