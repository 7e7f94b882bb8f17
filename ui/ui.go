package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/controller"
	"github.com/PCIGITI/elbow-driver/protocol"
)

const (
	appID = "io.github.pcigiti.elbow-driver"

	defaultJog  = 5.0
	maxJog      = 30.0
	maxLogLines = 200
)

// jointRow is the controls for a single joint: its current state, a jog size slider, jog
// buttons and an entry to move by a typed angle
type jointRow struct {
	joint    elbowdriver.Joint
	value    *widget.Label
	jogLabel *widget.Label
	jog      *widget.Slider
	minus    *widget.Button
	plus     *widget.Button
	entry    *widget.Entry
}

func createJointRow(j elbowdriver.Joint, onMove func(elbowdriver.Joint, float64)) *jointRow {
	row := &jointRow{
		joint:    j,
		value:    widget.NewLabel(""),
		jogLabel: widget.NewLabel(fmt.Sprintf("%.1f°", defaultJog)),
	}

	row.jog = widget.NewSlider(0.5, maxJog)
	row.jog.Step = 0.5
	row.jog.SetValue(defaultJog)
	row.jog.OnChanged = func(value float64) {
		row.jogLabel.SetText(fmt.Sprintf("%.1f°", value))
	}

	row.minus = widget.NewButton("−", func() { onMove(j, -row.jog.Value) })
	row.plus = widget.NewButton("+", func() { onMove(j, row.jog.Value) })

	row.entry = widget.NewEntry()
	row.entry.SetPlaceHolder("±deg")
	row.entry.OnSubmitted = func(s string) {
		row.entry.SetText("")

		delta, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || delta == 0 {
			return
		}
		onMove(j, delta)
	}

	return row
}

func (r *jointRow) container() *fyne.Container {
	return container.NewVBox(
		container.NewGridWithColumns(4,
			widget.NewLabel(r.joint.String()),
			r.value,
			container.NewHBox(r.minus, r.plus),
			container.NewHBox(r.entry, widget.NewButton("Go", func() {
				r.entry.OnSubmitted(r.entry.Text)
			})),
		),
		container.NewBorder(nil, nil, nil, r.jogLabel, r.jog),
	)
}

// motorRow steps a single motor to tension its cable. The joint angles do not change
type motorRow struct {
	motor     *widget.Select
	stepLabel *widget.Label
	steps     *widget.Slider
	step      *widget.Button
	tension   *widget.Button
	detension *widget.Button
}

func createMotorRow(onStep func(elbowdriver.Motor, int)) *motorRow {
	names := make([]string, elbowdriver.NumMotors)
	for i := range names {
		names[i] = elbowdriver.Motor(i).String()
	}

	row := &motorRow{
		motor:     widget.NewSelect(names, nil),
		stepLabel: widget.NewLabel(strconv.Itoa(controller.TensionFine)),
	}
	row.motor.SetSelectedIndex(0)

	row.steps = widget.NewSlider(-protocol.MaxMotorSteps, protocol.MaxMotorSteps)
	row.steps.Step = 1
	row.steps.SetValue(controller.TensionFine)
	row.steps.OnChanged = func(value float64) {
		row.stepLabel.SetText(strconv.Itoa(int(value)))
	}

	send := func(n int) {
		m, err := elbowdriver.ParseMotor(row.motor.Selected)
		if err != nil || n == 0 {
			return
		}
		onStep(m, n)
	}
	row.step = widget.NewButton("Step", func() { send(int(row.steps.Value)) })
	row.tension = widget.NewButton("Tension", func() { send(controller.TensionFine) })
	row.detension = widget.NewButton("Detension", func() { send(controller.Detension) })

	return row
}

func (r *motorRow) container() *fyne.Container {
	return container.NewVBox(
		container.NewHBox(r.motor, r.step, r.tension, r.detension),
		container.NewBorder(nil, nil, nil, r.stepLabel, r.steps),
	)
}

// Panel is the main control window
type Panel struct {
	wrapper    *controllerWrapper
	rows       []*jointRow
	motors     *motorRow
	logContent *widget.Label
	logLines   []string
	sinceMove  *timer
	backlash   *widget.Check
	command    *widget.Entry
}

func newPanel(ctx context.Context, d driver) *Panel {
	p := &Panel{
		logContent: widget.NewLabel(""),
		sinceMove:  newTimer("last move"),
	}
	p.wrapper = &controllerWrapper{
		ctx:           ctx,
		driver:        d,
		lastMoveTimer: p.sinceMove,
		log:           p.appendLog,
	}

	for _, j := range elbowdriver.Joints {
		p.rows = append(p.rows, createJointRow(j, func(j elbowdriver.Joint, delta float64) {
			_ = p.wrapper.Jog(j, delta)
			p.refresh()
		}))
	}

	p.motors = createMotorRow(func(m elbowdriver.Motor, n int) {
		_ = p.wrapper.StepMotor(m, n)
	})

	p.backlash = widget.NewCheck("Backlash compensation", nil)
	p.backlash.SetChecked(d.Backlash())
	p.backlash.OnChanged = func(on bool) {
		p.wrapper.SetBacklash(on)
	}

	p.command = widget.NewEntry()
	p.command.SetPlaceHolder("EP+10.3 WP-5")
	p.command.OnSubmitted = func(s string) {
		if p.wrapper.Command(s) == nil {
			p.command.SetText("")
		}
		p.refresh()
	}

	p.refresh()
	return p
}

func (p *Panel) appendLog(line string) {
	p.logLines = append(p.logLines, line)
	if len(p.logLines) > maxLogLines {
		p.logLines = p.logLines[len(p.logLines)-maxLogLines:]
	}
	p.logContent.SetText(strings.Join(p.logLines, "\n"))
}

// refresh updates every joint label from the controller
func (p *Panel) refresh() {
	states := p.wrapper.States()
	for _, row := range p.rows {
		row.value.SetText(states[row.joint].String())
	}
}

func (p *Panel) content() fyne.CanvasObject {
	rows := container.NewVBox()
	for _, row := range p.rows {
		rows.Add(row.container())
	}

	logScroll := container.NewVScroll(p.logContent)
	logScroll.SetMinSize(fyne.NewSize(300, 100))

	return container.NewVBox(
		container.NewHBox(
			container.NewPadded(p.sinceMove.text),
			layout.NewSpacer(),
			p.backlash,
			widget.NewButton("Home", func() {
				p.wrapper.Home()
				p.refresh()
			}),
		),
		rows,
		container.NewBorder(nil, nil, widget.NewLabel("Move"), nil, p.command),
		widget.NewAccordion(
			widget.NewAccordionItem("Motors", p.motors.container()),
			widget.NewAccordionItem("Log", logScroll),
		),
	)
}

// Run asks for connection settings, then shows the control panel until the window is closed or
// ctx is done. The controller is closed on exit
func Run(ctx context.Context, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	application := app.NewWithID(appID)

	var c *controller.Controller
	cfg := &controller.Config{}

	cw := NewConfigWindow(application)
	cw.OnSubmit = func() {
		var err error
		c, err = controller.NewFromConfig(ctx, *cfg, logger)
		if err != nil {
			window := application.NewWindow("Elbow Driver")
			window.Show()
			showError(application, window, fmt.Errorf("error starting controller: %w", err))
			return
		}

		panel := newPanel(ctx, c)
		panel.sinceMove.Go(ctx)

		window := application.NewWindow("Elbow Driver")
		window.SetContent(panel.content())
		window.Resize(fyne.NewSize(560, 640))
		window.SetOnClosed(application.Quit)
		window.Show()
	}
	cw.Show(cfg)

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			application.Quit()
		})
	}()

	application.Run()
	cancel()

	if c != nil {
		return c.Close()
	}
	return nil
}
