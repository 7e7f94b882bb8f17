package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/motion"
)

// Command is a console command. Any line that is not a command is read as joint moves
type Command struct {
	Name        string
	Run         func(context.Context, *Controller, io.Writer, []string) error
	Description string
}

var (
	HomeCommand = &Command{
		Name: "HOME",
		Run: func(ctx context.Context, c *Controller, out io.Writer, _ []string) error {
			c.Home(ctx)
			return StateCommand.Run(ctx, c, out, nil)
		},
		Description: "Reset every joint to 90 degrees and clear backlash state. The motors do not move.",
	}
	StateCommand = &Command{
		Name: "STATE",
		Run: func(_ context.Context, c *Controller, out io.Writer, _ []string) error {
			angles, directions := c.State()
			fmt.Fprint(out, FormatState(angles, directions))
			fmt.Fprintf(out, "backlash compensation: %s\n", onOff(c.Backlash()))
			return nil
		},
		Description: "Print the angle and last direction of every joint.",
	}
	HystCommand = &Command{
		Name: "HYST",
		Run: func(_ context.Context, c *Controller, out io.Writer, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: HYST ON|OFF")
			}

			var enabled bool
			switch strings.ToUpper(args[0]) {
			case "ON":
				enabled = true
			case "OFF":
				enabled = false
			default:
				return fmt.Errorf("invalid input: %q", args[0])
			}

			err := c.SetBacklash(enabled)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "backlash compensation: %s\n", onOff(enabled))
			return nil
		},
		Description: "Turn reversal backlash compensation ON or OFF. Moves out of neutral are always compensated.",
	}
	CalibrationCommand = &Command{
		Name: "CAL",
		Run: func(_ context.Context, c *Controller, out io.Writer, _ []string) error {
			status := c.Calibration()
			if len(status) == 0 {
				fmt.Fprintln(out, "no calibration couplings")
				return nil
			}

			lines := make([]string, 0, len(status))
			for coupling, ok := range status {
				lines = append(lines, fmt.Sprintf("%-8s %s", coupling, availability(ok)))
			}
			sort.Strings(lines)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
		Description: "Show which calibration models loaded.",
	}
	MotorCommand = &Command{
		Name: "MOTOR",
		Run: func(_ context.Context, c *Controller, out io.Writer, args []string) error {
			switch len(args) {
			case 0:
			case 1:
				m, err := elbowdriver.ParseMotor(args[0])
				if err != nil {
					return err
				}
				err = c.SelectMotor(m)
				if err != nil {
					return err
				}
			default:
				return errors.New("usage: MOTOR [name]")
			}
			printSelected(c, out)
			return nil
		},
		Description: "Select a motor for tensioning by name, e.g. MOTOR LJR. With no name, show the selected motor.",
	}
	NextMotorCommand = &Command{
		Name: "NEXT",
		Run: func(_ context.Context, c *Controller, out io.Writer, _ []string) error {
			c.NextMotor()
			printSelected(c, out)
			return nil
		},
		Description: "Select the next motor in command order.",
	}
	StepCommand = &Command{
		Name: "STEP",
		Run: func(ctx context.Context, c *Controller, out io.Writer, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: STEP <steps>")
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid input: %q", args[0])
			}
			return tension(ctx, c, out, n)
		},
		Description: "Step the selected motor. Negative steps pull cable in. Limited to 200 either way.",
	}
	TensionCommand = &Command{
		Name: "TENSION",
		Run: func(ctx context.Context, c *Controller, out io.Writer, args []string) error {
			n := TensionFine
			if len(args) > 1 {
				return errors.New("usage: TENSION [FINE|COARSE]")
			}
			if len(args) == 1 {
				switch strings.ToUpper(args[0]) {
				case "FINE":
				case "COARSE":
					n = TensionCoarse
				default:
					return fmt.Errorf("invalid input: %q", args[0])
				}
			}
			return tension(ctx, c, out, n)
		},
		Description: "Tension the selected motor's cable by 10 steps, or 100 with COARSE.",
	}
	DetensionCommand = &Command{
		Name: "DETENSION",
		Run: func(ctx context.Context, c *Controller, out io.Writer, _ []string) error {
			return tension(ctx, c, out, Detension)
		},
		Description: "Pay out 100 steps of cable on the selected motor.",
	}
	HelpCommand = &Command{
		Name:        "HELP",
		Description: "Show all available commands and their descriptions.",
		Run: func(_ context.Context, _ *Controller, out io.Writer, _ []string) error {
			fmt.Fprintln(out, "Available Commands:")
			fmt.Fprintln(out, "<moves>: Move joints together, for example \"EP+10.3 WP-5\". Joints: EP, EY, WP, LJ, RJ, ROLL.")
			for _, cmd := range commands {
				fmt.Fprintf(out, "%s: %s\n", cmd.Name, cmd.Description)
			}
			return nil
		},
	}
)

var commands = []*Command{
	HomeCommand,
	StateCommand,
	HystCommand,
	CalibrationCommand,
	MotorCommand,
	NextMotorCommand,
	StepCommand,
	TensionCommand,
	DetensionCommand,
}

func lookupCommand(name string) (*Command, bool) {
	name = strings.ToUpper(name)
	if name == HelpCommand.Name {
		return HelpCommand, true
	}
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return nil, false
}

// Run reads console lines from in until it is exhausted or ctx is done. Errors are printed to
// out and do not stop the loop
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}

			err := c.Exec(ctx, line, out)
			if err != nil {
				fmt.Fprintln(out, "error:", err.Error())
			}
		}
	}
}

// Exec runs a single console line
func (c *Controller) Exec(ctx context.Context, line string, out io.Writer) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	fields := strings.Fields(line)
	if cmd, ok := lookupCommand(fields[0]); ok {
		return cmd.Run(ctx, c, out, fields[1:])
	}

	deltas, err := motion.ParseDeltas(line)
	if err != nil {
		return err
	}

	steps, err := c.Move(ctx, deltas)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "steps: %s\n", steps)
	return nil
}

// FormatState prints one line per joint in joint order
func FormatState(angles elbowdriver.Angles, directions elbowdriver.Directions) string {
	var b strings.Builder
	for _, j := range elbowdriver.Joints {
		fmt.Fprintf(&b, "%-4s %9.3f  %s\n", j, angles[j], directions[j])
	}
	return b.String()
}

func tension(ctx context.Context, c *Controller, out io.Writer, n int) error {
	m, err := c.Tension(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %+d\n", m, n)
	return nil
}

func printSelected(c *Controller, out io.Writer) {
	m, ok := c.SelectedMotor()
	if !ok {
		fmt.Fprintln(out, "motor: none")
		return
	}
	fmt.Fprintf(out, "motor: %s\n", m)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
