package commands

import (
	"errors"
	"strconv"
	"strings"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/protocol"
)

// maxLineLength bounds a command line. A full step vector of large counts fits comfortably
const maxLineLength = 256

type Command struct {
	Name        string
	Run         func(Device, string) error
	Description string
}

// Device is the motor board
type Device interface {
	// Execute moves every motor by its step count and returns when all have finished
	Execute(elbowdriver.StepVector) error
	// Positions are the step counts moved since power on
	Positions() [elbowdriver.NumMotors]int64
	Release()

	// I/O
	ReadByte() (byte, error)
	Println(...string)
}

var (
	MoveAllMotorsCommand = &Command{
		Name: protocol.MoveAllMotors,
		Run: func(d Device, line string) error {
			v, err := protocol.Parse(line)
			if err != nil {
				return err
			}
			return d.Execute(v)
		},
		Description: "Move all 11 motors together. Input: comma separated step counts in motor order.",
	}
	StepMotorCommand = &Command{
		Name: protocol.StepMotor,
		Run: func(d Device, line string) error {
			m, n, err := protocol.ParseStepMotor(line)
			if err != nil {
				return err
			}
			var v elbowdriver.StepVector
			v[m] = n
			return d.Execute(v)
		},
		Description: "Move one motor to tension its cable. Input: motor name and step count, e.g. LJR,-50.",
	}
	PositionsCommand = &Command{
		Name: "POSITIONS",
		Run: func(d Device, _ string) error {
			p := d.Positions()
			for i, s := range p {
				d.Println(elbowdriver.Motor(i).String(), strconv.FormatInt(s, 10))
			}
			return nil
		},
		Description: "Print the step position of every motor.",
	}
	ReleaseCommand = &Command{
		Name: "RELEASE",
		Run: func(d Device, _ string) error {
			d.Release()
			return nil
		},
		Description: "Turn off the roll motor coils.",
	}
	PingCommand = &Command{
		Name: "PING",
		Run: func(Device, string) error {
			return nil
		},
		Description: "Check the board is listening.",
	}
	HelpCommand = &Command{
		Name:        "HELP",
		Description: "Show all available commands and their descriptions.",
		Run: func(d Device, _ string) error {
			d.Println("Available Commands:")
			for _, cmd := range commands {
				d.Println(cmd.Name + ": " + cmd.Description)
			}
			return nil
		},
	}
)

var commands = []*Command{
	MoveAllMotorsCommand,
	StepMotorCommand,
	PositionsCommand,
	ReleaseCommand,
	PingCommand,
}

var errLineTooLong = errors.New("line too long")

// name is the part of a line before ':' or the whole line
func name(line string) string {
	n, _, _ := strings.Cut(line, ":")
	return strings.ToUpper(strings.TrimSpace(n))
}

// Handle runs one line and replies OK or ERR
func Handle(d Device, cmdMap map[string]*Command, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	cmd, ok := cmdMap[name(line)]
	if !ok {
		d.Println(protocol.Nack, "unknown command:", name(line))
		return
	}

	err := cmd.Run(d, line)
	if err != nil {
		d.Println(protocol.Nack, err.Error())
		return
	}
	d.Println(protocol.Ack)
}

// CommandMap indexes every command by name
func CommandMap() map[string]*Command {
	cmdMap := map[string]*Command{
		HelpCommand.Name: HelpCommand,
	}
	for _, cmd := range commands {
		cmdMap[cmd.Name] = cmd
	}
	return cmdMap
}

// Run reads lines from the device forever. It returns only if reading fails with stop
func Run(d Device, stop error) error {
	cmdMap := CommandMap()

	buf := make([]byte, 0, maxLineLength)
	discard := false
	for {
		b, err := d.ReadByte()
		if err != nil {
			if stop != nil && errors.Is(err, stop) {
				return err
			}
			continue
		}

		switch b {
		case '\r', '\n':
			if !discard {
				Handle(d, cmdMap, string(buf))
			}
			buf = buf[:0]
			discard = false
		default:
			if discard {
				continue
			}
			if len(buf) == maxLineLength {
				d.Println(protocol.Nack, errLineTooLong.Error())
				discard = true
				continue
			}
			buf = append(buf, b)
		}
	}
}
