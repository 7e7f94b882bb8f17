// Package protocol is the line format the host uses to send step vectors to the firmware
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

const (
	// MoveAllMotors prefixes a step vector command
	MoveAllMotors = "MOVE_ALL_MOTORS"
	// StepMotor prefixes a single motor move used to tension one cable
	StepMotor = "STEP_MOTOR"

	// MaxMotorSteps bounds a single STEP_MOTOR move in either direction
	MaxMotorSteps = 200

	// Terminator ends every line sent to the firmware
	Terminator = "\r\n"

	// Ack and Nack prefix the firmware's reply to each command
	Ack  = "OK"
	Nack = "ERR"

	// DefaultBaudRate is the rate the firmware opens its serial port with
	DefaultBaudRate = 9600
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformed      = errors.New("malformed command")
	ErrStepLimit      = errors.New("step count out of range")
)

// Encode formats v as a complete MOVE_ALL_MOTORS line, terminator included
func Encode(v elbowdriver.StepVector) string {
	return MoveAllMotors + ":" + v.String() + Terminator
}

// Parse reads one line (with or without its terminator) back into a step vector
func Parse(line string) (elbowdriver.StepVector, error) {
	var v elbowdriver.StepVector

	line = strings.TrimRight(line, "\r\n")
	name, args, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(name) != MoveAllMotors {
		return v, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	fields := strings.Split(args, ",")
	if len(fields) != elbowdriver.NumMotors {
		return v, fmt.Errorf("%w: expected %d steps, got %d", ErrMalformed, elbowdriver.NumMotors, len(fields))
	}

	for i, f := range fields {
		s, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return v, fmt.Errorf("%w: motor %s: %w", ErrMalformed, elbowdriver.Motor(i), err)
		}
		v[i] = s
	}

	return v, nil
}

// CheckMotorSteps enforces the STEP_MOTOR limit
func CheckMotorSteps(n int) error {
	if n < -MaxMotorSteps || n > MaxMotorSteps {
		return fmt.Errorf("%w: %d is outside -%d..%d", ErrStepLimit, n, MaxMotorSteps, MaxMotorSteps)
	}
	return nil
}

// EncodeStepMotor formats a STEP_MOTOR line moving m by n steps
func EncodeStepMotor(m elbowdriver.Motor, n int) (string, error) {
	if !m.Valid() {
		return "", fmt.Errorf("%w: %d", elbowdriver.ErrUnknownMotor, int(m))
	}
	err := CheckMotorSteps(n)
	if err != nil {
		return "", err
	}
	return StepMotor + ":" + m.String() + "," + strconv.Itoa(n) + Terminator, nil
}

// ParseStepMotor reads a STEP_MOTOR line back into its motor and step count
func ParseStepMotor(line string) (elbowdriver.Motor, int, error) {
	line = strings.TrimRight(line, "\r\n")
	name, args, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(name) != StepMotor {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	motorName, count, ok := strings.Cut(args, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: expected <motor>,<steps>", ErrMalformed)
	}

	m, err := elbowdriver.ParseMotor(motorName)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s steps: %w", ErrMalformed, m, err)
	}

	err = CheckMotorSteps(n)
	if err != nil {
		return 0, 0, err
	}
	return m, n, nil
}

// Reply is the firmware's response line to a command
type Reply struct {
	OK      bool
	Message string
}

// ParseReply interprets a firmware response. Lines that are neither an Ack nor a Nack are
// returned with ok false so they can be logged as device output
func ParseReply(line string) (Reply, bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == Ack || strings.HasPrefix(line, Ack+" "):
		return Reply{OK: true, Message: strings.TrimSpace(strings.TrimPrefix(line, Ack))}, true
	case strings.HasPrefix(line, Nack):
		return Reply{Message: strings.TrimSpace(strings.TrimPrefix(line, Nack))}, true
	default:
		return Reply{Message: line}, false
	}
}

func (r Reply) Err() error {
	if r.OK {
		return nil
	}
	return fmt.Errorf("device rejected command: %s", r.Message)
}
