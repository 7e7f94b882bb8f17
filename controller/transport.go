package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/protocol"
)

const (
	// SerialPortNone runs without a device. Commands are computed and recorded but not sent
	SerialPortNone = "None"

	// resetDelay is how long the board takes to reboot after the port is opened
	resetDelay = 2 * time.Second
)

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// Transport delivers step vectors to the motors
type Transport interface {
	Send(ctx context.Context, v elbowdriver.StepVector) error
	// StepMotor moves a single motor, which is how cables are tensioned
	StepMotor(ctx context.Context, m elbowdriver.Motor, n int) error
	Close() error
}

// GetSerialPorts lists USB serial ports, which is where the motor board shows up
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var result []string
	for _, p := range ports {
		if p.IsUSB {
			result = append(result, p.Name)
		}
	}

	if len(result) == 0 {
		return nil, ErrNoUSBSerial
	}

	return result, nil
}

// WriterTransport writes encoded command lines to W. A nil W discards them
type WriterTransport struct {
	W io.Writer
}

var _ Transport = WriterTransport{}

func (t WriterTransport) Send(ctx context.Context, v elbowdriver.StepVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.W == nil {
		return nil
	}
	_, err := io.WriteString(t.W, protocol.Encode(v))
	return err
}

func (t WriterTransport) StepMotor(ctx context.Context, m elbowdriver.Motor, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := protocol.EncodeStepMotor(m, n)
	if err != nil {
		return err
	}
	if t.W == nil {
		return nil
	}
	_, err = io.WriteString(t.W, line)
	return err
}

func (t WriterTransport) Close() error {
	return nil
}

// SerialTransport sends commands over a serial port. Lines coming back from the board are
// logged as they arrive
type SerialTransport struct {
	port   serial.Port
	logger *zap.Logger
	done   chan struct{}

	mtx  sync.Mutex
	last *protocol.Reply
}

var _ Transport = (*SerialTransport)(nil)

// OpenSerial opens the port and waits for the board to come out of reset
func OpenSerial(ctx context.Context, name string, baudRate int, logger *zap.Logger) (*SerialTransport, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", name, err)
	}

	select {
	case <-ctx.Done():
		port.Close()
		return nil, ctx.Err()
	case <-time.After(resetDelay):
	}

	return newSerialTransport(port, logger), nil
}

func newSerialTransport(port serial.Port, logger *zap.Logger) *SerialTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &SerialTransport{
		port:   port,
		logger: logger.Named("serial"),
		done:   make(chan struct{}),
	}
	go t.monitor()
	return t
}

func (t *SerialTransport) Send(ctx context.Context, v elbowdriver.StepVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line := protocol.Encode(v)
	_, err := io.WriteString(t.port, line)
	if err != nil {
		return fmt.Errorf("error writing serial: %w", err)
	}

	t.logger.Debug("sent", zap.Stringer("steps", v))
	return nil
}

func (t *SerialTransport) StepMotor(ctx context.Context, m elbowdriver.Motor, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := protocol.EncodeStepMotor(m, n)
	if err != nil {
		return err
	}
	_, err = io.WriteString(t.port, line)
	if err != nil {
		return fmt.Errorf("error writing serial: %w", err)
	}

	t.logger.Debug("sent", zap.Stringer("motor", m), zap.Int("steps", n))
	return nil
}

// LastReply is the most recent OK/ERR line from the board
func (t *SerialTransport) LastReply() (protocol.Reply, bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.last == nil {
		return protocol.Reply{}, false
	}
	return *t.last, true
}

func (t *SerialTransport) monitor() {
	defer close(t.done)

	scanner := bufio.NewScanner(t.port)
	for scanner.Scan() {
		reply, ok := protocol.ParseReply(scanner.Text())
		if !ok {
			if reply.Message != "" {
				t.logger.Info("device", zap.String("line", reply.Message))
			}
			continue
		}

		t.mtx.Lock()
		t.last = &reply
		t.mtx.Unlock()

		if err := reply.Err(); err != nil {
			t.logger.Warn("command failed", zap.Error(err))
			continue
		}
		t.logger.Debug("command done", zap.String("message", reply.Message))
	}

	if err := scanner.Err(); err != nil {
		t.logger.Debug("stopped reading serial", zap.Error(err))
	}
}

// Close closes the port, which also stops the monitor
func (t *SerialTransport) Close() error {
	err := t.port.Close()
	<-t.done
	return err
}
