package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/calibration"
	"github.com/PCIGITI/elbow-driver/config"
	"github.com/PCIGITI/elbow-driver/hysteresis"
	"github.com/PCIGITI/elbow-driver/mapper"
	"github.com/PCIGITI/elbow-driver/motion"
	"github.com/PCIGITI/elbow-driver/protocol"
	"github.com/PCIGITI/elbow-driver/twchart"
)

var (
	ErrNoBacklash = errors.New("backlash compensation is not configured")
	ErrNoMotor    = errors.New("no motor selected")
)

// Single motor step sizes. Tensioning pulls cable in, which is a negative step
const (
	TensionFine   = -10
	TensionCoarse = -100
	Detension     = 100
)

// Controller owns the joint angles and direction states of one manipulator. Every call is
// serialized so the console, UI and remote feed can share it
type Controller struct {
	logger    *zap.Logger
	transport Transport
	recorder  recorder
	registry  *calibration.Registry

	mtx        sync.Mutex
	aggregator *motion.Aggregator
	backlash   *hysteresis.Tracker
	angles     elbowdriver.Angles
	directions elbowdriver.Directions
	startTime  time.Time

	// selected is the motor the console tensions. It starts out invalid
	selected elbowdriver.Motor
}

// Options are the optional collaborators of a Controller
type Options struct {
	Transport Transport
	Registry  *calibration.Registry
	Logger    *zap.Logger
}

// New starts a controller with every joint at home. backlash must be the tracker the mappers
// were built with for SetBacklash to have an effect
func New(mappers mapper.Set, backlash *hysteresis.Tracker, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Transport == nil {
		opts.Transport = WriterTransport{}
	}
	return &Controller{
		logger:     opts.Logger,
		transport:  opts.Transport,
		recorder:   noopRecorder{},
		registry:   opts.Registry,
		aggregator: motion.NewAggregator(mappers),
		backlash:   backlash,
		angles:     elbowdriver.HomeAngles(),
		directions: elbowdriver.Directions{},
		selected:   elbowdriver.Motor(-1),
	}
}

// NewFromEnv creates a controller with ConfigFromEnv
func NewFromEnv(ctx context.Context, logger *zap.Logger) (*Controller, error) {
	return NewFromConfig(ctx, ConfigFromEnv(), logger)
}

// NewFromConfig loads the constants file, opens the serial port and starts a TWChart session
// when an address is configured
func NewFromConfig(ctx context.Context, cfg Config, logger *zap.Logger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	constants, err := config.Load(cfg.ConstantsFile)
	if err != nil {
		return nil, err
	}

	mappers, registry, backlash, err := constants.Build(logger)
	if err != nil {
		return nil, err
	}

	for coupling, ok := range registry.Warm() {
		logger.Info("calibration coupling", zap.Stringer("coupling", coupling), zap.Bool("available", ok))
	}

	var transport Transport = WriterTransport{}
	if cfg.SerialPort != SerialPortNone {
		baudRate, err := strconv.Atoi(cfg.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("invalid baud rate %q: %w", cfg.BaudRate, err)
		}

		transport, err = OpenSerial(ctx, cfg.SerialPort, baudRate, logger)
		if err != nil {
			return nil, err
		}
	}

	c := New(mappers, backlash, Options{
		Transport: transport,
		Registry:  registry,
		Logger:    logger,
	})

	if cfg.TWChartAddr != "" {
		client := twchart.NewClient(cfg.TWChartAddr)
		id, err := client.CreateSession(ctx, cfg.SessionName)
		if err != nil {
			return nil, multierr.Combine(
				fmt.Errorf("error creating TWChart session: %w", err),
				transport.Close(),
			)
		}
		logger.Info("created TWChart session", zap.String("id", id), zap.String("name", cfg.SessionName))
		c.recorder = client
	}

	return c, nil
}

// Move sends one combined command for all deltas. The tracked angles and directions only
// change once the command has been handed to the transport
func (c *Controller) Move(ctx context.Context, deltas motion.Deltas) (elbowdriver.StepVector, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	result, err := c.aggregator.Combine(deltas, c.angles, c.directions)
	if err != nil {
		return elbowdriver.StepVector{}, err
	}

	if !result.Steps.IsZero() {
		err = c.transport.Send(ctx, result.Steps)
		if err != nil {
			return elbowdriver.StepVector{}, fmt.Errorf("error sending command: %w", err)
		}
	}

	c.angles = result.Angles
	c.directions = result.Directions

	c.record(ctx, twchart.NewMove(deltas.String(), result.Steps))

	return result.Steps, nil
}

// StepMotor moves one motor by n steps to tension or slacken its cable. The joint angles are
// not touched, so the motors drift from the tracked pose by exactly what was stepped
func (c *Controller) StepMotor(ctx context.Context, m elbowdriver.Motor, n int) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", elbowdriver.ErrUnknownMotor, int(m))
	}
	err := protocol.CheckMotorSteps(n)
	if err != nil {
		return err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if n == 0 {
		return nil
	}

	err = c.transport.StepMotor(ctx, m, n)
	if err != nil {
		return fmt.Errorf("error sending command: %w", err)
	}

	var steps elbowdriver.StepVector
	steps[m] = n
	c.record(ctx, twchart.NewMove(fmt.Sprintf("%s %+d", m, n), steps))

	return nil
}

// SelectMotor picks the motor the console tensions
func (c *Controller) SelectMotor(m elbowdriver.Motor) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", elbowdriver.ErrUnknownMotor, int(m))
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.selected = m
	return nil
}

// NextMotor selects the motor after the current one in command order, wrapping around. With
// nothing selected it starts at the first motor
func (c *Controller) NextMotor() elbowdriver.Motor {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.selected = c.selected.Next()
	return c.selected
}

// SelectedMotor returns the selected motor and whether one is selected
func (c *Controller) SelectedMotor() (elbowdriver.Motor, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.selected, c.selected.Valid()
}

// Tension steps the selected motor by n
func (c *Controller) Tension(ctx context.Context, n int) (elbowdriver.Motor, error) {
	m, ok := c.SelectedMotor()
	if !ok {
		return m, ErrNoMotor
	}
	return m, c.StepMotor(ctx, m, n)
}

// record logs a sent command and adds it to the session. The first one starts the session
// clock. c.mtx must be held
func (c *Controller) record(ctx context.Context, move twchart.Move) {
	now := time.Now()
	if c.startTime.IsZero() {
		c.startTime = now
		if err := c.recorder.SetStartTime(ctx, now); err != nil {
			c.logger.Warn("error setting session start time", zap.Error(err))
		}
	}

	c.logger.Info("move",
		zap.Stringer("id", move.ID),
		zap.String("command", move.Command),
		zap.Stringer("steps", move.Steps),
	)
	if err := c.recorder.AddEvent(ctx, move.Note(), now); err != nil {
		c.logger.Warn("error recording move", zap.Stringer("id", move.ID), zap.Error(err))
	}
}

// Home resets the tracked state to every joint at home with no backlash taken up. It does not
// move the motors
func (c *Controller) Home(ctx context.Context) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.angles = elbowdriver.HomeAngles()
	c.directions = elbowdriver.Directions{}

	c.logger.Info("reset to home")
	if err := c.recorder.AddStage(ctx, "Home", time.Now()); err != nil {
		c.logger.Warn("error recording home", zap.Error(err))
	}
}

// State returns copies of the tracked angles and directions
func (c *Controller) State() (elbowdriver.Angles, elbowdriver.Directions) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.angles.Clone(), c.directions.Clone()
}

// SetBacklash turns reversal compensation on or off
func (c *Controller) SetBacklash(enabled bool) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.backlash == nil {
		return ErrNoBacklash
	}
	c.backlash.Enabled = enabled
	c.logger.Info("set backlash compensation", zap.Bool("enabled", enabled))
	return nil
}

// Backlash reports whether reversal compensation is on
func (c *Controller) Backlash() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.backlash != nil && c.backlash.Enabled
}

// Calibration reports which coupling models loaded
func (c *Controller) Calibration() map[calibration.Coupling]bool {
	if c.registry == nil {
		return nil
	}
	return c.registry.Warm()
}

// Close ends the session and closes the transport
func (c *Controller) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return multierr.Combine(
		c.recorder.Done(ctx),
		c.transport.Close(),
	)
}
