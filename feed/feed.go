// Package feed receives joint moves from a remote pose source over MQTT
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/motion"
)

const (
	DefaultBroker = "tcp://localhost:1883"
	DefaultTopic  = "elbow/joint_deltas"

	disconnectQuiesce = 250 // ms
)

// Mover executes a combined move. It is satisfied by *controller.Controller
type Mover interface {
	Move(ctx context.Context, deltas motion.Deltas) (elbowdriver.StepVector, error)
}

// Config selects the broker and topic. Results are published on Topic + "/result"
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
}

// ConfigFromEnv reads MQTT_BROKER and MQTT_TOPIC
func ConfigFromEnv() Config {
	cfg := Config{
		Broker: os.Getenv("MQTT_BROKER"),
		Topic:  os.Getenv("MQTT_TOPIC"),
	}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "elbow-driver-" + uuid.NewString()
	}
}

// ResultTopic is where the outcome of each message is published
func (cfg Config) ResultTopic() string {
	return cfg.Topic + "/result"
}

// Subscriber applies every message on the topic as one combined move
type Subscriber struct {
	cfg    Config
	mover  Mover
	logger *zap.Logger
}

func New(cfg Config, mover Mover, logger *zap.Logger) *Subscriber {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		cfg:    cfg,
		mover:  mover,
		logger: logger.Named("feed").With(zap.String("topic", cfg.Topic)),
	}
}

// Run connects and handles messages until ctx is done
func (s *Subscriber) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetOrderMatters(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("error connecting to MQTT broker %s: %w", s.cfg.Broker, token.Error())
	}
	defer client.Disconnect(disconnectQuiesce)
	s.logger.Info("connected to MQTT broker", zap.String("broker", s.cfg.Broker))

	token := client.Subscribe(s.cfg.Topic, s.cfg.QoS, func(c mqtt.Client, msg mqtt.Message) {
		result := s.Handle(ctx, msg.Payload())
		c.Publish(s.cfg.ResultTopic(), s.cfg.QoS, false, result)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("error subscribing to %s: %w", s.cfg.Topic, token.Error())
	}
	s.logger.Info("subscribed")

	<-ctx.Done()

	unsub := client.Unsubscribe(s.cfg.Topic)
	unsub.WaitTimeout(time.Second)

	return nil
}

// Handle parses one message and moves. It returns the text published as the result: the step
// vector, or "error: " and the reason
func (s *Subscriber) Handle(ctx context.Context, payload []byte) string {
	deltas, err := ParsePayload(payload)
	if err != nil {
		s.logger.Warn("invalid message", zap.ByteString("payload", payload), zap.Error(err))
		return "error: " + err.Error()
	}

	steps, err := s.mover.Move(ctx, deltas)
	if err != nil {
		s.logger.Warn("move failed", zap.Stringer("deltas", deltas), zap.Error(err))
		return "error: " + err.Error()
	}

	s.logger.Debug("moved", zap.Stringer("deltas", deltas), zap.Stringer("steps", steps))
	return steps.String()
}

// ParsePayload accepts "EP=10.3,WP=-5" or a JSON object of joint codes to degrees. A joint may
// appear once per message under any of its names
func ParsePayload(payload []byte) (motion.Deltas, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return motion.ParseDeltas(string(trimmed))
	}

	deltas, err := decodeObject(json.NewDecoder(bytes.NewReader(trimmed)))
	if err != nil {
		return nil, err
	}
	if len(deltas) == 0 {
		return nil, fmt.Errorf("%w: no moves in message", elbowdriver.ErrInvalidDelta)
	}
	return deltas, nil
}

// decodeObject reads the object key by key so repeated keys and aliases of one joint are seen
func decodeObject(dec *json.Decoder) (motion.Deltas, error) {
	invalid := func(err error) error {
		return fmt.Errorf("%w: %w", elbowdriver.ErrInvalidDelta, err)
	}

	_, err := dec.Token()
	if err != nil {
		return nil, invalid(err)
	}

	deltas := motion.Deltas{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, invalid(err)
		}
		key, _ := tok.(string)

		j, err := elbowdriver.ParseJoint(key)
		if err != nil {
			return nil, err
		}
		if _, dup := deltas[j]; dup {
			return nil, fmt.Errorf("%w: %s given more than once", elbowdriver.ErrInvalidDelta, j)
		}

		var v float64
		err = dec.Decode(&v)
		if err != nil {
			return nil, invalid(err)
		}
		deltas[j] = v
	}

	_, err = dec.Token()
	if err != nil {
		return nil, invalid(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", elbowdriver.ErrInvalidDelta)
	}
	return deltas, nil
}
