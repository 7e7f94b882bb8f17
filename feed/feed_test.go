package feed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/motion"
)

type fakeMover struct {
	moves []motion.Deltas
	err   error
}

func (f *fakeMover) Move(_ context.Context, d motion.Deltas) (elbowdriver.StepVector, error) {
	if f.err != nil {
		return elbowdriver.StepVector{}, f.err
	}
	f.moves = append(f.moves, d)
	return elbowdriver.StepVector{1, -1}, nil
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected motion.Deltas
	}{
		{"Text", "EP=10.3,WP=-5", motion.Deltas{elbowdriver.ElbowPitch: 10.3, elbowdriver.WristPitch: -5}},
		{"TextNewline", "RJ=1\n", motion.Deltas{elbowdriver.RightJaw: 1}},
		{"Signed", "EY+2 ROLL-90", motion.Deltas{elbowdriver.ElbowYaw: 2, elbowdriver.Roll: -90}},
		{"JSON", `{"EP": 10.3, "q4l": -2}`, motion.Deltas{elbowdriver.ElbowPitch: 10.3, elbowdriver.LeftJaw: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParsePayload([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParsePayloadErrors(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected error
	}{
		{"Empty", "", elbowdriver.ErrInvalidDelta},
		{"NoValue", "EP", elbowdriver.ErrInvalidDelta},
		{"EmptyObject", "{}", elbowdriver.ErrInvalidDelta},
		{"StringValue", `{"EP": "ten"}`, elbowdriver.ErrInvalidDelta},
		{"UnknownJoint", `{"XX": 1}`, elbowdriver.ErrUnknownJoint},
		{"Unterminated", "{", elbowdriver.ErrInvalidDelta},
		{"RepeatedKey", `{"EP": 1, "EP": 2}`, elbowdriver.ErrInvalidDelta},
		{"Alias", `{"EP": 1, "Q1": 2}`, elbowdriver.ErrInvalidDelta},
		{"AliasCase", `{"q4l": 1, "LJ": -1}`, elbowdriver.ErrInvalidDelta},
		{"Trailing", `{"EP": 1} {"WP": 2}`, elbowdriver.ErrInvalidDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload([]byte(tt.payload))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestHandle(t *testing.T) {
	mover := &fakeMover{}
	s := New(Config{}, mover, nil)

	result := s.Handle(context.Background(), []byte("EP=10.3,WP=-5"))
	assert.Equal(t, "1,-1,0,0,0,0,0,0,0,0,0", result)
	require.Len(t, mover.moves, 1)
	assert.Equal(t, motion.Deltas{elbowdriver.ElbowPitch: 10.3, elbowdriver.WristPitch: -5}, mover.moves[0])

	result = s.Handle(context.Background(), []byte("nonsense"))
	assert.True(t, strings.HasPrefix(result, "error: "), result)
	assert.Len(t, mover.moves, 1)

	mover.err = errors.New("unplugged")
	result = s.Handle(context.Background(), []byte("EP=1"))
	assert.Equal(t, "error: unplugged", result)
}

func TestConfig(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("MQTT_TOPIC", "lab/elbow")

	cfg := ConfigFromEnv()
	assert.Equal(t, DefaultBroker, cfg.Broker)
	assert.Equal(t, "lab/elbow", cfg.Topic)
	assert.Equal(t, "lab/elbow/result", cfg.ResultTopic())
	assert.True(t, strings.HasPrefix(cfg.ClientID, "elbow-driver-"))
	assert.NotEqual(t, cfg.ClientID, ConfigFromEnv().ClientID)
}
