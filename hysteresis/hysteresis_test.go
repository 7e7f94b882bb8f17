package hysteresis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elbowdriver "github.com/PCIGITI/elbow-driver"
)

func TestCompensateSequence(t *testing.T) {
	const offset = 30.0

	tests := []struct {
		name          string
		steps         float64
		expectedComp  float64
		expectedState elbowdriver.Direction
	}{
		{"FirstMoveFromNeutral", 120, 15, elbowdriver.Positive},
		{"SameDirection", 40, 0, elbowdriver.Positive},
		{"Reversal", -70, -30, elbowdriver.Negative},
		{"SameDirectionAgain", -5, 0, elbowdriver.Negative},
		{"ZeroSteps", 0, 0, elbowdriver.Negative},
		{"ReverseBack", 1, 30, elbowdriver.Positive},
	}

	state := elbowdriver.Neutral
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var comp float64
			comp, state = Compensate(state, tt.steps, offset, true)
			assert.Equal(t, tt.expectedComp, comp)
			assert.Equal(t, tt.expectedState, state)
		})
	}
}

func TestCompensateDisabled(t *testing.T) {
	comp, state := Compensate(elbowdriver.Neutral, -10, 20, false)
	assert.Equal(t, -10.0, comp)
	assert.Equal(t, elbowdriver.Negative, state)

	comp, state = Compensate(state, 10, 20, false)
	assert.Equal(t, 0.0, comp)
	assert.Equal(t, elbowdriver.Positive, state)
}

func TestCompensateReenabled(t *testing.T) {
	_, state := Compensate(elbowdriver.Neutral, 10, 20, true)
	require.Equal(t, elbowdriver.Positive, state)

	// reversal while disabled moves the state
	comp, state := Compensate(state, -5, 20, false)
	assert.Equal(t, 0.0, comp)
	assert.Equal(t, elbowdriver.Negative, state)

	// continuing the same way after enabling is not a reversal
	comp, state = Compensate(state, -5, 20, true)
	assert.Equal(t, 0.0, comp)
	assert.Equal(t, elbowdriver.Negative, state)

	comp, state = Compensate(state, 5, 20, true)
	assert.Equal(t, 20.0, comp)
	assert.Equal(t, elbowdriver.Positive, state)
}

func TestTracker(t *testing.T) {
	tr := Tracker{
		Offsets: Offsets{elbowdriver.WristPitch: 8},
		Enabled: true,
	}

	comp, state := tr.Compensate(elbowdriver.WristPitch, elbowdriver.Negative, 3)
	assert.Equal(t, 8.0, comp)
	assert.Equal(t, elbowdriver.Positive, state)

	comp, state = tr.Compensate(elbowdriver.Roll, elbowdriver.Neutral, -3)
	assert.Equal(t, 0.0, comp)
	assert.Equal(t, elbowdriver.Negative, state)
}
