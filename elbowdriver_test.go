package elbowdriver

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJoint(t *testing.T) {
	tests := []struct {
		in       string
		expected Joint
	}{
		{"EP", ElbowPitch},
		{"ep", ElbowPitch},
		{"Q1", ElbowPitch},
		{" EY ", ElbowYaw},
		{"Q3", WristPitch},
		{"WP", WristPitch},
		{"Q4L", LeftJaw},
		{"RJ", RightJaw},
		{"roll", Roll},
		{"R", Roll},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			j, err := ParseJoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, j)
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		j, err := ParseJoint("XX")
		assert.ErrorIs(t, err, ErrUnknownJoint)
		assert.Equal(t, JointUnknown, j)
	})
}

func TestJointText(t *testing.T) {
	for _, j := range Joints {
		b, err := j.MarshalText()
		require.NoError(t, err)

		var parsed Joint
		require.NoError(t, parsed.UnmarshalText(b))
		assert.Equal(t, j, parsed)
	}

	_, err := JointUnknown.MarshalText()
	assert.ErrorIs(t, err, ErrUnknownJoint)
}

func TestMotorOrder(t *testing.T) {
	assert.Equal(t, 11, NumMotors)
	assert.Equal(t, "EPU", EPU.String())
	assert.Equal(t, "RJR", RJR.String())
	assert.Equal(t, "ROLL", ROLL.String())
	assert.Equal(t, "Unknown", Motor(11).String())
}

func TestParseMotor(t *testing.T) {
	for i := range NumMotors {
		m, err := ParseMotor(strings.ToLower(Motor(i).String()))
		require.NoError(t, err)
		assert.Equal(t, Motor(i), m)
	}

	_, err := ParseMotor("EP")
	assert.ErrorIs(t, err, ErrUnknownMotor)
	_, err = ParseMotor("")
	assert.ErrorIs(t, err, ErrUnknownMotor)
}

func TestMotorNext(t *testing.T) {
	assert.Equal(t, EPD, EPU.Next())
	assert.Equal(t, ROLL, RJR.Next())
	assert.Equal(t, EPU, ROLL.Next())
	assert.Equal(t, EPU, Motor(-1).Next())
	assert.True(t, ROLL.Valid())
	assert.False(t, Motor(NumMotors).Valid())
}

func TestStepVector(t *testing.T) {
	v := StepVector{1, -2, 0, 0, 0, 0, 0, 0, 0, 0, 300}
	assert.Equal(t, "1,-2,0,0,0,0,0,0,0,0,300", v.String())
	assert.False(t, v.IsZero())
	assert.True(t, StepVector{}.IsZero())
}

func TestRawStepsRound(t *testing.T) {
	var r RawSteps
	r.Add(RawSteps{0.4, 0.5, -0.5, -1.49, 2.5})
	r.Add(RawSteps{0.4, 0, 0, 0, 0, 7})

	assert.Equal(t, StepVector{1, 1, -1, -1, 3, 7}, r.Round())
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Positive, DirectionOf(0.01))
	assert.Equal(t, Negative, DirectionOf(-3))
	assert.Equal(t, Neutral, DirectionOf(0))
	assert.Equal(t, Neutral, DirectionOf(math.Copysign(0, -1)))
}

func TestAnglesClone(t *testing.T) {
	a := HomeAngles()
	assert.Len(t, a, len(Joints))

	c := a.Clone()
	c[ElbowPitch] = 0
	assert.Equal(t, HomeAngle, a[ElbowPitch])

	d := Directions{Roll: Positive}.Clone()
	assert.Equal(t, Positive, d[Roll])
}
