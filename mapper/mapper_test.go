package mapper

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/calibration"
	"github.com/PCIGITI/elbow-driver/geometry"
	"github.com/PCIGITI/elbow-driver/hysteresis"
)

const epOffset = 20.0

func testTracker() *hysteresis.Tracker {
	return &hysteresis.Tracker{
		Offsets: hysteresis.Offsets{
			elbowdriver.ElbowPitch: epOffset,
			elbowdriver.ElbowYaw:   20,
			elbowdriver.WristPitch: 30,
			elbowdriver.LeftJaw:    24,
			elbowdriver.RightJaw:   24,
		},
		Enabled: true,
	}
}

// linearCoupling is a dataset where the driven joint moves half as far as the driver
func linearCoupling() *calibration.Registry {
	var sb strings.Builder
	for i := 1; i < 60; i++ {
		x := float64(i) * 0.05
		fmt.Fprintf(&sb, "%f,%f\n", x, 0.5*x)
	}
	fsys := fstest.MapFS{"q1q3.txt": {Data: []byte(sb.String())}}

	r, err := calibration.Build(fsys, []calibration.CouplingConfig{{
		Driver:  elbowdriver.ElbowPitch,
		Driven:  []elbowdriver.Joint{elbowdriver.WristPitch},
		Primary: calibration.LayerConfig{File: "q1q3.txt", XRange: calibration.Range{Min: 0, Max: 3}},
	}}, nil)
	if err != nil {
		panic(err)
	}
	return r
}

func newTestSet(t *testing.T, registry *calibration.Registry) Set {
	t.Helper()
	set, err := NewSet(DefaultParams(), registry, testTracker())
	require.NoError(t, err)
	return set
}

func TestZeroDelta(t *testing.T) {
	set := newTestSet(t, linearCoupling())

	for _, j := range elbowdriver.Joints {
		for _, state := range []elbowdriver.Direction{elbowdriver.Neutral, elbowdriver.Positive, elbowdriver.Negative} {
			t.Run(j.String()+"/"+state.String(), func(t *testing.T) {
				out, next := set[j].Steps(elbowdriver.HomeAngle, 0, state)
				assert.Equal(t, elbowdriver.RawSteps{}, out)
				assert.Equal(t, state, next)
			})
		}
	}
}

func TestElbowPitchScenario(t *testing.T) {
	params := DefaultParams()
	capstanK := params.Capstan.StepsPerMM()
	leadK := params.LeadScrew.StepsPerMM()

	tests := []struct {
		name     string
		delta    float64
		registry *calibration.Registry
	}{
		{"Plus10.3WithoutCalibration", 10.3, calibration.NewRegistry()},
		{"Minus5WithoutCalibration", -5, calibration.NewRegistry()},
		{"Plus10.3WithCalibration", 10.3, linearCoupling()},
		{"Minus5WithCalibration", -5, linearCoupling()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newTestSet(t, tt.registry)
			out, next := set[elbowdriver.ElbowPitch].Steps(elbowdriver.HomeAngle, tt.delta, elbowdriver.Neutral)

			primary := math.Trunc(radians(tt.delta)*1.5*capstanK) + math.Copysign(epOffset/2, tt.delta)
			assert.Equal(t, primary, out[elbowdriver.EPU])
			assert.Equal(t, -primary, out[elbowdriver.EPD])
			assert.Equal(t, math.Signbit(tt.delta), math.Signbit(out[elbowdriver.EPU]))
			assert.Equal(t, elbowdriver.DirectionOf(tt.delta), next)

			jaw := math.Trunc(radians(tt.delta) * 1.25 * leadK)
			assert.Equal(t, -jaw, out[elbowdriver.LJL])
			assert.Equal(t, -jaw, out[elbowdriver.LJR])
			assert.Equal(t, jaw, out[elbowdriver.RJL])
			assert.Equal(t, jaw, out[elbowdriver.RJR])

			if tt.registry.Lookup(elbowdriver.ElbowPitch, elbowdriver.WristPitch).Available() {
				wrist := math.Trunc(-0.5 * radians(tt.delta) * 1.7 * leadK)
				assert.NotZero(t, out[elbowdriver.WPU])
				assert.InDelta(t, wrist, out[elbowdriver.WPU], 1)
				assert.Equal(t, -out[elbowdriver.WPU], out[elbowdriver.WPD])
			} else {
				assert.Zero(t, out[elbowdriver.WPU])
				assert.Zero(t, out[elbowdriver.WPD])
			}

			for _, m := range []elbowdriver.Motor{elbowdriver.EYR, elbowdriver.EYL, elbowdriver.ROLL} {
				assert.Zero(t, out[m], m.String())
			}
		})
	}
}

func TestPrimarySignTable(t *testing.T) {
	set, err := NewSet(DefaultParams(), nil, nil)
	require.NoError(t, err)

	tests := []struct {
		joint    elbowdriver.Joint
		positive []elbowdriver.Motor
		negative []elbowdriver.Motor
	}{
		{elbowdriver.ElbowPitch, []elbowdriver.Motor{elbowdriver.EPU}, []elbowdriver.Motor{elbowdriver.EPD}},
		{elbowdriver.ElbowYaw, []elbowdriver.Motor{elbowdriver.EYR}, []elbowdriver.Motor{elbowdriver.EYL}},
		{elbowdriver.WristPitch, []elbowdriver.Motor{elbowdriver.WPU}, []elbowdriver.Motor{elbowdriver.WPD}},
		{elbowdriver.LeftJaw, []elbowdriver.Motor{elbowdriver.LJL}, []elbowdriver.Motor{elbowdriver.LJR}},
		{elbowdriver.RightJaw, []elbowdriver.Motor{elbowdriver.RJR}, []elbowdriver.Motor{elbowdriver.RJL}},
		{elbowdriver.Roll, []elbowdriver.Motor{elbowdriver.ROLL}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.joint.String(), func(t *testing.T) {
			out, next := set[tt.joint].Steps(elbowdriver.HomeAngle, 20, elbowdriver.Neutral)
			assert.Equal(t, elbowdriver.Positive, next)
			for _, m := range tt.positive {
				assert.Greater(t, out[m], 0.0, m.String())
			}
			for _, m := range tt.negative {
				assert.Less(t, out[m], 0.0, m.String())
			}
		})
	}
}

func TestSingleJointsOnlyTouchOwnMotors(t *testing.T) {
	set := newTestSet(t, nil)

	tests := []struct {
		joint elbowdriver.Joint
		own   []elbowdriver.Motor
	}{
		{elbowdriver.LeftJaw, []elbowdriver.Motor{elbowdriver.LJL, elbowdriver.LJR}},
		{elbowdriver.RightJaw, []elbowdriver.Motor{elbowdriver.RJL, elbowdriver.RJR}},
		{elbowdriver.Roll, []elbowdriver.Motor{elbowdriver.ROLL}},
	}

	for _, tt := range tests {
		t.Run(tt.joint.String(), func(t *testing.T) {
			out, _ := set[tt.joint].Steps(elbowdriver.HomeAngle, -12, elbowdriver.Positive)
			var others elbowdriver.RawSteps = out
			for _, m := range tt.own {
				assert.NotZero(t, out[m])
				others[m] = 0
			}
			assert.Equal(t, elbowdriver.RawSteps{}, others)
		})
	}
}

func TestElbowYawRoutesJawCables(t *testing.T) {
	set := newTestSet(t, nil)
	params := DefaultParams()
	model := geometry.New(params.YawJawRouting)

	out, _ := set[elbowdriver.ElbowYaw].Steps(elbowdriver.HomeAngle, 10, elbowdriver.Positive)

	pos0, neg0 := model.Lengths(0)
	pos1, neg1 := model.Lengths(10)
	k := params.LeadScrew.StepsPerMM()

	assert.Equal(t, math.Trunc((pos1-pos0)*k), out[elbowdriver.RJL])
	assert.Equal(t, math.Trunc((pos1-pos0)*k), out[elbowdriver.LJL])
	assert.Equal(t, math.Trunc((neg1-neg0)*k), out[elbowdriver.RJR])
	assert.Equal(t, math.Trunc((neg1-neg0)*k), out[elbowdriver.LJR])

	// antagonistic inside the linear region
	assert.Equal(t, -out[elbowdriver.RJL], out[elbowdriver.RJR])
	assert.Less(t, out[elbowdriver.RJL], 0.0)
}

func TestWristPitchRoutesJawCables(t *testing.T) {
	set := newTestSet(t, nil)
	params := DefaultParams()
	jaw := geometry.NewJawPath(params.WristJaw)
	k := params.LeadScrew.StepsPerMM()

	out, next := set[elbowdriver.WristPitch].Steps(60, 15, elbowdriver.Negative)
	assert.Equal(t, elbowdriver.Positive, next)

	left := math.Trunc((jaw.PathLength(75) - jaw.PathLength(60)) * k)
	right := math.Trunc((jaw.PathLength(105) - jaw.PathLength(120)) * k)
	assert.Equal(t, left, out[elbowdriver.LJL])
	assert.Equal(t, left, out[elbowdriver.LJR])
	assert.Equal(t, right, out[elbowdriver.RJL])
	assert.Equal(t, right, out[elbowdriver.RJR])

	primary := math.Trunc(radians(15)*1.7*k) + 30
	assert.Equal(t, primary, out[elbowdriver.WPU])
	assert.Equal(t, -primary, out[elbowdriver.WPD])
}

func TestPitchWristRouting(t *testing.T) {
	params := DefaultParams()
	routing := geometry.Q3Routing
	params.PitchWristRouting = &routing

	set, err := NewSet(params, nil, nil)
	require.NoError(t, err)

	out, _ := set[elbowdriver.ElbowPitch].Steps(elbowdriver.HomeAngle, 30, elbowdriver.Neutral)
	assert.Less(t, out[elbowdriver.WPU], 0.0)
	assert.Greater(t, out[elbowdriver.WPD], 0.0)
}

func TestRoundTrip(t *testing.T) {
	set := newTestSet(t, nil)

	for _, j := range elbowdriver.Joints {
		for _, delta := range []float64{0.5, -3, 10.3, -45, 90} {
			t.Run(fmt.Sprintf("%s/%.1f", j, delta), func(t *testing.T) {
				a := set[j].Primary
				steps := a.Steps(delta)
				back := set[j].StepsToAngle(steps)
				oneStep := set[j].StepsToAngle(1)
				assert.InDelta(t, delta, back, oneStep)
			})
		}
	}
}

func TestRollSteps(t *testing.T) {
	set, err := NewSet(DefaultParams(), nil, nil)
	require.NoError(t, err)

	tests := []struct {
		delta    float64
		expected float64
	}{
		{10, 2},
		{-10, -2},
		{90, 14},
		{-90, -14},
		{1, 0},
		{360, 55},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0f", tt.delta), func(t *testing.T) {
			out, _ := set[elbowdriver.Roll].Steps(elbowdriver.HomeAngle, tt.delta, elbowdriver.Neutral)
			assert.Equal(t, tt.expected, out[elbowdriver.ROLL])

			var others elbowdriver.RawSteps = out
			others[elbowdriver.ROLL] = 0
			assert.Equal(t, elbowdriver.RawSteps{}, others)
		})
	}
}

func TestRollUsesOwnDrive(t *testing.T) {
	params := DefaultParams()
	params.Capstan = Capstan{StepsPerRev: 6400, RadiusMM: 5}

	set, err := NewSet(params, nil, nil)
	require.NoError(t, err)

	out, _ := set[elbowdriver.Roll].Steps(elbowdriver.HomeAngle, 90, elbowdriver.Neutral)
	assert.Equal(t, 14.0, out[elbowdriver.ROLL])
}

func TestDrives(t *testing.T) {
	assert.InDelta(t, 200/0.3, LeadScrew{StepsPerRev: 200, PitchMM: 0.3}.StepsPerMM(), 1e-9)
	assert.InDelta(t, 200/(2*math.Pi*11), Capstan{StepsPerRev: 200, RadiusMM: 11}.StepsPerMM(), 1e-9)

	assert.Error(t, validDrive(nil))
	assert.Error(t, validDrive(LeadScrew{StepsPerRev: 200}))
	assert.Error(t, validDrive(Capstan{StepsPerRev: -1, RadiusMM: 3}))
	assert.NoError(t, validDrive(Capstan{StepsPerRev: 200, RadiusMM: 3}))

	assert.Equal(t, -3.0, stepsForLength(-3.9/100, LeadScrew{StepsPerRev: 100, PitchMM: 1}))
}

func TestNewSetInvalid(t *testing.T) {
	params := DefaultParams()
	params.LeadScrew.PitchMM = 0
	_, err := NewSet(params, nil, nil)
	assert.Error(t, err)

	params = DefaultParams()
	delete(params.Radius, elbowdriver.Roll)
	_, err = NewSet(params, nil, nil)
	assert.Error(t, err)
}

func TestSetLookup(t *testing.T) {
	set := newTestSet(t, nil)

	m, err := set.Lookup(elbowdriver.WristPitch)
	require.NoError(t, err)
	assert.Equal(t, elbowdriver.WristPitch, m.Joint)

	_, err = set.Lookup(elbowdriver.JointUnknown)
	assert.ErrorIs(t, err, elbowdriver.ErrUnknownJoint)
}
