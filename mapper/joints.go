package mapper

import (
	"fmt"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/calibration"
	"github.com/PCIGITI/elbow-driver/geometry"
	"github.com/PCIGITI/elbow-driver/hysteresis"
)

// Params are the physical constants the joint mappers are built from. Radii are in mm
type Params struct {
	LeadScrew LeadScrew `yaml:"lead_screw"`
	Capstan   Capstan   `yaml:"capstan"`
	// Roll is the roll motor's own capstan. It is a plain full-step motor, unlike the
	// microstepped elbow capstans
	Roll Capstan `yaml:"roll"`

	// Radius is the lever radius of each joint's own cables
	Radius map[elbowdriver.Joint]float64 `yaml:"radius"`

	// PitchJawRadius is the radius the jaw cables pass over at the elbow pitch joint
	PitchJawRadius float64 `yaml:"pitch_jaw_radius"`

	// PitchWristRouting routes the wrist cables over the elbow pitch joint. Nil leaves the
	// coupling to the calibration model alone
	PitchWristRouting *geometry.Constants `yaml:"pitch_wrist_routing,omitempty"`
	// YawJawRouting routes the jaw cables over the elbow yaw joint
	YawJawRouting geometry.Constants `yaml:"yaw_jaw_routing"`
	// RoutingAngleOffset maps the cumulative joint angle onto the routing models' zero
	RoutingAngleOffset float64 `yaml:"routing_angle_offset"`

	// WristJaw routes the jaw cables over the wrist pitch pulleys
	WristJaw geometry.JawConstants `yaml:"wrist_jaw"`
}

// Actuations returns the primary actuation of every joint.
//
// A positive step pays cable out. For a positive rotation:
//
//	joint         motors            drive
//	ElbowPitch    EPU +  EPD -      capstan
//	ElbowYaw      EYR +  EYL -      capstan
//	WristPitch    WPU +  WPD -      lead screw
//	LeftJaw       LJL +  LJR -      lead screw
//	RightJaw      RJR +  RJL -      lead screw
//	Roll          ROLL +            roll capstan, rounded
func (p Params) Actuations() map[elbowdriver.Joint]Actuation {
	return map[elbowdriver.Joint]Actuation{
		elbowdriver.ElbowPitch: {
			Motors:   []SignedMotor{Plus(elbowdriver.EPU), Minus(elbowdriver.EPD)},
			RadiusMM: p.Radius[elbowdriver.ElbowPitch],
			Drive:    p.Capstan,
		},
		elbowdriver.ElbowYaw: {
			Motors:   []SignedMotor{Plus(elbowdriver.EYR), Minus(elbowdriver.EYL)},
			RadiusMM: p.Radius[elbowdriver.ElbowYaw],
			Drive:    p.Capstan,
		},
		elbowdriver.WristPitch: {
			Motors:   []SignedMotor{Plus(elbowdriver.WPU), Minus(elbowdriver.WPD)},
			RadiusMM: p.Radius[elbowdriver.WristPitch],
			Drive:    p.LeadScrew,
		},
		elbowdriver.LeftJaw: {
			Motors:   []SignedMotor{Plus(elbowdriver.LJL), Minus(elbowdriver.LJR)},
			RadiusMM: p.Radius[elbowdriver.LeftJaw],
			Drive:    p.LeadScrew,
		},
		elbowdriver.RightJaw: {
			Motors:   []SignedMotor{Plus(elbowdriver.RJR), Minus(elbowdriver.RJL)},
			RadiusMM: p.Radius[elbowdriver.RightJaw],
			Drive:    p.LeadScrew,
		},
		elbowdriver.Roll: {
			Motors:   []SignedMotor{Plus(elbowdriver.ROLL)},
			RadiusMM: p.Radius[elbowdriver.Roll],
			Drive:    p.Roll,
			Round:    true,
		},
	}
}

// NewSet builds the six joint mappers. Couplings:
//
//   - ElbowPitch drags the jaw cables linearly (LJL, LJR shorten; RJL, RJR lengthen), and the
//     wrist through the ElbowPitch->WristPitch calibration model, optionally also through the
//     wrist routing geometry
//   - ElbowYaw drags the jaw cables through the yaw routing geometry (RJL, LJL follow the first
//     length; RJR, LJR the second) and both jaws through the ElbowYaw->jaw calibration models
//   - WristPitch drags the left jaw cables (LJL, LJR) and right jaw cables (RJL, RJR) through
//     the wrist jaw pulleys
func NewSet(p Params, registry *calibration.Registry, backlash *hysteresis.Tracker) (Set, error) {
	act := p.Actuations()

	ep := &Mapper{
		Joint:   elbowdriver.ElbowPitch,
		Primary: act[elbowdriver.ElbowPitch],
		Couplings: []Coupling{
			CableRun{
				RadiusMM: p.PitchJawRadius,
				Drive:    p.LeadScrew,
				Motors: []SignedMotor{
					Minus(elbowdriver.LJL), Minus(elbowdriver.LJR),
					Plus(elbowdriver.RJL), Plus(elbowdriver.RJR),
				},
			},
			Calibrated{
				Predictor: registry.Lookup(elbowdriver.ElbowPitch, elbowdriver.WristPitch),
				Target:    act[elbowdriver.WristPitch],
			},
		},
		Backlash: backlash,
	}
	if p.PitchWristRouting != nil {
		ep.Couplings = append(ep.Couplings, RoutedCables{
			Path:        geometry.New(*p.PitchWristRouting),
			AngleOffset: p.RoutingAngleOffset,
			Drive:       p.LeadScrew,
			Pos:         []SignedMotor{Plus(elbowdriver.WPU)},
			Neg:         []SignedMotor{Plus(elbowdriver.WPD)},
		})
	}

	ey := &Mapper{
		Joint:   elbowdriver.ElbowYaw,
		Primary: act[elbowdriver.ElbowYaw],
		Couplings: []Coupling{
			RoutedCables{
				Path:        geometry.New(p.YawJawRouting),
				AngleOffset: p.RoutingAngleOffset,
				Drive:       p.LeadScrew,
				Pos:         []SignedMotor{Plus(elbowdriver.RJL), Plus(elbowdriver.LJL)},
				Neg:         []SignedMotor{Plus(elbowdriver.RJR), Plus(elbowdriver.LJR)},
			},
			Calibrated{
				Predictor: registry.Lookup(elbowdriver.ElbowYaw, elbowdriver.LeftJaw),
				Target:    act[elbowdriver.LeftJaw],
			},
			Calibrated{
				Predictor: registry.Lookup(elbowdriver.ElbowYaw, elbowdriver.RightJaw),
				Target:    act[elbowdriver.RightJaw],
			},
		},
		Backlash: backlash,
	}

	wp := &Mapper{
		Joint:   elbowdriver.WristPitch,
		Primary: act[elbowdriver.WristPitch],
		Couplings: []Coupling{
			RoutedCables{
				Path:  geometry.NewJawPath(p.WristJaw),
				Drive: p.LeadScrew,
				Pos:   []SignedMotor{Plus(elbowdriver.LJL), Plus(elbowdriver.LJR)},
				Neg:   []SignedMotor{Plus(elbowdriver.RJL), Plus(elbowdriver.RJR)},
			},
		},
		Backlash: backlash,
	}

	set := Set{
		elbowdriver.ElbowPitch: ep,
		elbowdriver.ElbowYaw:   ey,
		elbowdriver.WristPitch: wp,
		elbowdriver.LeftJaw:    {Joint: elbowdriver.LeftJaw, Primary: act[elbowdriver.LeftJaw], Backlash: backlash},
		elbowdriver.RightJaw:   {Joint: elbowdriver.RightJaw, Primary: act[elbowdriver.RightJaw], Backlash: backlash},
		elbowdriver.Roll:       {Joint: elbowdriver.Roll, Primary: act[elbowdriver.Roll], Backlash: backlash},
	}

	for _, j := range elbowdriver.Joints {
		if err := set[j].Validate(); err != nil {
			return nil, fmt.Errorf("invalid mapper: %w", err)
		}
	}
	if err := validDrive(p.LeadScrew); err != nil {
		return nil, fmt.Errorf("lead screw: %w", err)
	}

	return set, nil
}
