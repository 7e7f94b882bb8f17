package mapper

import (
	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/geometry"
)

// DefaultParams are the constants of the current mechanism
func DefaultParams() Params {
	return Params{
		LeadScrew: LeadScrew{StepsPerRev: 200, PitchMM: 0.3},
		Capstan:   Capstan{StepsPerRev: 3200, RadiusMM: 11},
		Roll:      Capstan{StepsPerRev: 200, RadiusMM: 11},
		Radius: map[elbowdriver.Joint]float64{
			elbowdriver.ElbowPitch: 1.5,
			elbowdriver.ElbowYaw:   1.3,
			elbowdriver.WristPitch: 1.7,
			elbowdriver.LeftJaw:    1.35,
			elbowdriver.RightJaw:   1.35,
			elbowdriver.Roll:       3,
		},
		PitchJawRadius:     1.25,
		YawJawRouting:      geometry.Q4Routing,
		RoutingAngleOffset: elbowdriver.HomeAngle,
		WristJaw:           geometry.WristJaw,
	}
}
