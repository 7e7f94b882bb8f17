package geometry

// Q3Routing is the wrist pitch cable routing across the elbow pitch joint
var Q3Routing = Constants{
	LAE:          1.91e-3,
	LBC:          1.09e-3,
	RPD:          1.5e-3,
	ROA:          1.25e-3,
	ALag:         66.92,
	BLag:         25.83,
	CDAngle:      25.83,
	OM:           2.25e-3,
	OE:           2.29e-3,
	ME:           0.4e-3,
	Px:           -2.18e-3,
	Py:           2e-3,
	WrapScale:    0.1,
	HomeLengthMM: 24.1,
}

// Q4Routing is the jaw cable routing across the elbow yaw joint
var Q4Routing = Constants{
	LAE:          1.75e-3,
	LBC:          1.48e-3,
	RPD:          0.875e-3,
	ROA:          1.3e-3,
	ALag:         76.53,
	BLag:         11.08,
	CDAngle:      11.08,
	OM:           2e-3,
	OE:           2.17e-3,
	ME:           0.858e-3,
	Px:           -1.87e-3,
	Py:           1.85e-3,
	WrapScale:    0.1,
	HomeLengthMM: 28,
}

// WristJaw is the jaw cable routing over the wrist pitch pulleys
var WristJaw = JawConstants{
	L1:  1.457,
	L2:  0.55,
	R1:  0.89,
	C1X: 1.6,
	C1Y: -1.5,
	R2:  1.0,
}
