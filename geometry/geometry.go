package geometry

import "math"

// PathModel maps a joint angle in degrees to the lengths in millimetres of the two cables
// of an antagonistic pair routed across that joint
type PathModel interface {
	Lengths(angleDeg float64) (pos, neg float64)
}

// Constants are the fixed physical parameters of one cable routing. Lengths are in metres and
// angles in degrees, as measured on the mechanism
type Constants struct {
	LAE float64 `yaml:"l_ae"`
	LBC float64 `yaml:"l_bc"`
	RPD float64 `yaml:"r_pd"`
	ROA float64 `yaml:"r_oa"`

	// ALag and BLag are the two calibration angles whose difference is the switch angle
	ALag    float64 `yaml:"a_lag"`
	BLag    float64 `yaml:"b_lag"`
	CDAngle float64 `yaml:"cd_angle"`

	OM float64 `yaml:"om"`
	OE float64 `yaml:"oe"`
	ME float64 `yaml:"me"`
	Px float64 `yaml:"px"`
	Py float64 `yaml:"py"`

	// WrapScale weights the tangent-wrap length outside the linear region
	WrapScale float64 `yaml:"wrap_scale"`
	// HomeLengthMM is the cable length at the home position
	HomeLengthMM float64 `yaml:"home_length_mm"`
}

// SwitchAngle is a − b. The linear region spans ±(90 − SwitchAngle)
func (c Constants) SwitchAngle() float64 {
	return c.ALag - c.BLag
}

// Boundary is the absolute angle where the linear region ends
func (c Constants) Boundary() float64 {
	return 90 - c.SwitchAngle()
}

// BaseLength is the cable length at either region boundary
func (c Constants) BaseLength() float64 {
	return c.RPD*radians(c.CDAngle) + c.LBC + c.LAE
}

// Model evaluates the three-region piecewise path length for one routing
type Model struct {
	c          Constants
	boundary   float64
	base       float64
	wrapOffset float64
}

var _ PathModel = (*Model)(nil)

// New precomputes the derived lengths. The wrap offset is chosen so that the wrapped cable
// equals the linear cable at ±Boundary
func New(c Constants) *Model {
	m := &Model{
		c:        c,
		boundary: c.Boundary(),
		base:     c.BaseLength(),
	}
	w, ok := m.wrapped(-m.boundary)
	if !ok {
		w = m.base
	}
	m.wrapOffset = m.base - c.WrapScale*w
	return m
}

// Constants returns the constants the model was built from
func (m *Model) Constants() Constants {
	return m.c
}

// Lengths returns the positive and negative cable lengths in millimetres
func (m *Model) Lengths(angleDeg float64) (float64, float64) {
	var pos, neg float64
	switch {
	case angleDeg <= -m.boundary:
		pos = m.linear(angleDeg)
		neg = m.wrapOrFallback(angleDeg)
	case angleDeg <= m.boundary:
		pos = m.linear(angleDeg)
		neg = m.linear(-angleDeg)
	default:
		neg = m.linear(-angleDeg)
		pos = m.wrapOrFallback(-angleDeg)
	}

	return m.toMM(pos), m.toMM(neg)
}

// linear is the cable unwrapping around the capstan of radius r_OA
func (m *Model) linear(angleDeg float64) float64 {
	return m.base + m.c.ROA*radians(m.boundary-angleDeg)
}

// wrapOrFallback is the weighted tangent-wrap length. When the exit point is level with P the
// wrap angle is undefined and the pure offset value is used
func (m *Model) wrapOrFallback(angleDeg float64) float64 {
	w, ok := m.wrapped(angleDeg)
	if !ok {
		return m.wrapOffset + m.c.WrapScale*m.base
	}
	return m.wrapOffset + m.c.WrapScale*w
}

// wrapped is the raw wrap length at angleDeg. A zero tangent length is the limit where the cable
// just touches the pulley, so it is evaluated rather than treated as degenerate
func (m *Model) wrapped(angleDeg float64) (float64, bool) {
	e := exitPoint(m.c, radians(angleDeg))
	if e.Y-m.c.Py == 0 {
		return 0, false
	}
	return wrapLength(e, tangentLength(e, m.c), m.c), true
}

func (m *Model) toMM(l float64) float64 {
	out := m.c.HomeLengthMM + 1000*l
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return m.c.HomeLengthMM
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
