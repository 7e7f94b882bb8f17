package geometry

import "math"

// JawConstants describe the jaw cable routing over the wrist pitch pulleys, in millimetres
type JawConstants struct {
	L1  float64 `yaml:"l1"`
	L2  float64 `yaml:"l2"`
	R1  float64 `yaml:"r1"`
	C1X float64 `yaml:"c1x"`
	C1Y float64 `yaml:"c1y"`
	R2  float64 `yaml:"r2"`
}

// JawPath gives the left and right jaw cable path lengths as a function of the absolute wrist
// pitch angle. The right jaw cable is the mirror image, so it is evaluated at 180 − angle
type JawPath struct {
	c JawConstants
}

var _ PathModel = JawPath{}

func NewJawPath(c JawConstants) JawPath {
	return JawPath{c: c}
}

// Lengths returns (left, right) path lengths in millimetres
func (j JawPath) Lengths(angleDeg float64) (float64, float64) {
	return j.PathLength(angleDeg), j.PathLength(180 - angleDeg)
}

// PathLength is the length of one jaw cable for a wrist angle in degrees
func (j JawPath) PathLength(angleDeg float64) float64 {
	p := j.tip(radians(angleDeg))
	if j.c.C1X-p.X < j.c.R1 {
		return j.wrapFirst(p)
	}
	return j.wrapBoth(p)
}

// tip is the cable exit point on link 2
func (j JawPath) tip(q float64) point {
	offset := clampedAsin(j.c.L2 / j.c.L1)
	return point{
		X: j.c.L1 * math.Cos(q-offset),
		Y: j.c.L1 * math.Sin(q-offset),
	}
}

// wrapFirst is the path when the cable only wraps the first pulley: tangent span plus arc
func (j JawPath) wrapFirst(p point) float64 {
	dx, dy := p.X-j.c.C1X, p.Y-j.c.C1Y
	l1 := clampedSqrt(dx*dx + dy*dy - j.c.R1*j.c.R1)
	alpha := ratioAtan(l1, j.c.R1)
	beta := ratioAtan(dx, dy)
	s1 := j.c.R1 * math.Abs(math.Pi/2-alpha-math.Abs(beta))
	return l1 + s1
}

// wrapBoth is the path when the cable crosses between the two pulleys before reaching the tip
func (j JawPath) wrapBoth(p point) float64 {
	l3 := clampedSqrt(p.X*p.X + p.Y*p.Y - j.c.R2*j.c.R2)
	alpha3 := ratioAtan(l3, j.c.R2)
	beta3 := math.Atan2(p.Y, p.X)
	s3 := j.c.R2 * math.Abs(beta3-alpha3)

	centers := j.c.C1X*j.c.C1X + j.c.C1Y*j.c.C1Y
	l2 := clampedSqrt(centers - (j.c.R1+j.c.R2)*(j.c.R1+j.c.R2))

	var alpha2 float64
	if centers > 0 {
		alpha2 = clampedAcos((j.c.R1 + j.c.R2) / math.Sqrt(centers))
	}
	beta2 := ratioAtan(math.Abs(j.c.C1X), math.Abs(j.c.C1Y))
	s2 := j.c.R2 * math.Abs(math.Pi/2-alpha2-beta2)

	return l2 + 2*s2 + l3 + s3
}

// ratioAtan is atan(num/den) with the den == 0 limit taken as ±π/2, or 0 when both are zero
func ratioAtan(num, den float64) float64 {
	if den == 0 {
		if num == 0 {
			return 0
		}
		return math.Copysign(math.Pi/2, num)
	}
	return math.Atan(num / den)
}
