package geometry

import "math"

// point is a position in the joint plane, in metres
type point struct {
	X, Y float64
}

// clampedSqrt is sqrt(max(0, v))
func clampedSqrt(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Sqrt(v)
}

// clampedAsin clamps the argument to [-1, 1] before math.Asin
func clampedAsin(v float64) float64 {
	return math.Asin(clampUnit(v))
}

// clampedAcos clamps the argument to [-1, 1] before math.Acos
func clampedAcos(v float64) float64 {
	return math.Acos(clampUnit(v))
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// exitPoint is where the cable leaves the rotating guide at joint angle theta (radians)
func exitPoint(c Constants, theta float64) point {
	phi := theta - math.Atan2(c.ME, c.OM)
	return point{
		X: c.OE * math.Sin(phi),
		Y: c.OE * math.Cos(phi),
	}
}

// tangentLength is the free cable span from the exit point to its tangent on the pulley at P.
// It is zero when the exit point sits inside the pulley circle
func tangentLength(e point, c Constants) float64 {
	dx := e.X - c.Px
	dy := e.Y - c.Py
	return clampedSqrt(dx*dx + dy*dy - c.RPD*c.RPD)
}

// wrapLength is the free span plus the arc wrapped on the pulley
func wrapLength(e point, l float64, c Constants) float64 {
	return l + c.RPD*(math.Pi-math.Atan2(l, c.RPD)-bearing(e.X-c.Px, e.Y-c.Py))
}

// bearing is atan2(x, y) in [0, 2π). Below P the exit point sweeps across x = 0, where the
// (-π, π] range would jump by 2π. atan2 is defined at the origin so this never fails
func bearing(x, y float64) float64 {
	b := math.Atan2(x, y)
	if b < 0 {
		b += 2 * math.Pi
	}
	return b
}
