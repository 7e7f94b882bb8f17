package calibration

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultDegree is the polynomial degree used for every coupling fit
const DefaultDegree = 4

var ErrTooFewSamples = errors.New("not enough samples for fit")

// Polynomial is a least-squares fit evaluated on the standardized input (x − Mean) / Scale.
// Coeffs are in ascending order of power
type Polynomial struct {
	Coeffs []float64
	Mean   float64
	Scale  float64
}

// Eval evaluates the polynomial at x using Horner's method
func (p Polynomial) Eval(x float64) float64 {
	z := (x - p.Mean) / p.Scale
	var y float64
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		y = y*z + p.Coeffs[i]
	}
	return y
}

// Fit solves the least-squares polynomial of the given degree through the dataset. The input is
// standardized first to keep the Vandermonde matrix well conditioned
func Fit(d Dataset, degree int) (Polynomial, error) {
	n := d.Len()
	cols := degree + 1
	if n < cols {
		return Polynomial{}, fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, n, cols)
	}

	mean, std := stat.MeanStdDev(d.X, nil)
	if std == 0 {
		return Polynomial{}, errors.New("independent angle has zero spread")
	}

	a := mat.NewDense(n, cols, nil)
	for i, x := range d.X {
		z := (x - mean) / std
		v := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, v)
			v *= z
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), d.Y...))

	var c mat.VecDense
	err := c.SolveVec(a, b)
	if err != nil {
		return Polynomial{}, fmt.Errorf("error solving least squares: %w", err)
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = c.AtVec(j)
	}

	return Polynomial{Coeffs: coeffs, Mean: mean, Scale: std}, nil
}
