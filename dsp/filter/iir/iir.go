package iir

import (
	"errors"

	"github.com/cwbudde/algo-rppg/dsp/core"
)

var (
	// ErrInvalidParams reports an unusable design request.
	ErrInvalidParams = errors.New("iir: invalid filter parameters")
	// ErrDegenerateCoefficients reports a feedback vector whose leading
	// term is zero, which makes the recurrence undefined.
	ErrDegenerateCoefficients = errors.New("iir: leading denominator coefficient is zero")
)

// Coefficients holds a direct-form transfer function
//
//	H(z) = (B[0] + B[1]z^-1 + ...) / (A[0] + A[1]z^-1 + ...)
type Coefficients struct {
	B []float64
	A []float64
}

// Order returns the filter order, the larger of len(B)-1 and len(A)-1.
func (c Coefficients) Order() int {
	return max(len(c.B), len(c.A)) - 1
}

// Normalized returns a copy with A[0] scaled to 1.
func (c Coefficients) Normalized() (Coefficients, error) {
	if len(c.A) == 0 || c.A[0] == 0 {
		return Coefficients{}, ErrDegenerateCoefficients
	}

	a0 := c.A[0]
	out := Coefficients{
		B: make([]float64, len(c.B)),
		A: make([]float64, len(c.A)),
	}

	for i, v := range c.B {
		out.B[i] = v / a0
	}

	for i, v := range c.A {
		out.A[i] = v / a0
	}

	return out, nil
}

// Filter applies the recurrence
//
//	y[n] = sum_k B[k]x[n-k] - sum_{k>=1} A[k]y[n-k]
//
// with zero initial conditions and returns a new slice.
// If A[0] is zero the output is NaN-filled and ErrDegenerateCoefficients
// is returned.
func (c Coefficients) Filter(x []float64) ([]float64, error) {
	y := make([]float64, len(x))

	norm, err := c.Normalized()
	if err != nil {
		core.FillNaN(y)
		return y, err
	}

	norm.filterInto(y, x)

	return y, nil
}

// FiltFilt filters x forward, reverses the result, filters it again and
// reverses back. The output has zero phase distortion and the squared
// magnitude response of a single pass.
func (c Coefficients) FiltFilt(x []float64) ([]float64, error) {
	y := make([]float64, len(x))

	norm, err := c.Normalized()
	if err != nil {
		core.FillNaN(y)
		return y, err
	}

	tmp := make([]float64, len(x))
	norm.filterInto(tmp, x)
	core.Reverse(tmp)
	norm.filterInto(y, tmp)
	core.Reverse(y)

	return y, nil
}

// filterInto assumes A[0] == 1. dst and src must not alias.
func (c Coefficients) filterInto(dst, src []float64) {
	for n := range src {
		acc := 0.0

		for k, b := range c.B {
			if n-k < 0 {
				break
			}
			acc += b * src[n-k]
		}

		for k := 1; k < len(c.A); k++ {
			if n-k < 0 {
				break
			}
			acc -= c.A[k] * dst[n-k]
		}

		dst[n] = acc
	}
}
