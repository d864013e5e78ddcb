package iir

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ButterworthBandpass designs a digital Butterworth band-pass filter.
//
// order is the band-pass order, so it must be even; the analog low-pass
// prototype has order/2 poles, each of which maps to a conjugate pair
// between the two cutoffs. Cutoffs are pre-warped with tan, transformed
// to band-pass in the analog domain and mapped to z with the bilinear
// transform. The returned B and A both have order+1 taps and A[0] == 1.
func ButterworthBandpass(order int, lowHz, highHz, sampleRate float64) (Coefficients, error) {
	if order < 2 || order%2 != 0 {
		return Coefficients{}, fmt.Errorf("%w: order %d must be even and >= 2", ErrInvalidParams, order)
	}

	nyquist := sampleRate / 2
	if sampleRate <= 0 || lowHz <= 0 || highHz <= lowHz || highHz >= nyquist {
		return Coefficients{}, fmt.Errorf("%w: band %.3g-%.3g Hz at fs=%.3g Hz", ErrInvalidParams, lowHz, highHz, sampleRate)
	}

	n := order / 2

	wl := math.Tan(math.Pi * (lowHz / nyquist) / 2)
	wh := math.Tan(math.Pi * (highHz / nyquist) / 2)
	bw := wh - wl
	w0sq := complex(wl*wh, 0)

	poles := make([]complex128, 0, order)

	for k := range n {
		theta := math.Pi * float64(2*k+n+1) / float64(2*n)
		p := cmplx.Exp(complex(0, theta))

		pb := p * complex(bw/2, 0)
		d := cmplx.Sqrt(pb*pb - w0sq)
		poles = append(poles, pb+d, pb-d)
	}

	zPoles := make([]complex128, len(poles))
	gain := complex(math.Pow(bw, float64(n)), 0)

	for i, s := range poles {
		zPoles[i] = (1 + s) / (1 - s)
		gain /= 1 - s
	}

	zeros := make([]complex128, 0, order)
	for range n {
		zeros = append(zeros, 1, -1)
	}

	b := realPoly(zeros)
	for i := range b {
		b[i] *= real(gain)
	}

	return Coefficients{B: b, A: realPoly(zPoles)}, nil
}

// realPoly expands prod(z - r) into descending powers and keeps the real
// part. roots must be closed under conjugation.
func realPoly(roots []complex128) []float64 {
	c := make([]complex128, 1, len(roots)+1)
	c[0] = 1

	for _, r := range roots {
		c = append(c, 0)
		for i := len(c) - 1; i > 0; i-- {
			c[i] -= r * c[i-1]
		}
	}

	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}

	return out
}
