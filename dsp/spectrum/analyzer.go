package spectrum

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrInvalidSize reports a transform size below 1.
	ErrInvalidSize = errors.New("spectrum: transform size must be >= 1")
	// ErrLengthMismatch reports an input or output of the wrong length.
	ErrLengthMismatch = errors.New("spectrum: buffer length mismatch")
)

// Analyzer computes one-sided power spectra of real blocks of a fixed size.
//
// An Analyzer reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	size int

	// Exactly one backend is set.
	plan *algofft.Plan[complex128]
	real *fourier.FFT

	in   []complex128
	bins []complex128
}

// NewAnalyzer creates an analyzer for blocks of size samples.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	a := &Analyzer{size: size}

	if isPowerOf2(size) && size > 1 {
		plan, err := algofft.NewPlan64(size)
		if err != nil {
			return nil, fmt.Errorf("spectrum: fft plan for size %d: %w", size, err)
		}

		a.plan = plan
		a.in = make([]complex128, size)
		a.bins = make([]complex128, size)
	} else {
		a.real = fourier.NewFFT(size)
		a.bins = make([]complex128, size/2+1)
	}

	return a, nil
}

// Size returns the block length.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of one-sided bins, Size()/2 + 1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// OneSidedPower writes |X[k]|^2 / Size() for k in [0, Size()/2] into dst.
// x must have exactly Size() samples and dst at least Bins() entries.
func (a *Analyzer) OneSidedPower(dst, x []float64) error {
	if len(x) != a.size {
		return fmt.Errorf("%w: input %d, want %d", ErrLengthMismatch, len(x), a.size)
	}

	nb := a.Bins()
	if len(dst) < nb {
		return fmt.Errorf("%w: output %d, want >= %d", ErrLengthMismatch, len(dst), nb)
	}

	if a.plan != nil {
		for i, v := range x {
			a.in[i] = complex(v, 0)
		}

		if err := a.plan.Forward(a.bins, a.in); err != nil {
			return fmt.Errorf("spectrum: forward transform: %w", err)
		}
	} else {
		a.bins = a.real.Coefficients(a.bins, x)
	}

	out := dst[:nb]
	PowerInto(out, a.bins[:nb])
	vecmath.ScaleBlock(out, out, 1/float64(a.size))

	return nil
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
