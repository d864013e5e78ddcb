package ppg

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-rppg/dsp/core"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

// ExtractCHROM computes
//
//	X = 3R - 2G
//	Y = 1.5R + G - 1.5B
//	bvp = X - (sd(X)/sd(Y)) * Y
//
// with sample standard deviations. When sd(Y) is zero or undefined the
// ratio is skipped and X is returned.
func ExtractCHROM(sig colour.Signal) []float64 {
	n := len(sig)
	x := make([]float64, n)
	y := make([]float64, n)

	for i, s := range sig {
		r, g, b := s[colour.Red], s[colour.Green], s[colour.Blue]
		x[i] = 3*r - 2*g
		y[i] = 1.5*r + g - 1.5*b
	}

	if n < 2 {
		return x
	}

	sdY := stat.StdDev(y, nil)
	if sdY == 0 || !core.IsFinite(sdY) {
		return x
	}

	alpha := stat.StdDev(x, nil) / sdY
	for i := range x {
		x[i] -= alpha * y[i]
	}

	return x
}
