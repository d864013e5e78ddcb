// Package trend removes slow baseline components from a signal.
package trend

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-rppg/dsp/core"
)

// Detrend returns x minus its ordinary least-squares line fitted against
// the sample index. Inputs with fewer than two samples are returned as a
// copy, unchanged.
func Detrend(x []float64) []float64 {
	out := core.Clone(x)
	if len(x) < 2 {
		return out
	}

	idx := make([]float64, len(x))
	for i := range idx {
		idx[i] = float64(i)
	}

	alpha, beta := stat.LinearRegression(idx, x, nil, false)

	for i := range out {
		out[i] -= alpha + beta*idx[i]
	}

	return out
}

// RemoveMean returns x minus its arithmetic mean. Inputs with fewer
// than two samples are returned as a copy, unchanged.
func RemoveMean(x []float64) []float64 {
	out := core.Clone(x)
	if len(x) < 2 {
		return out
	}

	floats.AddConst(-stat.Mean(x, nil), out)

	return out
}
