package ppg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-rppg/dsp/core"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

var errEigen = errors.New("ppg: covariance eigendecomposition failed")

// ExtractPCA projects the mean-centred samples onto the eigenvector of
// the largest eigenvalue of their 3x3 covariance matrix.
//
// An eigenvector is only defined up to sign. The axis is oriented so its
// largest-magnitude component is positive, which makes the output sign
// stable for a given input.
func ExtractPCA(sig colour.Signal) ([]float64, error) {
	n := len(sig)
	if n == 0 {
		return nil, ErrEmptySignal
	}

	out := make([]float64, n)
	if n < 2 {
		return out, nil
	}

	data := mat.NewDense(n, int(colour.NumChannels), nil)
	for i, s := range sig {
		if !core.AllFinite(s[:]) {
			return nil, ErrNonFinite
		}
		data.SetRow(i, s[:])
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return nil, errEigen
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	axis := mat.Col(nil, floats.MaxIdx(eig.Values(nil)), &vecs)
	orientAxis(axis)

	var mean [colour.NumChannels]float64
	for c := range colour.NumChannels {
		mean[c] = stat.Mean(mat.Col(nil, int(c), data), nil)
	}

	for i, s := range sig {
		v := 0.0
		for c := range colour.NumChannels {
			v += (s[c] - mean[c]) * axis[c]
		}
		out[i] = v
	}

	return out, nil
}

// orientAxis flips v so that its largest-magnitude component is positive.
func orientAxis(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}

	if v[best] < 0 {
		floats.Scale(-1, v)
	}
}
