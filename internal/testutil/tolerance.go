package testutil

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-rppg/dsp/core"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair differs by more than eps as judged by core.NearlyEqual.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !core.NearlyEqual(got[i], want[i], eps) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], math.Abs(got[i]-want[i]), eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	if core.AllFinite(data) {
		return
	}
	for i, v := range data {
		if !core.IsFinite(v) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireWithinBins fails t if a rate lies more than bins spectral bins
// of width resolution away from want.
func RequireWithinBins(t *testing.T, gotBPM, wantBPM, resolution, bins float64) {
	t.Helper()
	if d := math.Abs(gotBPM - wantBPM); d > bins*resolution {
		t.Fatalf("%.2f BPM is %.2f from %.2f, limit %.2f (%.1f bins of %.2f)",
			gotBPM, d, wantBPM, bins*resolution, bins, resolution)
	}
}

// MaxAbsDiff returns the infinity-norm distance between two slices.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, math.Inf(1)), nil
}
