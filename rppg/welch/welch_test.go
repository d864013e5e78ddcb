package welch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-rppg/dsp/window"
	"github.com/cwbudde/algo-rppg/internal/testutil"
)

func tone(bpm float64, n int, amp float64) []float64 {
	return testutil.DeterministicSine(bpm/60, 30, amp, n)
}

func sum(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func TestEstimateSingleTone(t *testing.T) {
	tests := []struct {
		name string
		bpm  float64
		n    int
		want float64
	}{
		{"75bpm/240", 75, 240, 75},
		{"60bpm/150", 60, 150, 60},
		{"72bpm/150", 72, 150, 72},
		// Segment path: 256-sample bins labelled with fps*60/len(x).
		{"75bpm/256", 75, 256, 77.34375},
		{"75bpm/300", 75, 300, 66},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Estimate(tone(tc.bpm, tc.n, 1), 30)
			if err != nil {
				t.Fatalf("Estimate: %v", err)
			}

			if math.Abs(res.BPM-tc.want) > 1e-9 {
				t.Fatalf("BPM = %v, want %v", res.BPM, tc.want)
			}
			if math.Abs(res.Resolution-1800/float64(tc.n)) > 1e-12 {
				t.Fatalf("Resolution = %v", res.Resolution)
			}
		})
	}
}

func TestEstimateWithinOneBin(t *testing.T) {
	for _, n := range []int{120, 150, 180, 210, 240} {
		res, err := Estimate(tone(75, n, 1), 30)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if math.Abs(res.BPM-75) > res.Resolution {
			t.Fatalf("n=%d: BPM = %v, more than one bin (%v) from 75", n, res.BPM, res.Resolution)
		}
	}
}

func TestEstimateRejectsLowRateArtifact(t *testing.T) {
	// A 30 BPM component ten times stronger than the pulse.
	for _, tc := range []struct {
		n    int
		want float64
	}{
		{240, 75},
		{150, 72},
	} {
		pulse := tc.want
		x := sum(tone(30, tc.n, 10), tone(pulse, tc.n, 1))

		res, err := Estimate(x, 30)
		if err != nil {
			t.Fatalf("Estimate: %v", err)
		}
		if math.Abs(res.BPM-tc.want) > 1e-9 {
			t.Fatalf("n=%d: BPM = %v, want %v", tc.n, res.BPM, tc.want)
		}
	}
}

func TestEstimateBandWeighting(t *testing.T) {
	res, err := Estimate(tone(75, 240, 1), 30)
	if err != nil {
		t.Fatal(err)
	}

	// Bin k is k*7.5 BPM. Bins 0..6 are below 50 BPM, bins 7..9 below 70.
	for k := 0; k <= 6; k++ {
		if res.Spectrum[k] != 0 {
			t.Fatalf("bin %d (%.1f BPM) = %v, want 0", k, float64(k)*res.Resolution, res.Spectrum[k])
		}
	}

	flat, err := Estimate(tone(75, 240, 1), 30, WithThreshold(70, 1))
	if err != nil {
		t.Fatal(err)
	}
	for k := 7; k <= 9; k++ {
		if math.Abs(res.Spectrum[k]-0.7*flat.Spectrum[k]) > 1e-12 {
			t.Fatalf("bin %d = %v, want 0.7 * %v", k, res.Spectrum[k], flat.Spectrum[k])
		}
	}

	// min(240/2, 30/2, int(200/7.5)) = 15
	if len(res.Spectrum) != 16 {
		t.Fatalf("searched %d bins, want 16", len(res.Spectrum))
	}
}

func TestEstimateSegments(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{255, 1},
		{256, 1},
		{311, 1},
		{312, 2},
		{600, 7},
	}

	e, err := New()
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range tests {
		res, err := e.Estimate(testutil.DeterministicNoise(1, 1, tc.n), 30)
		if err != nil {
			t.Fatalf("n=%d: %v", tc.n, err)
		}
		if res.Segments != tc.want {
			t.Fatalf("n=%d: Segments = %d, want %d", tc.n, res.Segments, tc.want)
		}
	}
}

func TestEstimatorReuseMatchesFresh(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatal(err)
	}

	inputs := [][]float64{
		tone(72, 150, 1),
		tone(75, 300, 1),
		tone(60, 240, 1),
		tone(72, 150, 1),
	}

	for i, x := range inputs {
		got, err := e.Estimate(x, 30)
		if err != nil {
			t.Fatal(err)
		}

		want, err := Estimate(x, 30)
		if err != nil {
			t.Fatal(err)
		}

		if got.BPM != want.BPM || got.Segments != want.Segments {
			t.Fatalf("input %d: reused %+v, fresh %+v", i, got, want)
		}
		testutil.RequireSliceNearlyEqual(t, got.Spectrum, want.Spectrum, 0)
	}
}

func TestEstimateDegenerateInputs(t *testing.T) {
	res, err := Estimate(make([]float64, 200), 30)
	if err != nil || res.BPM != 0 {
		t.Fatalf("silence = %+v, %v; want 0 BPM", res, err)
	}

	res, err = Estimate([]float64{1, -1}, 30)
	if err != nil || res.BPM != 0 {
		t.Fatalf("two samples = %+v, %v", res, err)
	}

	if _, err := Estimate([]float64{1}, 30); !errors.Is(err, ErrTooShort) {
		t.Fatalf("one sample err = %v", err)
	}
	if _, err := Estimate(nil, 30); !errors.Is(err, ErrTooShort) {
		t.Fatalf("empty err = %v", err)
	}
	if _, err := Estimate([]float64{1, math.NaN(), 3}, 30); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("NaN err = %v", err)
	}
	if _, err := Estimate([]float64{1, 2, 3}, 0); !errors.Is(err, ErrInvalidFrameRate) {
		t.Fatalf("fps=0 err = %v", err)
	}
}

func TestEstimateWindowChoice(t *testing.T) {
	x := tone(75, 240, 1)

	var hann []float64
	for _, typ := range []window.Type{window.TypeHann, window.TypeRectangular, window.TypeHamming, window.TypeBlackman} {
		t.Run(typ.String(), func(t *testing.T) {
			got, err := Estimate(x, 30, WithWindow(typ))
			if err != nil {
				t.Fatalf("Estimate: %v", err)
			}
			if math.Abs(got.BPM-75) > 1e-9 {
				t.Fatalf("BPM = %v, want 75", got.BPM)
			}

			if typ == window.TypeHann {
				hann = got.Spectrum
				return
			}
			d, err := testutil.MaxAbsDiff(got.Spectrum, hann)
			if err != nil {
				t.Fatal(err)
			}
			if d == 0 {
				t.Fatalf("%v spectrum identical to Hann", typ)
			}
		})
	}
}

func TestOptionsAndValidate(t *testing.T) {
	cfg := ApplyOptions(
		WithSegment(128, 64),
		WithLowerBPM(55),
		WithThreshold(70, 0.6),
		WithMaxBPM(180),
		WithWindow(window.TypeHamming),
		WithSegment(10, 10),
		WithThreshold(80, 2),
		WithWindow(window.Type(42)),
	)

	want := Config{SegmentSize: 128, Overlap: 64, LowerBPM: 55, ThresholdBPM: 70, ScaleFactor: 0.6, MaxBPM: 180, Window: window.TypeHamming}
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	for _, bad := range []Config{
		{SegmentSize: 1, MaxBPM: 200},
		{SegmentSize: 8, Overlap: 8, MaxBPM: 200},
		{SegmentSize: 8, ScaleFactor: 1.5, MaxBPM: 200},
		{SegmentSize: 8, LowerBPM: 50, MaxBPM: 40},
		{SegmentSize: 8, MaxBPM: 200, Window: window.Type(42)},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("Validate(%+v) = nil", bad)
		}
	}
}
