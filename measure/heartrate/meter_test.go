package heartrate

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-rppg/internal/testutil"
	"github.com/cwbudde/algo-rppg/rppg/colour"
	"github.com/cwbudde/algo-rppg/rppg/filterbank"
	"github.com/cwbudde/algo-rppg/rppg/ppg"
	"github.com/cwbudde/algo-rppg/rppg/welch"
)

func pulseSamples(bpm float64, n int) []colour.Sample {
	raw := testutil.PulseStream(bpm, 30, n, testutil.DefaultPulseChannels, 0, 0)
	out := make([]colour.Sample, len(raw))
	for i, v := range raw {
		out[i] = colour.Sample(v)
	}
	return out
}

func mustMeter(t *testing.T, opts ...MeterOption) *Meter {
	t.Helper()

	m, err := NewMeter(opts...)
	if err != nil {
		t.Fatalf("NewMeter: %v", err)
	}

	return m
}

// With 30-sample windows and stride 1, window k is full after
// 30 + 29*(k-1) samples.
func fullAfter(k int) int { return 30 + 29*(k-1) }

func TestCalibrationGating(t *testing.T) {
	m := mustMeter(t, WithSmoothing(false))
	samples := pulseSamples(72, 300)

	first := fullAfter(5)

	for i, s := range samples {
		est := m.Process(s)
		n := i + 1

		switch {
		case n < first:
			if est.Value() != -1 || est.State != StateCalibrating {
				t.Fatalf("sample %d: %+v, want calibrating (-1)", n, est)
			}
		case n == first:
			if est.State != StateReady || est.Value() <= 0 {
				t.Fatalf("sample %d: %+v, want first estimate", n, est)
			}
		default:
			if est.Value() == -1 {
				t.Fatalf("sample %d: calibrating again after first estimate", n)
			}
		}
	}
}

func TestEstimatesOnlyWhenWindowFills(t *testing.T) {
	m := mustMeter(t, WithSmoothing(false))

	var ready []int
	for i, s := range pulseSamples(72, 300) {
		est := m.Process(s)
		switch est.State {
		case StateReady:
			ready = append(ready, i+1)
		case StateCalibrating, StateNotReady:
		default:
			t.Fatalf("sample %d: unexpected state %v", i+1, est.State)
		}
	}

	want := []int{146, 175, 204, 233, 262, 291}
	if len(ready) != len(want) {
		t.Fatalf("estimates at %v, want %v", ready, want)
	}
	for i := range want {
		if ready[i] != want[i] {
			t.Fatalf("estimates at %v, want %v", ready, want)
		}
	}

	if m.Windows() != 8 {
		t.Fatalf("Windows = %d, want 8", m.Windows())
	}
}

func TestEndToEndPulse(t *testing.T) {
	m := mustMeter(t,
		WithPreFilter(filterbank.ZeroMean),
		WithAlgorithm(ppg.CHROM),
		WithPostFilter(filterbank.Bandpass),
	)

	var got []Estimate
	for _, s := range pulseSamples(72, 300) {
		if est := m.Process(s); est.State == StateReady {
			got = append(got, est)
		}
	}

	if len(got) == 0 {
		t.Fatal("no estimates after 10 seconds")
	}

	// Each estimate is exact up to one bin of fps*60/len(history).
	for i, est := range got {
		if math.Abs(est.BPM-72) > est.Resolution {
			t.Errorf("estimate %d: %.2f BPM, more than %.2f from 72", i, est.BPM, est.Resolution)
		}
	}

	if math.Abs(got[0].BPM-72) > 1e-9 {
		t.Errorf("first estimate = %v, want 72", got[0].BPM)
	}
}

func TestEndToEndAlgorithms(t *testing.T) {
	for _, alg := range []ppg.Algorithm{ppg.Green, ppg.PCA, ppg.CHROM} {
		for _, pre := range []filterbank.Mode{filterbank.None, filterbank.Bandpass, filterbank.Detrend, filterbank.ZeroMean} {
			t.Run(alg.String()+"/"+pre.String(), func(t *testing.T) {
				m := mustMeter(t, WithAlgorithm(alg), WithPreFilter(pre), WithPostFilter(filterbank.Bandpass))

				n := 0
				for _, s := range pulseSamples(60, 240) {
					est := m.Process(s)
					if est.State != StateReady {
						continue
					}
					n++
					testutil.RequireWithinBins(t, est.BPM, 60, est.Resolution, 1)
				}

				if n == 0 {
					t.Fatal("no estimates")
				}
			})
		}
	}
}

func TestFaceLoss(t *testing.T) {
	m := mustMeter(t, WithFaceLossFrames(5))
	samples := pulseSamples(72, 40)

	for _, s := range samples[:10] {
		m.Process(s)
	}
	before := m.Windows()

	for i := 1; i <= 7; i++ {
		est := m.Process(colour.Sample{})
		want := StateCalibrating
		if i >= 5 {
			want = StateNoFace
		}
		if est.State != want {
			t.Fatalf("empty frame %d: state %v, want %v", i, est.State, want)
		}
		if est.Value() != -1 && est.Value() != 0 {
			t.Fatalf("empty frame %d: value %v", i, est.Value())
		}
	}

	if m.Windows() != before {
		t.Fatalf("empty frames changed history: %d -> %d windows", before, m.Windows())
	}

	if est := m.Process(samples[10]); est.State != StateCalibrating {
		t.Fatalf("after face returns: %v, want calibrating", est.State)
	}
}

func TestFaceLossDefaultsToOneSecond(t *testing.T) {
	m := mustMeter(t, WithFrameRate(25))

	var est Estimate
	for range 24 {
		est = m.Process(colour.Sample{})
	}
	if est.State == StateNoFace {
		t.Fatal("no-face reported before one second")
	}

	if est = m.Process(colour.Sample{}); est.State != StateNoFace {
		t.Fatalf("state after 25 empty frames = %v", est.State)
	}
}

func TestZeroSamplesDoNotDelayEstimates(t *testing.T) {
	ref := mustMeter(t, WithSmoothing(false))
	gappy := mustMeter(t, WithSmoothing(false))

	var want, got []float64
	for i, s := range pulseSamples(72, 240) {
		if est := ref.Process(s); est.State == StateReady {
			want = append(want, est.BPM)
		}

		if i%50 == 0 {
			gappy.Process(colour.Sample{})
		}
		if est := gappy.Process(s); est.State == StateReady {
			got = append(got, est.BPM)
		}
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestSmoothingClampsOutlier(t *testing.T) {
	s := NewSmoother(8, 20)

	for range 8 {
		if got := s.Smooth(70); got != 70 {
			t.Fatalf("warm-up returned %v", got)
		}
	}

	if got := s.Smooth(170); got != 90 {
		t.Fatalf("outlier = %v, want 90", got)
	}
	if got := s.Smooth(-100); got != 70+100.0/8-20 {
		t.Fatalf("low outlier = %v, want %v", got, 70+100.0/8-20)
	}
}

func TestSmoothingPassesInRange(t *testing.T) {
	s := NewSmoother(4, 20)
	for _, v := range []float64{60, 62, 64, 66} {
		s.Smooth(v)
	}

	if got := s.Smooth(75); got != 75 {
		t.Fatalf("in-range value = %v, want 75", got)
	}
	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}
	if math.Abs(s.Mean()-(62+64+66+75)/4.0) > 1e-12 {
		t.Fatalf("Mean = %v", s.Mean())
	}

	s.Reset()
	if s.Len() != 0 || s.Mean() != 0 {
		t.Fatal("Reset did not clear history")
	}
}

func TestPacer(t *testing.T) {
	p := NewPacer(10, 5)

	p.SetTarget(70)
	if p.Value() != 70 {
		t.Fatalf("first target shown as %v", p.Value())
	}

	p.SetTarget(80)
	for i := 1; i <= 10; i++ {
		if got, want := p.Tick(), 70+float64(i); math.Abs(got-want) > 1e-9 {
			t.Fatalf("tick %d = %v, want %v", i, got, want)
		}
	}
	if p.Tick() != 80 {
		t.Fatalf("pacer overshot: %v", p.Value())
	}

	// A large jump is limited by the max step.
	p.SetTarget(180)
	if got := p.Tick(); got != 85 {
		t.Fatalf("capped tick = %v, want 85", got)
	}

	p.SetTarget(84)
	if got := p.Tick(); math.Abs(got-84.9) > 1e-9 {
		t.Fatalf("downward tick = %v, want 84.9", got)
	}

	p.Reset()
	if p.Value() != 0 {
		t.Fatalf("Reset left %v", p.Value())
	}
}

func TestMeterPacing(t *testing.T) {
	m := mustMeter(t, WithPacing(true), WithSmoothing(false))

	var last Estimate
	for _, s := range pulseSamples(72, fullAfter(5)) {
		last = m.Process(s)
	}

	if last.State != StateReady || m.Displayed() != last.BPM {
		t.Fatalf("first estimate %+v, displayed %v", last, m.Displayed())
	}

	unpaced := mustMeter(t, WithSmoothing(false))
	if unpaced.Displayed() != 0 {
		t.Fatal("Displayed before any estimate should be 0")
	}
}

func TestMeterReset(t *testing.T) {
	m := mustMeter(t)
	for _, s := range pulseSamples(72, 200) {
		m.Process(s)
	}

	m.Reset()
	if m.Windows() != 0 || m.Displayed() != 0 {
		t.Fatalf("after Reset: %d windows, displayed %v", m.Windows(), m.Displayed())
	}

	if est := m.Process(pulseSamples(72, 1)[0]); est.State != StateCalibrating {
		t.Fatalf("after Reset state = %v", est.State)
	}
}

func TestNoSignalIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := mustMeter(t,
		WithLogger(logger),
		WithAlgorithm(ppg.CHROM),
		WithCalibrationWindows(1),
		WithMaxWindows(1),
	)

	bad := colour.Sample{math.Inf(1), 1, 1}
	var est Estimate
	for range 30 {
		est = m.Process(bad)
	}

	if est.State != StateNoSignal || est.Value() != 0 {
		t.Fatalf("state = %v value %v, want no-signal", est.State, est.Value())
	}
	if !strings.Contains(buf.String(), "skipping frame") {
		t.Fatalf("expected warning, log:\n%s", buf.String())
	}
}

func TestFlatColourIsNoSignal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m := mustMeter(t, WithLogger(logger))

	flat := 0
	for i := range 300 {
		est := m.Process(colour.Sample{120, 100, 90})
		switch est.State {
		case StateReady:
			t.Fatalf("flat sample %d: ready at %v BPM", i+1, est.BPM)
		case StateNoSignal:
			flat++
		}
	}

	if flat != 6 {
		t.Fatalf("flat ticks reported as no-signal = %d, want 6", flat)
	}
	if !strings.Contains(buf.String(), welch.ErrNoPeak.Error()) {
		t.Fatalf("expected no-peak warning, log:\n%s", buf.String())
	}

	var ready []Estimate
	for _, s := range pulseSamples(72, 300) {
		if est := m.Process(s); est.State == StateReady {
			ready = append(ready, est)
		}
	}

	if len(ready) == 0 {
		t.Fatal("no estimates once the pulse starts")
	}

	// An empty smoother passes the first estimate through unchanged.
	if ready[0].BPM != ready[0].Raw {
		t.Fatalf("first estimate %v smoothed from raw %v: flat ticks reached the smoother", ready[0].BPM, ready[0].Raw)
	}

	for i, est := range ready {
		if est.BPM <= 0 {
			t.Fatalf("estimate %d: %v BPM", i, est.BPM)
		}
	}

	last := ready[len(ready)-1]
	testutil.RequireWithinBins(t, last.Raw, 72, last.Resolution, 1)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []MeterOption
	}{
		{"calibration above cap", []MeterOption{WithCalibrationWindows(9)}},
		{"stride fills window", []MeterOption{WithWindowStride(30)}},
		{"post detrend", []MeterOption{WithPostFilter(filterbank.Detrend)}},
		{"unknown pre", []MeterOption{WithPreFilter(filterbank.Mode(9))}},
		{"unknown algorithm", []MeterOption{WithAlgorithm(ppg.Algorithm(7))}},
		{"band above nyquist", []MeterOption{WithFrameRate(5), WithPreFilter(filterbank.Bandpass)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMeter(tc.opts...); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := NewMeter(WithFrameRate(5)); err != nil {
		t.Fatalf("low frame rate without band-pass: %v", err)
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig()

	if cfg.FrameRate != 30 || cfg.WindowSize() != 30 || cfg.WindowStride != 1 {
		t.Fatalf("stream defaults = %+v", cfg.StreamConfig)
	}
	if cfg.CalibrationWindows != 5 || cfg.MaxWindows != 8 {
		t.Fatalf("window defaults = %d/%d", cfg.CalibrationWindows, cfg.MaxWindows)
	}
	if !cfg.Smoothing || cfg.SmoothingHistory != 8 || cfg.SmoothingOffset != 20 {
		t.Fatalf("smoothing defaults = %v/%d/%v", cfg.Smoothing, cfg.SmoothingHistory, cfg.SmoothingOffset)
	}
	if cfg.faceLossFrames() != 30 {
		t.Fatalf("face loss = %d", cfg.faceLossFrames())
	}

	cfg = ApplyMeterOptions(WithSmoothingHistory(0), WithSmoothingOffset(-1), WithPacingUpdates(-2), WithLogger(nil))
	if cfg.SmoothingHistory != 8 || cfg.SmoothingOffset != 20 || cfg.PacingUpdates != 10 || cfg.Logger != nil {
		t.Fatalf("invalid options were applied: %+v", cfg)
	}
}

func TestStateAndMood(t *testing.T) {
	if StateNoFace.String() != "no-face" || State(99).String() != "State(99)" {
		t.Fatalf("State names: %q %q", StateNoFace, State(99))
	}

	tests := []struct {
		bpm  float64
		want string
	}{
		{151, "Extremely hyped"},
		{150, "Very Intense"},
		{150.5, "Very Intense"},
		{150.99, "Very Intense"},
		{131, "Very Intense"},
		{111, "Highly excited"},
		{91, "Moderately excited"},
		{76, "Slightly excited"},
		{72, "Normal"},
		{75.9, "Normal"},
		{60.7, "Very Calm"},
		{60, "Very Calm"},
		{50, "Extremely calm"},
		{0, "Extremely calm"},
	}

	for _, tc := range tests {
		if got := Mood(tc.bpm); got != tc.want {
			t.Errorf("Mood(%v) = %q, want %q", tc.bpm, got, tc.want)
		}
	}
}
