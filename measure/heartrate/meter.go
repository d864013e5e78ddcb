package heartrate

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-rppg/dsp/core"
	"github.com/cwbudde/algo-rppg/rppg/colour"
	"github.com/cwbudde/algo-rppg/rppg/filterbank"
	"github.com/cwbudde/algo-rppg/rppg/history"
	"github.com/cwbudde/algo-rppg/rppg/ppg"
	"github.com/cwbudde/algo-rppg/rppg/welch"
)

// Meter turns a stream of colour samples into heart-rate estimates.
type Meter struct {
	cfg    MeterConfig
	logger *slog.Logger

	history  *history.History
	bank     *filterbank.Bank
	welch    *welch.Estimator
	smoother *Smoother
	pacer    *Pacer

	calibrated     bool
	faceLossFrames int
	emptyFrames    int
	frames         int64
	last           float64
}

// NewMeter creates a meter with the given options.
func NewMeter(opts ...MeterOption) (*Meter, error) {
	cfg := ApplyMeterOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hist, err := history.New(cfg.historyConfig())
	if err != nil {
		return nil, err
	}

	est, err := welch.New(cfg.Welch...)
	if err != nil {
		return nil, err
	}

	m := &Meter{
		cfg:            cfg,
		logger:         cfg.Logger,
		history:        hist,
		bank:           filterbank.New(float64(cfg.FrameRate), cfg.Bandpass...),
		welch:          est,
		faceLossFrames: cfg.faceLossFrames(),
	}

	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	if cfg.Smoothing {
		m.smoother = NewSmoother(cfg.SmoothingHistory, cfg.SmoothingOffset)
	}

	if cfg.Pacing {
		m.pacer = NewPacer(cfg.PacingUpdates, cfg.PacingMaxStep)
	}

	if cfg.PreFilter == filterbank.Bandpass || cfg.PostFilter == filterbank.Bandpass {
		if _, err := m.bank.Coefficients(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	return m, nil
}

// Config returns the meter configuration.
func (m *Meter) Config() MeterConfig { return m.cfg }

// Process ingests one sample and reports the estimate for this frame.
//
// An all-zero sample means no face was found. It is never added to the
// window history. Once FaceLossFrames of them arrive in a row the meter
// reports StateNoFace until a real sample arrives.
func (m *Meter) Process(s colour.Sample) Estimate {
	m.frames++

	if m.pacer != nil {
		m.pacer.Tick()
	}

	if s.IsZero() {
		m.emptyFrames++
		if m.emptyFrames >= m.faceLossFrames {
			if m.emptyFrames == m.faceLossFrames {
				m.logger.Info("face lost", "frames", m.emptyFrames)
			}
			return Estimate{State: StateNoFace}
		}
		return m.waiting()
	}

	m.emptyFrames = 0
	m.history.Push(s)

	if !m.calibrated && m.history.FullWindows() >= m.cfg.CalibrationWindows {
		m.calibrated = true
		m.logger.Debug("calibrated", "frame", m.frames, "windows", m.history.Len())
	}

	if !m.calibrated || !m.history.LastFull() {
		return m.waiting()
	}

	res, err := m.estimate()
	if err != nil {
		m.logger.Warn("skipping frame", "frame", m.frames, "error", err)
		return Estimate{State: StateNoSignal, Resolution: res.Resolution}
	}

	bpm := res.BPM
	if m.smoother != nil {
		bpm = m.smoother.Smooth(res.BPM)
	}

	if m.pacer != nil {
		m.pacer.SetTarget(bpm)
	}

	m.last = bpm

	m.logger.Debug("estimate",
		"frame", m.frames,
		"bpm", bpm,
		"raw", res.BPM,
		"resolution", res.Resolution,
		"segments", res.Segments,
	)

	return Estimate{
		State:      StateReady,
		BPM:        bpm,
		Raw:        res.BPM,
		Resolution: res.Resolution,
	}
}

// waiting reports a frame without a new estimate. Calibration ends once
// CalibrationWindows full windows have accumulated and does not restart
// when old windows are evicted.
func (m *Meter) waiting() Estimate {
	if !m.calibrated {
		return Estimate{State: StateCalibrating}
	}
	return Estimate{State: StateNotReady}
}

// estimate runs pre-filter, extraction, post-filter and Welch over the
// concatenated window history.
func (m *Meter) estimate() (welch.Result, error) {
	sig, err := m.bank.Pre(m.history.Concat(), m.cfg.PreFilter)
	if err != nil {
		return welch.Result{}, err
	}

	pulse, err := ppg.Extract(sig, m.cfg.Algorithm)
	if err != nil {
		return welch.Result{}, err
	}

	pulse, err = m.bank.Post(pulse, m.cfg.PostFilter)
	if err != nil {
		return welch.Result{}, err
	}

	res, err := m.welch.Estimate(pulse, m.cfg.FrameRate)
	if err != nil {
		return res, err
	}

	if !core.IsFinite(res.BPM) {
		return res, welch.ErrNonFinite
	}

	// A flat spectrum peaks at bin 0. Zero is not a heart rate and must
	// not reach the smoother.
	if res.BPM <= 0 {
		return res, welch.ErrNoPeak
	}

	return res, nil
}

// Displayed returns the value to show: the paced value when pacing is
// enabled, otherwise the last reported rate. Zero before the first
// estimate.
func (m *Meter) Displayed() float64 {
	if m.pacer != nil {
		return m.pacer.Value()
	}
	return m.last
}

// Windows returns the number of retained windows.
func (m *Meter) Windows() int { return m.history.Len() }

// Reset drops all stream state, as if the meter were newly created.
func (m *Meter) Reset() {
	m.history.Reset()
	if m.smoother != nil {
		m.smoother.Reset()
	}
	if m.pacer != nil {
		m.pacer.Reset()
	}
	m.calibrated = false
	m.emptyFrames = 0
	m.frames = 0
	m.last = 0
}
