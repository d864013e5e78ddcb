package heartrate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-rppg/dsp/core"
	"github.com/cwbudde/algo-rppg/rppg/filterbank"
	"github.com/cwbudde/algo-rppg/rppg/history"
	"github.com/cwbudde/algo-rppg/rppg/ppg"
	"github.com/cwbudde/algo-rppg/rppg/welch"
)

// ErrInvalidConfig reports a MeterConfig that cannot run.
var ErrInvalidConfig = errors.New("heartrate: invalid config")

// MeterConfig defines configuration for the heart-rate meter.
type MeterConfig struct {
	core.StreamConfig

	// WindowStride is the number of trailing samples a full window hands
	// to the next one.
	WindowStride int
	// CalibrationWindows is the number of windows required before the
	// first estimate.
	CalibrationWindows int
	// MaxWindows caps the retained window history.
	MaxWindows int

	PreFilter  filterbank.Mode
	Algorithm  ppg.Algorithm
	PostFilter filterbank.Mode
	Bandpass   []filterbank.Option
	Welch      []welch.Option

	// Smoothing clamps each estimate to the rolling mean of the previous
	// SmoothingHistory raw estimates plus or minus SmoothingOffset.
	Smoothing        bool
	SmoothingHistory int
	SmoothingOffset  float64

	// FaceLossFrames is the number of consecutive all-zero samples after
	// which the meter reports StateNoFace. Zero means one second.
	FaceLossFrames int

	// Pacing drives Displayed through a Pacer.
	Pacing        bool
	PacingUpdates int
	PacingMaxStep float64

	Logger *slog.Logger
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns defaults for a 30 fps webcam stream.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		StreamConfig:       core.DefaultStreamConfig(),
		WindowStride:       1,
		CalibrationWindows: 5,
		MaxWindows:         8,
		PreFilter:          filterbank.None,
		Algorithm:          ppg.PCA,
		PostFilter:         filterbank.None,
		Smoothing:          true,
		SmoothingHistory:   8,
		SmoothingOffset:    20,
		PacingUpdates:      10,
		PacingMaxStep:      5,
	}
}

// WithFrameRate sets the frame rate in frames per second.
func WithFrameRate(fps int) MeterOption {
	return func(cfg *MeterConfig) {
		core.WithFrameRate(fps)(&cfg.StreamConfig)
	}
}

// WithWindowSeconds sets the duration of one analysis window.
func WithWindowSeconds(seconds int) MeterOption {
	return func(cfg *MeterConfig) {
		core.WithWindowSeconds(seconds)(&cfg.StreamConfig)
	}
}

// WithWindowStride sets the overlap handed from one window to the next.
func WithWindowStride(stride int) MeterOption {
	return func(cfg *MeterConfig) {
		if stride >= 0 {
			cfg.WindowStride = stride
		}
	}
}

// WithCalibrationWindows sets how many windows must accumulate before
// estimates are produced.
func WithCalibrationWindows(n int) MeterOption {
	return func(cfg *MeterConfig) {
		if n > 0 {
			cfg.CalibrationWindows = n
		}
	}
}

// WithMaxWindows sets the window history cap.
func WithMaxWindows(n int) MeterOption {
	return func(cfg *MeterConfig) {
		if n > 0 {
			cfg.MaxWindows = n
		}
	}
}

// WithPreFilter selects the filter applied to each colour channel.
func WithPreFilter(mode filterbank.Mode) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.PreFilter = mode
	}
}

// WithAlgorithm selects the pulse extraction method.
func WithAlgorithm(alg ppg.Algorithm) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Algorithm = alg
	}
}

// WithPostFilter selects the filter applied to the extracted pulse.
func WithPostFilter(mode filterbank.Mode) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.PostFilter = mode
	}
}

// WithBandpass tunes the band-pass used by either filter stage.
func WithBandpass(opts ...filterbank.Option) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Bandpass = append(cfg.Bandpass, opts...)
	}
}

// WithWelch tunes the spectral estimator.
func WithWelch(opts ...welch.Option) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Welch = append(cfg.Welch, opts...)
	}
}

// WithSmoothing enables or disables the rolling-mean clamp.
func WithSmoothing(enabled bool) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Smoothing = enabled
	}
}

// WithSmoothingHistory sets how many raw estimates form the rolling mean.
func WithSmoothingHistory(n int) MeterOption {
	return func(cfg *MeterConfig) {
		if n > 0 {
			cfg.SmoothingHistory = n
		}
	}
}

// WithSmoothingOffset sets the maximum deviation from the rolling mean.
func WithSmoothingOffset(bpm float64) MeterOption {
	return func(cfg *MeterConfig) {
		if bpm >= 0 {
			cfg.SmoothingOffset = bpm
		}
	}
}

// WithFaceLossFrames sets the consecutive empty-frame count that signals
// a lost face.
func WithFaceLossFrames(n int) MeterOption {
	return func(cfg *MeterConfig) {
		if n > 0 {
			cfg.FaceLossFrames = n
		}
	}
}

// WithPacing enables or disables display pacing.
func WithPacing(enabled bool) MeterOption {
	return func(cfg *MeterConfig) {
		cfg.Pacing = enabled
	}
}

// WithPacingUpdates sets the number of ticks over which the displayed
// value approaches a new estimate.
func WithPacingUpdates(n int) MeterOption {
	return func(cfg *MeterConfig) {
		if n > 0 {
			cfg.PacingUpdates = n
		}
	}
}

// WithPacingMaxStep caps the displayed change per tick.
func WithPacingMaxStep(bpm float64) MeterOption {
	return func(cfg *MeterConfig) {
		if bpm > 0 {
			cfg.PacingMaxStep = bpm
		}
	}
}

// WithLogger sets the logger. Nil keeps the default, which discards.
func WithLogger(l *slog.Logger) MeterOption {
	return func(cfg *MeterConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

func (c MeterConfig) historyConfig() history.Config {
	return history.Config{
		WindowSize: c.WindowSize(),
		Stride:     c.WindowStride,
		MaxWindows: c.MaxWindows,
	}
}

// faceLossFrames resolves the zero default to one second of frames.
func (c MeterConfig) faceLossFrames() int {
	if c.FaceLossFrames > 0 {
		return c.FaceLossFrames
	}
	return c.FrameRate
}

// Validate reports settings that would stop the meter from producing
// estimates.
func (c MeterConfig) Validate() error {
	if c.FrameRate <= 0 || c.WindowSeconds <= 0 {
		return fmt.Errorf("%w: frame rate %d, window %ds", ErrInvalidConfig, c.FrameRate, c.WindowSeconds)
	}

	if err := c.historyConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.CalibrationWindows < 1 || c.CalibrationWindows > c.MaxWindows {
		return fmt.Errorf("%w: calibration windows %d outside [1, %d]", ErrInvalidConfig, c.CalibrationWindows, c.MaxWindows)
	}

	if !c.PreFilter.IsPre() {
		return fmt.Errorf("%w: pre-filter %v", ErrInvalidConfig, c.PreFilter)
	}

	if !c.PostFilter.IsPost() {
		return fmt.Errorf("%w: post-filter %v", ErrInvalidConfig, c.PostFilter)
	}

	if c.Algorithm < ppg.Green || c.Algorithm > ppg.CHROM {
		return fmt.Errorf("%w: algorithm %v", ErrInvalidConfig, c.Algorithm)
	}

	if c.Smoothing && (c.SmoothingHistory < 1 || c.SmoothingOffset < 0) {
		return fmt.Errorf("%w: smoothing history %d offset %g", ErrInvalidConfig, c.SmoothingHistory, c.SmoothingOffset)
	}

	if c.Pacing && (c.PacingUpdates < 1 || c.PacingMaxStep <= 0) {
		return fmt.Errorf("%w: pacing updates %d max step %g", ErrInvalidConfig, c.PacingUpdates, c.PacingMaxStep)
	}

	if err := welch.ApplyOptions(c.Welch...).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
