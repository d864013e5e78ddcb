package welch

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-rppg/dsp/window"
)

// Config holds the spectral estimator tuning.
type Config struct {
	// SegmentSize is the Welch segment length. Shorter waveforms are
	// analysed as a single Hann-windowed block.
	SegmentSize int
	// Overlap is the number of samples shared by consecutive segments.
	Overlap int
	// LowerBPM zeroes bins below this rate.
	LowerBPM float64
	// ThresholdBPM scales bins below this rate by ScaleFactor.
	ThresholdBPM float64
	// ScaleFactor is the weight applied below ThresholdBPM.
	ScaleFactor float64
	// MaxBPM bounds the searched band.
	MaxBPM float64
	// Window tapers every segment or block before the transform.
	Window window.Type
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the 50/70 BPM tuning with a 0.7 weight and
// 256-sample segments overlapping by 200.
func DefaultConfig() Config {
	return Config{
		SegmentSize:  256,
		Overlap:      200,
		LowerBPM:     50,
		ThresholdBPM: 70,
		ScaleFactor:  0.7,
		MaxBPM:       200,
		Window:       window.TypeHann,
	}
}

// WithSegment sets segment size and overlap. Ignored unless
// 0 <= overlap < size and size >= 2.
func WithSegment(size, overlap int) Option {
	return func(c *Config) {
		if size >= 2 && overlap >= 0 && overlap < size {
			c.SegmentSize = size
			c.Overlap = overlap
		}
	}
}

// WithLowerBPM sets the rate below which bins are discarded.
func WithLowerBPM(bpm float64) Option {
	return func(c *Config) {
		if bpm >= 0 {
			c.LowerBPM = bpm
		}
	}
}

// WithThreshold sets the down-weighting rate and factor. A scale outside
// [0, 1] is ignored.
func WithThreshold(bpm, scale float64) Option {
	return func(c *Config) {
		if bpm >= 0 && scale >= 0 && scale <= 1 {
			c.ThresholdBPM = bpm
			c.ScaleFactor = scale
		}
	}
}

// WithMaxBPM sets the highest rate considered.
func WithMaxBPM(bpm float64) Option {
	return func(c *Config) {
		if bpm > 0 {
			c.MaxBPM = bpm
		}
	}
}

// WithWindow selects the taper. Unknown types are ignored.
func WithWindow(t window.Type) Option {
	return func(c *Config) {
		if window.Info(t).Name != "" {
			c.Window = t
		}
	}
}

// ApplyOptions applies options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

var errInvalidConfig = errors.New("welch: invalid config")

// Validate reports inconsistent settings, such as a config literal
// built without the option constructors.
func (c Config) Validate() error {
	switch {
	case c.SegmentSize < 2:
		return fmt.Errorf("%w: segment size %d", errInvalidConfig, c.SegmentSize)
	case c.Overlap < 0 || c.Overlap >= c.SegmentSize:
		return fmt.Errorf("%w: overlap %d for segment %d", errInvalidConfig, c.Overlap, c.SegmentSize)
	case c.ScaleFactor < 0 || c.ScaleFactor > 1:
		return fmt.Errorf("%w: scale factor %g", errInvalidConfig, c.ScaleFactor)
	case c.MaxBPM <= c.LowerBPM:
		return fmt.Errorf("%w: max %g <= lower %g BPM", errInvalidConfig, c.MaxBPM, c.LowerBPM)
	case window.Info(c.Window).Name == "":
		return fmt.Errorf("%w: window %v", errInvalidConfig, c.Window)
	}
	return nil
}
