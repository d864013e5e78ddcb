// Package filterbank applies the pre-extraction and post-extraction
// filter stages of the heart-rate pipeline.
package filterbank

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-rppg/dsp/filter/iir"
	"github.com/cwbudde/algo-rppg/dsp/trend"
	"github.com/cwbudde/algo-rppg/rppg/colour"
)

// ErrUnknownMode reports a filter mode that the stage does not support.
var ErrUnknownMode = errors.New("filterbank: unknown mode")

// Mode selects a filter.
type Mode int

const (
	// None passes the signal through untouched.
	None Mode = iota
	// Bandpass applies the Butterworth band-pass forward and backward.
	Bandpass
	// Detrend subtracts a least-squares line per channel.
	Detrend
	// ZeroMean subtracts the per-channel mean.
	ZeroMean
)

var modeNames = map[Mode]string{
	None:     "none",
	Bandpass: "bandpass",
	Detrend:  "detrend",
	ZeroMean: "zero-mean",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name as printed by String. Underscores and
// case are ignored, so "ZERO_MEAN" is accepted.
func ParseMode(s string) (Mode, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if key == "zeromean" {
		key = "zero-mean"
	}

	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// IsPre reports whether m may be used as a pre-filter.
func (m Mode) IsPre() bool {
	_, ok := modeNames[m]
	return ok
}

// IsPost reports whether m may be used as a post-filter.
func (m Mode) IsPost() bool {
	return m == None || m == Bandpass
}

// Config holds the band-pass design.
type Config struct {
	Order  int
	LowHz  float64
	HighHz float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the heart-rate band: 6th order, 0.65-3 Hz
// (39-180 BPM).
func DefaultConfig() Config {
	return Config{
		Order:  6,
		LowHz:  0.65,
		HighHz: 3.0,
	}
}

// WithOrder sets the band-pass order. Odd or non-positive values are
// ignored.
func WithOrder(order int) Option {
	return func(c *Config) {
		if order >= 2 && order%2 == 0 {
			c.Order = order
		}
	}
}

// WithBand sets the pass band in Hz. Invalid bands are ignored.
func WithBand(lowHz, highHz float64) Option {
	return func(c *Config) {
		if lowHz > 0 && highHz > lowHz {
			c.LowHz = lowHz
			c.HighHz = highHz
		}
	}
}

// Bank applies filter stages at a fixed frame rate. A Bank holds no
// per-signal state and may be shared by concurrent callers.
type Bank struct {
	cfg       Config
	bandpass  iir.Coefficients
	designErr error
}

// New designs the band-pass for fps. A band that cannot be realised at
// this rate is not fatal here; it is reported by the first Bandpass call.
func New(fps float64, opts ...Option) *Bank {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := &Bank{cfg: cfg}
	b.bandpass, b.designErr = iir.ButterworthBandpass(cfg.Order, cfg.LowHz, cfg.HighHz, fps)

	return b
}

// Config returns the band-pass design settings.
func (b *Bank) Config() Config { return b.cfg }

// Coefficients returns the designed band-pass, or the design error.
func (b *Bank) Coefficients() (iir.Coefficients, error) {
	return b.bandpass, b.designErr
}

// Pre filters each colour channel independently. None returns sig itself.
func (b *Bank) Pre(sig colour.Signal, mode Mode) (colour.Signal, error) {
	var f func([]float64) ([]float64, error)

	switch mode {
	case None:
		return sig, nil
	case Bandpass:
		if b.designErr != nil {
			return nil, b.designErr
		}
		f = b.bandpass.FiltFilt
	case Detrend:
		f = func(x []float64) ([]float64, error) { return trend.Detrend(x), nil }
	case ZeroMean:
		f = func(x []float64) ([]float64, error) { return trend.RemoveMean(x), nil }
	default:
		return nil, fmt.Errorf("%w: pre-filter %v", ErrUnknownMode, mode)
	}

	cols := sig.Columns()
	for c := range cols {
		out, err := f(cols[c])
		if err != nil {
			return nil, fmt.Errorf("filterbank: %v channel %v: %w", mode, colour.Channel(c), err)
		}
		cols[c] = out
	}

	return colour.FromColumns(cols), nil
}

// Post filters the extracted pulse waveform. None returns x itself.
func (b *Bank) Post(x []float64, mode Mode) ([]float64, error) {
	switch mode {
	case None:
		return x, nil
	case Bandpass:
		if b.designErr != nil {
			return nil, b.designErr
		}

		out, err := b.bandpass.FiltFilt(x)
		if err != nil {
			return out, fmt.Errorf("filterbank: post %v: %w", mode, err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: post-filter %v", ErrUnknownMode, mode)
	}
}
