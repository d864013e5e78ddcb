// Package welch picks the dominant pulse rate of a waveform from its
// averaged power spectrum.
package welch

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-rppg/dsp/core"
	"github.com/cwbudde/algo-rppg/dsp/spectrum"
	"github.com/cwbudde/algo-rppg/dsp/window"
)

var (
	// ErrTooShort reports a waveform with fewer than two samples.
	ErrTooShort = errors.New("welch: waveform too short")
	// ErrNonFinite reports NaN or Inf in the waveform.
	ErrNonFinite = errors.New("welch: non-finite waveform")
	// ErrInvalidFrameRate reports a non-positive frame rate.
	ErrInvalidFrameRate = errors.New("welch: frame rate must be > 0")
	// ErrNoPeak reports a spectrum without power in the searched band.
	ErrNoPeak = errors.New("welch: no spectral peak in band")
)

// Result is one spectral estimate.
type Result struct {
	// BPM is Bin * Resolution.
	BPM float64
	// Resolution is the BPM step per bin, fps*60/len(waveform).
	Resolution float64
	// Bin is the index of the selected power peak.
	Bin int
	// Segments is the number of averaged spectra.
	Segments int
	// Spectrum is the weighted power over the searched bins [0, Bin limit].
	Spectrum []float64
}

// Estimator computes Welch estimates and caches transforms and windows
// between calls. It is not safe for concurrent use.
type Estimator struct {
	cfg Config

	segment   *spectrum.Analyzer
	segWindow []float64
	block     *spectrum.Analyzer
	blockWin  []float64
	scratch   []float64
	segPSD    []float64
	accumPSD  []float64
}

// New returns an Estimator.
func New(opts ...Option) (*Estimator, error) {
	cfg := ApplyOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seg, err := spectrum.NewAnalyzer(cfg.SegmentSize)
	if err != nil {
		return nil, err
	}

	return &Estimator{
		cfg:       cfg,
		segment:   seg,
		segWindow: window.Generate(cfg.Window, cfg.SegmentSize),
		segPSD:    make([]float64, seg.Bins()),
	}, nil
}

// Config returns the estimator tuning.
func (e *Estimator) Config() Config { return e.cfg }

// Estimate returns the dominant rate of x sampled at fps frames per
// second.
//
// Waveforms shorter than SegmentSize are windowed as one block; longer
// ones are split into windowed segments advancing by
// SegmentSize-Overlap whose power spectra are averaged. The bin
// resolution is always fps*60/len(x), and the searched bins are
// limited to min(len(x)/2, fps/2, MaxBPM/resolution). Within that range
// bins below LowerBPM are zeroed and bins below ThresholdBPM are scaled
// by ScaleFactor before the first maximum is taken.
func (e *Estimator) Estimate(x []float64, fps int) (Result, error) {
	n := len(x)

	switch {
	case fps <= 0:
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidFrameRate, fps)
	case n < 2:
		return Result{}, fmt.Errorf("%w: %d samples", ErrTooShort, n)
	case !core.AllFinite(x):
		return Result{}, ErrNonFinite
	}

	psd, segments, err := e.averagedPower(x)
	if err != nil {
		return Result{}, err
	}

	res := float64(fps*60) / float64(n)
	limit := min(n/2, fps/2, int(e.cfg.MaxBPM/res), len(psd)-1)

	band := make([]float64, limit+1)
	copy(band, psd)

	for k := range band {
		bpm := float64(k) * res
		if bpm < e.cfg.LowerBPM {
			band[k] = 0
		}
		if bpm < e.cfg.ThresholdBPM {
			band[k] *= e.cfg.ScaleFactor
		}
	}

	bin := floats.MaxIdx(band)

	return Result{
		BPM:        float64(bin) * res,
		Resolution: res,
		Bin:        bin,
		Segments:   segments,
		Spectrum:   band,
	}, nil
}

func (e *Estimator) averagedPower(x []float64) ([]float64, int, error) {
	n := len(x)

	if n < e.cfg.SegmentSize {
		if e.block == nil || e.block.Size() != n {
			a, err := spectrum.NewAnalyzer(n)
			if err != nil {
				return nil, 0, err
			}

			e.block = a
			e.blockWin = window.Generate(e.cfg.Window, n)
			e.accumPSD = make([]float64, a.Bins())
		}

		e.scratch = core.EnsureLen(e.scratch, n)
		if err := window.ApplyTo(e.scratch, x, e.blockWin); err != nil {
			return nil, 0, err
		}

		if err := e.block.OneSidedPower(e.accumPSD, e.scratch); err != nil {
			return nil, 0, err
		}

		return e.accumPSD, 1, nil
	}

	size := e.cfg.SegmentSize
	step := size - e.cfg.Overlap

	e.accumPSD = core.EnsureLen(e.accumPSD, e.segment.Bins())
	core.Zero(e.accumPSD)
	e.scratch = core.EnsureLen(e.scratch, size)
	e.block = nil

	segments := 0
	for start := 0; start+size <= n; start += step {
		if err := window.ApplyTo(e.scratch, x[start:start+size], e.segWindow); err != nil {
			return nil, 0, err
		}

		if err := e.segment.OneSidedPower(e.segPSD, e.scratch); err != nil {
			return nil, 0, err
		}

		vecmath.AddBlockInPlace(e.accumPSD, e.segPSD)
		segments++
	}

	vecmath.ScaleBlock(e.accumPSD, e.accumPSD, 1/float64(segments))

	return e.accumPSD, segments, nil
}

// Estimate is a convenience wrapper that builds a default Estimator.
func Estimate(x []float64, fps int, opts ...Option) (Result, error) {
	e, err := New(opts...)
	if err != nil {
		return Result{}, err
	}
	return e.Estimate(x, fps)
}
