// Package config loads meter settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-rppg/dsp/window"
	"github.com/cwbudde/algo-rppg/measure/heartrate"
	"github.com/cwbudde/algo-rppg/rppg/filterbank"
	"github.com/cwbudde/algo-rppg/rppg/ppg"
	"github.com/cwbudde/algo-rppg/rppg/welch"
)

// File is the on-disk configuration. Unset fields keep the meter
// defaults.
type File struct {
	FrameRate          int    `yaml:"fps"`
	WindowSeconds      int    `yaml:"window_seconds"`
	WindowStride       *int   `yaml:"window_stride"`
	CalibrationWindows int    `yaml:"calibration_windows"`
	MaxWindows         int    `yaml:"max_windows"`
	PreFilter          string `yaml:"prefilter"`
	Algorithm          string `yaml:"ppg"`
	PostFilter         string `yaml:"postfilter"`
	FaceLossFrames     int    `yaml:"face_loss_frames"`

	Smoothing Smoothing `yaml:"smoothing"`
	Pacing    Pacing    `yaml:"pacing"`
	Bandpass  Bandpass  `yaml:"bandpass"`
	Welch     Welch     `yaml:"welch"`
	NATS      NATS      `yaml:"nats"`
	Log       Log       `yaml:"log"`
}

// Smoothing configures the rolling-mean clamp.
type Smoothing struct {
	Enabled *bool    `yaml:"enabled"`
	History int      `yaml:"history"`
	Offset  *float64 `yaml:"offset"`
}

// Pacing configures display pacing.
type Pacing struct {
	Enabled bool    `yaml:"enabled"`
	Updates int     `yaml:"updates"`
	MaxStep float64 `yaml:"max_step"`
}

// Bandpass configures the Butterworth band-pass.
type Bandpass struct {
	Order  int     `yaml:"order"`
	LowHz  float64 `yaml:"low_hz"`
	HighHz float64 `yaml:"high_hz"`
}

// Welch configures the spectral estimator.
type Welch struct {
	SegmentSize  int      `yaml:"segment_size"`
	Overlap      *int     `yaml:"overlap"`
	LowerBPM     *float64 `yaml:"lower_bpm"`
	ThresholdBPM *float64 `yaml:"threshold_bpm"`
	ScaleFactor  *float64 `yaml:"scale_factor"`
	MaxBPM       float64  `yaml:"max_bpm"`
	Window       string   `yaml:"window"`
}

// NATS configures the streaming transport.
type NATS struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Publish string `yaml:"publish"`
}

// Log configures the command-line logger.
type Log struct {
	Level string `yaml:"level"`
}

// Load reads and parses a YAML file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}

	return f, nil
}

// Parse decodes YAML. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}

	return f, nil
}

// Options converts the file into meter options. Mode names are parsed
// with filterbank.ParseMode and ppg.ParseAlgorithm.
func (f File) Options() ([]heartrate.MeterOption, error) {
	var opts []heartrate.MeterOption

	add := func(o ...heartrate.MeterOption) { opts = append(opts, o...) }

	if f.FrameRate != 0 {
		add(heartrate.WithFrameRate(f.FrameRate))
	}
	if f.WindowSeconds != 0 {
		add(heartrate.WithWindowSeconds(f.WindowSeconds))
	}
	if f.WindowStride != nil {
		add(heartrate.WithWindowStride(*f.WindowStride))
	}
	if f.CalibrationWindows != 0 {
		add(heartrate.WithCalibrationWindows(f.CalibrationWindows))
	}
	if f.MaxWindows != 0 {
		add(heartrate.WithMaxWindows(f.MaxWindows))
	}
	if f.FaceLossFrames != 0 {
		add(heartrate.WithFaceLossFrames(f.FaceLossFrames))
	}

	if f.PreFilter != "" {
		m, err := filterbank.ParseMode(f.PreFilter)
		if err != nil {
			return nil, fmt.Errorf("config: prefilter: %w", err)
		}
		add(heartrate.WithPreFilter(m))
	}
	if f.Algorithm != "" {
		a, err := ppg.ParseAlgorithm(f.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("config: ppg: %w", err)
		}
		add(heartrate.WithAlgorithm(a))
	}
	if f.PostFilter != "" {
		m, err := filterbank.ParseMode(f.PostFilter)
		if err != nil {
			return nil, fmt.Errorf("config: postfilter: %w", err)
		}
		add(heartrate.WithPostFilter(m))
	}

	if f.Smoothing.Enabled != nil {
		add(heartrate.WithSmoothing(*f.Smoothing.Enabled))
	}
	if f.Smoothing.History != 0 {
		add(heartrate.WithSmoothingHistory(f.Smoothing.History))
	}
	if f.Smoothing.Offset != nil {
		add(heartrate.WithSmoothingOffset(*f.Smoothing.Offset))
	}

	if f.Pacing.Enabled {
		add(heartrate.WithPacing(true))
	}
	if f.Pacing.Updates != 0 {
		add(heartrate.WithPacingUpdates(f.Pacing.Updates))
	}
	if f.Pacing.MaxStep != 0 {
		add(heartrate.WithPacingMaxStep(f.Pacing.MaxStep))
	}

	if f.Bandpass.Order != 0 {
		add(heartrate.WithBandpass(filterbank.WithOrder(f.Bandpass.Order)))
	}
	if f.Bandpass.LowHz != 0 || f.Bandpass.HighHz != 0 {
		def := filterbank.DefaultConfig()
		lo, hi := f.Bandpass.LowHz, f.Bandpass.HighHz
		if lo == 0 {
			lo = def.LowHz
		}
		if hi == 0 {
			hi = def.HighHz
		}
		add(heartrate.WithBandpass(filterbank.WithBand(lo, hi)))
	}

	wopts, err := f.Welch.options()
	if err != nil {
		return nil, err
	}
	add(heartrate.WithWelch(wopts...))

	return opts, nil
}

func (w Welch) options() ([]welch.Option, error) {
	var opts []welch.Option

	if w.SegmentSize != 0 || w.Overlap != nil {
		def := welch.DefaultConfig()
		size := def.SegmentSize
		if w.SegmentSize != 0 {
			size = w.SegmentSize
		}
		overlap := min(def.Overlap, size-1)
		if w.Overlap != nil {
			overlap = *w.Overlap
		}
		opts = append(opts, welch.WithSegment(size, overlap))
	}
	if w.LowerBPM != nil {
		opts = append(opts, welch.WithLowerBPM(*w.LowerBPM))
	}
	if w.ThresholdBPM != nil || w.ScaleFactor != nil {
		def := welch.DefaultConfig()
		bpm, scale := def.ThresholdBPM, def.ScaleFactor
		if w.ThresholdBPM != nil {
			bpm = *w.ThresholdBPM
		}
		if w.ScaleFactor != nil {
			scale = *w.ScaleFactor
		}
		opts = append(opts, welch.WithThreshold(bpm, scale))
	}
	if w.MaxBPM != 0 {
		opts = append(opts, welch.WithMaxBPM(w.MaxBPM))
	}
	if w.Window != "" {
		t, err := window.ParseType(w.Window)
		if err != nil {
			return nil, err
		}
		opts = append(opts, welch.WithWindow(t))
	}

	return opts, nil
}
