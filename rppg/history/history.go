// Package history keeps the bounded set of overlapping analysis windows
// that each heart-rate estimate is computed over.
package history

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-rppg/rppg/colour"
)

// ErrInvalidConfig reports window geometry that cannot be honoured.
var ErrInvalidConfig = errors.New("history: invalid config")

// Config describes window geometry.
type Config struct {
	// WindowSize is the number of samples in a full window.
	WindowSize int
	// Stride is the number of trailing samples of a full window that
	// open the next one.
	Stride int
	// MaxWindows caps the number of retained windows.
	MaxWindows int
}

// Validate checks that every window stays within WindowSize.
func (c Config) Validate() error {
	switch {
	case c.WindowSize < 1:
		return fmt.Errorf("%w: window size %d < 1", ErrInvalidConfig, c.WindowSize)
	case c.Stride < 0 || c.Stride >= c.WindowSize:
		return fmt.Errorf("%w: stride %d outside [0, %d)", ErrInvalidConfig, c.Stride, c.WindowSize)
	case c.MaxWindows < 1:
		return fmt.Errorf("%w: max windows %d < 1", ErrInvalidConfig, c.MaxWindows)
	}
	return nil
}

// History is a FIFO of overlapping windows. It is not safe for
// concurrent use.
type History struct {
	cfg     Config
	windows []colour.Signal
}

// New returns an empty history.
func New(cfg Config) (*History, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &History{
		cfg:     cfg,
		windows: make([]colour.Signal, 0, cfg.MaxWindows),
	}, nil
}

// Config returns the geometry the history was built with.
func (h *History) Config() Config { return h.cfg }

// Push adds one sample.
//
// The sample is appended to the newest window while it is short.
// Otherwise a new window is opened from the last Stride samples of the
// newest window followed by s; the oldest window is dropped first when
// the history is already at MaxWindows.
func (h *History) Push(s colour.Sample) {
	n := len(h.windows)
	if n > 0 && len(h.windows[n-1]) < h.cfg.WindowSize {
		h.windows[n-1] = append(h.windows[n-1], s)
		return
	}

	next := make(colour.Signal, 0, h.cfg.WindowSize)
	if n > 0 {
		last := h.windows[n-1]
		next = append(next, last[len(last)-h.cfg.Stride:]...)
	}
	next = append(next, s)

	if n == h.cfg.MaxWindows {
		copy(h.windows, h.windows[1:])
		h.windows = h.windows[:n-1]
	}

	h.windows = append(h.windows, next)
}

// Len returns the number of retained windows.
func (h *History) Len() int { return len(h.windows) }

// LastFull reports whether the newest window holds WindowSize samples.
func (h *History) LastFull() bool {
	n := len(h.windows)
	return n > 0 && len(h.windows[n-1]) == h.cfg.WindowSize
}

// FullWindows returns the number of windows holding WindowSize samples.
// Only the newest window can be short.
func (h *History) FullWindows() int {
	if h.LastFull() {
		return len(h.windows)
	}
	return max(len(h.windows)-1, 0)
}

// Windows returns a copy of the retained windows, oldest first.
func (h *History) Windows() []colour.Signal {
	out := make([]colour.Signal, len(h.windows))
	for i, w := range h.windows {
		out[i] = w.Clone()
	}
	return out
}

// Concat flattens all windows in chronological order. Samples shared by
// consecutive windows appear once per window.
func (h *History) Concat() colour.Signal {
	total := 0
	for _, w := range h.windows {
		total += len(w)
	}

	out := make(colour.Signal, 0, total)
	for _, w := range h.windows {
		out = append(out, w...)
	}

	return out
}

// Reset drops every window.
func (h *History) Reset() {
	h.windows = h.windows[:0]
}
