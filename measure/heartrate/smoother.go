package heartrate

import (
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-rppg/dsp/core"
)

// Smoother limits jumps between consecutive estimates.
//
// The first size values pass through unchanged and fill the history.
// After that each value is clamped to the mean of the last size raw
// values plus or minus offset, and the raw value replaces the oldest
// entry.
type Smoother struct {
	size    int
	offset  float64
	history []float64
}

// NewSmoother returns a smoother over size raw values. size below 1 is
// treated as 1.
func NewSmoother(size int, offset float64) *Smoother {
	size = max(size, 1)
	return &Smoother{
		size:    size,
		offset:  offset,
		history: make([]float64, 0, size),
	}
}

// Smooth records raw and returns the value to report.
func (s *Smoother) Smooth(raw float64) float64 {
	if len(s.history) < s.size {
		s.history = append(s.history, raw)
		return raw
	}

	mean := stat.Mean(s.history, nil)

	copy(s.history, s.history[1:])
	s.history[len(s.history)-1] = raw

	return core.Clamp(raw, mean-s.offset, mean+s.offset)
}

// Mean returns the rolling mean, or 0 before the first value.
func (s *Smoother) Mean() float64 {
	if len(s.history) == 0 {
		return 0
	}
	return stat.Mean(s.history, nil)
}

// Len returns the number of recorded raw values.
func (s *Smoother) Len() int { return len(s.history) }

// Reset clears the history.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}
