// Package colour defines the per-frame skin colour samples consumed by
// the heart-rate pipeline.
package colour

// Channel indexes a Sample.
type Channel int

// Channel order within a Sample.
const (
	Red Channel = iota
	Green
	Blue
	NumChannels
)

var channelNames = [...]string{"red", "green", "blue"}

func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Sample is the averaged skin-region colour of one video frame in R, G, B
// order.
type Sample [NumChannels]float64

// IsZero reports whether every channel is zero, which upstream samplers
// use to signal that no face was found in the frame.
func (s Sample) IsZero() bool {
	return s[Red] == 0 && s[Green] == 0 && s[Blue] == 0
}

// Signal is a time-ordered sequence of samples (rows = frames).
type Signal []Sample

// Len returns the number of frames.
func (s Signal) Len() int { return len(s) }

// Column copies one channel into a new slice.
func (s Signal) Column(c Channel) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v[c]
	}
	return out
}

// Columns splits the signal into one slice per channel.
func (s Signal) Columns() [NumChannels][]float64 {
	var cols [NumChannels][]float64
	for c := range NumChannels {
		cols[c] = s.Column(c)
	}
	return cols
}

// FromColumns rebuilds a Signal from per-channel slices. The result has
// the length of the shortest column.
func FromColumns(cols [NumChannels][]float64) Signal {
	n := len(cols[0])
	for _, c := range cols[1:] {
		n = min(n, len(c))
	}

	out := make(Signal, n)
	for i := range out {
		for c := range NumChannels {
			out[i][c] = cols[c][i]
		}
	}

	return out
}

// Clone returns a copy of s.
func (s Signal) Clone() Signal {
	if s == nil {
		return nil
	}
	return append(Signal(nil), s...)
}
