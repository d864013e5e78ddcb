// Package synth generates deterministic synthetic skin-colour streams
// with a known pulse rate.
package synth

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-rppg/rppg/colour"
)

// Channel describes one colour channel of a synthetic pulse stream:
// a baseline level plus a sinusoid with the given amplitude and phase
// offset in radians.
type Channel struct {
	Mean      float64
	Amplitude float64
	Phase     float64
}

// DefaultChannels is an R, G, B skin trace whose pulsatile parts are
// mildly correlated but not in phase.
var DefaultChannels = [3]Channel{
	{Mean: 128, Amplitude: 5, Phase: 0},
	{Mean: 100, Amplitude: 2, Phase: 0.6},
	{Mean: 90, Amplitude: 1, Phase: -0.5},
}

// Noise returns uniform white noise in [-amplitude, amplitude) from a
// fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Pulse generates length R, G, B samples of a pulse at bpm beats per
// minute sampled at fps. noise adds white noise of that amplitude to
// every channel, seeded per channel from seed.
func Pulse(bpm, fps float64, length int, channels [3]Channel, noise float64, seed int64) [][3]float64 {
	if length <= 0 {
		return nil
	}

	out := make([][3]float64, length)
	step := 2 * math.Pi * (bpm / 60) / fps

	for ch, p := range channels {
		var jitter []float64
		if noise > 0 {
			jitter = Noise(seed+int64(ch), noise, length)
		}

		for i := range out {
			v := p.Mean + p.Amplitude*math.Sin(step*float64(i)+p.Phase)
			if jitter != nil {
				v += jitter[i]
			}
			out[i][ch] = v
		}
	}

	return out
}

// Samples is Pulse returned as colour samples.
func Samples(bpm, fps float64, length int, channels [3]Channel, noise float64, seed int64) []colour.Sample {
	raw := Pulse(bpm, fps, length, channels, noise, seed)
	if raw == nil {
		return nil
	}

	out := make([]colour.Sample, len(raw))
	for i, s := range raw {
		out[i] = colour.Sample(s)
	}

	return out
}
