package synth

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestPulse(t *testing.T) {
	s := Pulse(72, 30, 300, DefaultChannels, 0, 0)
	if len(s) != 300 {
		t.Fatalf("len = %d, want 300", len(s))
	}
	if math.Abs(s[0][0]-128) > 1e-12 {
		t.Fatalf("R[0] = %v, want 128", s[0][0])
	}
	// 72 BPM at 30 fps repeats every 25 samples.
	for ch := range 3 {
		if math.Abs(s[25][ch]-s[0][ch]) > 1e-9 {
			t.Fatalf("channel %d not periodic: %v vs %v", ch, s[25][ch], s[0][ch])
		}
	}

	if Pulse(72, 30, 0, DefaultChannels, 0, 0) != nil {
		t.Fatal("zero length should yield nil")
	}
}

func TestPulseNoiseDeterministic(t *testing.T) {
	a := Pulse(60, 30, 50, DefaultChannels, 0.5, 9)
	b := Pulse(60, 30, 50, DefaultChannels, 0.5, 9)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	clean := Pulse(60, 30, 50, DefaultChannels, 0, 9)
	if a[0] == clean[0] {
		t.Fatal("noise not applied")
	}
}

func TestNoise(t *testing.T) {
	x := Noise(5, 2, 4000)
	for i, v := range x {
		if v < -2 || v >= 2 {
			t.Fatalf("x[%d] = %v outside [-2, 2)", i, v)
		}
	}
	if m := stat.Mean(x, nil); math.Abs(m) > 0.1 {
		t.Fatalf("mean = %v, want near 0", m)
	}
}

func TestSamples(t *testing.T) {
	raw := Pulse(72, 25, 10, DefaultChannels, 0, 0)
	got := Samples(72, 25, 10, DefaultChannels, 0, 0)

	if len(got) != len(raw) {
		t.Fatalf("len = %d, want %d", len(got), len(raw))
	}
	for i := range raw {
		if [3]float64(got[i]) != raw[i] {
			t.Fatalf("sample %d: %v, want %v", i, got[i], raw[i])
		}
	}

	if Samples(72, 25, 0, DefaultChannels, 0, 0) != nil {
		t.Fatal("zero length should yield nil")
	}
}
