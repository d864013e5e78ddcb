package iir

import (
	"testing"

	"github.com/cwbudde/algo-rppg/internal/testutil"
)

func BenchmarkFiltFilt(b *testing.B) {
	c, err := ButterworthBandpass(6, 0.65, 3, 30)
	if err != nil {
		b.Fatal(err)
	}

	x := testutil.DeterministicNoise(1, 1, 240)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		_, _ = c.FiltFilt(x)
	}
}
