package welch_test

import (
	"fmt"

	"github.com/cwbudde/algo-rppg/internal/testutil"
	"github.com/cwbudde/algo-rppg/rppg/welch"
)

func ExampleEstimate() {
	// Eight seconds of a 1.25 Hz pulse at 30 fps.
	x := testutil.DeterministicSine(1.25, 30, 1, 240)

	res, err := welch.Estimate(x, 30)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%.1f BPM (resolution %.1f)\n", res.BPM, res.Resolution)
	// Output:
	// 75.0 BPM (resolution 7.5)
}
