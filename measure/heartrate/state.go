package heartrate

import "fmt"

// State classifies an Estimate.
type State int

const (
	// StateCalibrating means fewer than CalibrationWindows windows exist.
	StateCalibrating State = iota
	// StateNotReady means calibration is over but the newest window is
	// still filling.
	StateNotReady
	// StateReady carries a rate.
	StateReady
	// StateNoSignal means the pipeline ran but could not produce a finite
	// rate this frame.
	StateNoSignal
	// StateNoFace means the upstream sampler has reported no face for at
	// least the face-loss timeout.
	StateNoFace
)

var stateNames = [...]string{"calibrating", "not-ready", "ready", "no-signal", "no-face"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Estimate is the result of one Process call.
type Estimate struct {
	State State
	// BPM is the reported rate after smoothing. Zero unless State is
	// StateReady.
	BPM float64
	// Raw is the unsmoothed spectral estimate.
	Raw float64
	// Resolution is the BPM width of one spectral bin for this estimate.
	Resolution float64
}

// Value maps the estimate onto a single number: -1 while calibrating,
// the rate when ready and 0 otherwise.
func (e Estimate) Value() float64 {
	switch e.State {
	case StateCalibrating:
		return -1
	case StateReady:
		return e.BPM
	default:
		return 0
	}
}
