// Package heartrate estimates pulse rate from a stream of per-frame skin
// colour samples.
//
// A Meter owns the window history, smoothing and display pacing state of
// one stream. Each call to Process ingests one sample and reports one
// Estimate: still calibrating, not ready this frame, a rate in BPM, or a
// no-signal or no-face condition. A Meter is not safe for concurrent
// use; run one Meter per stream.
package heartrate
