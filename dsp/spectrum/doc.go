// Package spectrum computes power spectra of real signals.
//
// An Analyzer owns a fixed-size transform and writes one-sided power
// spectra |X[k]|^2/N for k in [0, N/2]. Power-of-two sizes run on the
// algo-fft complex plan; other sizes use gonum's real FFT. The squared
// magnitude step runs through algo-vecmath.
package spectrum
