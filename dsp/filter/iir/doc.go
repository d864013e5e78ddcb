// Package iir provides transfer-function (b/a) IIR filters.
//
// Coefficients are stored in direct form: B holds the feed-forward taps
// and A the feedback taps, with A[0] the output normalisation term.
// Filter runs the causal difference equation once, and FiltFilt runs it
// forward and backward to cancel the phase delay of a single pass.
package iir
