// Package reverb adds a synthetic exponentially decaying echo tail to PCM
// channels.
//
// For every channel and sample index i:
//
//	out[i] = in[i] + amount * Σ_{j=1}^{min(tail,i)} in[i-j] * exp(-decay*j/sampleRate)
//
// with decay = [DefaultDecay] and tail = floor(sampleRate * [TailSeconds]).
// The sum only looks backwards and stops at index 0, so output sample i
// depends on input samples 0..i alone.
//
// Three evaluation modes are available and must be chosen explicitly with
// [WithMode]; none is substituted for another:
//
//	mode            cost                 numeric contract
//	ModeExactSum    O(len * tail)        the finite sum above (default)
//	ModeRecurrence  O(len)               same sum via a single-pole recurrence
//	                                     with tail cancellation; rounding drift
//	ModeFFT         O(len * log tail)    same sum via FFT overlap-add; FFT rounding
//
// All modes accumulate in float64 and store float32 output.
package reverb
