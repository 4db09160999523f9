// Package stretch changes the tempo of PCM channels by resampling them at a
// fractional read rate.
//
// A factor below 1 lengthens the signal (slows it down), a factor above 1
// shortens it. Pitch moves with tempo; no phase-vocoder processing is done.
//
// Every channel is resampled independently: output length is
// floor(len/factor) and output sample i reads the input at position
// i*factor. Read positions are interpolated with [interp.Linear] by default
// or [interp.Hermite] via [WithInterpolation]. Neighbour indices are clamped
// to the channel, so the last output sample never reads past the input.
//
// Common workflows:
//   - Factor(targetBPM, originalBPM)
//   - Stretch(channels, factor, opts...)
//   - Channel(samples, factor, opts...)
package stretch
