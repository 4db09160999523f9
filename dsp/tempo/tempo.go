// Package tempo supplies the estimated original tempo of a buffer.
//
// Estimation is a replaceable policy behind [Estimator]. The only built-in
// policy is [Fixed], which reports a constant regardless of content; callers
// that need real beat tracking plug in their own Estimator.
package tempo

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
)

// DefaultBPM is the tempo reported by the default fixed policy.
const DefaultBPM = 120

// Estimator reports the tempo of a buffer in beats per minute.
// Implementations must return a finite value > 0 or an error.
type Estimator interface {
	Estimate(buf *buffer.Audio) (float64, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(buf *buffer.Audio) (float64, error)

// Estimate calls f(buf).
func (f EstimatorFunc) Estimate(buf *buffer.Audio) (float64, error) {
	return f(buf)
}

// Fixed reports its own value for every buffer.
type Fixed float64

// Default returns the fixed DefaultBPM policy.
func Default() Estimator {
	return Fixed(DefaultBPM)
}

// Estimate returns f, or ErrInvalidParameter when f is not a usable tempo.
func (f Fixed) Estimate(*buffer.Audio) (float64, error) {
	bpm := float64(f)
	if err := Check(bpm); err != nil {
		return 0, err
	}
	return bpm, nil
}

// Check reports ErrInvalidParameter unless bpm is finite and > 0.
func Check(bpm float64) error {
	if !(bpm > 0) || !core.IsFinite(bpm) {
		return fmt.Errorf("tempo: bpm %g: %w", bpm, core.ErrInvalidParameter)
	}
	return nil
}
