package stretch

import (
	"fmt"
	"math"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/interp"
)

// Interpolation aliases re-exported for callers that only import stretch.
const (
	Linear  = interp.Linear
	Hermite = interp.Hermite
)

type config struct {
	proc core.ProcessorConfig
	mode interp.Mode
}

// Option configures the stretcher.
type Option func(*config)

// WithInterpolation selects the read-position interpolation method.
func WithInterpolation(m interp.Mode) Option {
	return func(cfg *config) {
		if m == interp.Linear || m == interp.Hermite {
			cfg.mode = m
		}
	}
}

// WithWorkers bounds how many channels are stretched concurrently.
// 0 runs one goroutine per channel.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		core.WithWorkers(n)(&cfg.proc)
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		proc: core.DefaultProcessorConfig(),
		mode: interp.Linear,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Factor returns the stretch factor target/original.
func Factor(targetBPM, originalBPM float64) (float64, error) {
	if !(targetBPM > 0) || !core.IsFinite(targetBPM) {
		return 0, fmt.Errorf("stretch: target bpm %g: %w", targetBPM, core.ErrInvalidParameter)
	}
	if !(originalBPM > 0) || !core.IsFinite(originalBPM) {
		return 0, fmt.Errorf("stretch: original bpm %g: %w", originalBPM, core.ErrInvalidParameter)
	}

	f := targetBPM / originalBPM
	if err := checkFactor(f); err != nil {
		return 0, err
	}
	return f, nil
}

// OutputLen returns the stretched length of a channel with n samples.
func OutputLen(n int, factor float64) int {
	if n <= 0 || !(factor > 0) {
		return 0
	}
	return int(math.Floor(float64(n) / factor))
}

// Stretch resamples every channel by factor and returns new channels.
// The input is not modified. Channels must share one length.
func Stretch(channels [][]float32, factor float64, opts ...Option) ([][]float32, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	if err := buffer.CheckUniform(channels); err != nil {
		return nil, fmt.Errorf("stretch: %w", err)
	}
	if len(channels) > 0 {
		if err := checkOutputLen(len(channels[0]), factor); err != nil {
			return nil, err
		}
	}

	cfg := newConfig(opts)
	out := make([][]float32, len(channels))

	err := core.ForEachChannel(cfg.proc, len(channels), func(ch int) error {
		out[ch] = stretchChannel(channels[ch], factor, cfg.mode)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Channel resamples a single channel by factor.
func Channel(samples []float32, factor float64, opts ...Option) ([]float32, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	if err := checkOutputLen(len(samples), factor); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	return stretchChannel(samples, factor, cfg.mode), nil
}

func stretchChannel(in []float32, factor float64, mode interp.Mode) []float32 {
	n := OutputLen(len(in), factor)
	out := make([]float32, n)
	if factor == 1 {
		copy(out, in)
		return out
	}

	for i := range out {
		out[i] = float32(interp.At(mode, in, float64(i)*factor))
	}

	return out
}

// maxOutputLen caps the per-channel output so tiny factors cannot request
// an unbounded allocation.
const maxOutputLen = 1 << 34

func checkOutputLen(n int, factor float64) error {
	if float64(n)/factor > maxOutputLen {
		return fmt.Errorf("stretch: factor %g expands %d samples beyond %d: %w",
			factor, n, maxOutputLen, core.ErrInvalidParameter)
	}
	return nil
}

func checkFactor(f float64) error {
	if !(f > 0) || math.IsInf(f, 0) {
		return fmt.Errorf("stretch: factor %g: %w", f, core.ErrInvalidParameter)
	}
	return nil
}
