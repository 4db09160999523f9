// Package signal generates deterministic test material and offers peak
// normalization for finished buffers.
package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
)

// clickSeconds is the length of one metronome click.
const clickSeconds = 0.005

// Generator creates deterministic signals at a fixed sample rate.
type Generator struct {
	sampleRate int
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator for sampleRate.
func NewGenerator(sampleRate int, opts ...Option) (*Generator, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("signal: sample rate %d: %w", sampleRate, core.ErrInvalidParameter)
	}
	g := &Generator{sampleRate: sampleRate, seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// SampleRate returns the generator sample rate.
func (g *Generator) SampleRate() int {
	return g.sampleRate
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, frames int) ([]float32, error) {
	if frames < 0 {
		return nil, fmt.Errorf("signal: sine frames %d: %w", frames, core.ErrInvalidParameter)
	}
	out := make([]float32, frames)
	step := 2 * math.Pi * freqHz / float64(g.sampleRate)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, frames int) ([]float32, error) {
	if frames < 0 {
		return nil, fmt.Errorf("signal: noise frames %d: %w", frames, core.ErrInvalidParameter)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("signal: noise amplitude %g: %w", amplitude, core.ErrInvalidParameter)
	}
	out := make([]float32, frames)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out, nil
}

// ClickTrack generates a metronome: a short exponentially decaying click at
// the start of every beat.
func (g *Generator) ClickTrack(bpm, amplitude float64, frames int) ([]float32, error) {
	if !(bpm > 0) || !core.IsFinite(bpm) {
		return nil, fmt.Errorf("signal: click bpm %g: %w", bpm, core.ErrInvalidParameter)
	}
	if frames < 0 {
		return nil, fmt.Errorf("signal: click frames %d: %w", frames, core.ErrInvalidParameter)
	}

	out := make([]float32, frames)
	period := 60 * float64(g.sampleRate) / bpm
	clickLen := max(1, int(clickSeconds*float64(g.sampleRate)))

	for beat := 0; ; beat++ {
		start := int(math.Round(float64(beat) * period))
		if start >= frames {
			break
		}
		for k := 0; k < clickLen && start+k < frames; k++ {
			out[start+k] += float32(amplitude * math.Exp(-5*float64(k)/float64(clickLen)))
		}
	}
	return out, nil
}

// Audio bundles equally long channels into a buffer at the generator rate.
func (g *Generator) Audio(channels ...[]float32) (*buffer.Audio, error) {
	return buffer.FromChannels(channels, g.sampleRate)
}

// Mix adds every src into dst sample by sample. Sources longer than dst
// are truncated.
func Mix(dst []float32, src ...[]float32) {
	for _, s := range src {
		n := min(len(dst), len(s))
		for i := 0; i < n; i++ {
			dst[i] += s[i]
		}
	}
}

// Peak returns the largest absolute sample across all channels.
func Peak(channels [][]float32) float64 {
	var wide []float64
	peak := 0.0
	for _, ch := range channels {
		wide = core.Widen(wide, ch)
		peak = max(peak, vecmath.MaxAbs(wide))
	}
	return peak
}

// Normalize scales all channels by one common gain so the loudest sample
// reaches targetPeak, and returns new channels. Silent input is copied
// unchanged.
func Normalize(channels [][]float32, targetPeak float64) ([][]float32, error) {
	if !(targetPeak > 0) || !core.IsFinite(targetPeak) {
		return nil, fmt.Errorf("signal: normalize target peak %g: %w", targetPeak, core.ErrInvalidParameter)
	}

	peak := Peak(channels)

	out := make([][]float32, len(channels))
	var wide []float64
	for ch, in := range channels {
		if peak == 0 {
			out[ch] = append([]float32(nil), in...)
			continue
		}
		wide = core.Widen(wide, in)
		vecmath.ScaleBlockInPlace(wide, targetPeak/peak)
		out[ch] = core.Narrow(wide)
	}
	return out, nil
}
