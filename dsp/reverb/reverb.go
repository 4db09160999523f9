package reverb

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/conv"
	"github.com/cwbudde/slowverb/dsp/core"
)

const (
	// DefaultDecay is the exponential decay rate per second of echo delay.
	DefaultDecay = 0.5
	// TailSeconds is the length of the echo window.
	TailSeconds = 2
	// MaxSampleRate is the largest rate whose tail length fits in an int.
	MaxSampleRate = math.MaxInt / TailSeconds
)

// Mode selects how the echo sum is evaluated.
type Mode int

const (
	// ModeExactSum evaluates the finite sum directly.
	ModeExactSum Mode = iota
	// ModeRecurrence evaluates the sum with a single-pole recurrence.
	ModeRecurrence
	// ModeFFT evaluates the sum as an FFT convolution with the decay kernel.
	ModeFFT
)

// String returns the mode name accepted by ParseMode.
func (m Mode) String() string {
	switch m {
	case ModeExactSum:
		return "exact"
	case ModeRecurrence:
		return "recurrence"
	case ModeFFT:
		return "fft"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to a Mode. The empty string selects ModeExactSum.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return ModeExactSum, nil
	case "recurrence":
		return ModeRecurrence, nil
	case "fft":
		return ModeFFT, nil
	default:
		return 0, fmt.Errorf("reverb: unknown mode %q: %w", s, core.ErrInvalidParameter)
	}
}

// Params holds the per-call reverb settings.
type Params struct {
	// Amount is the echo gain in [0, 1].
	Amount float64
	// SampleRate is in samples per second.
	SampleRate int
}

// Validate reports ErrInvalidParameter for an amount outside [0,1] or a
// sample rate outside [1, MaxSampleRate].
func (p Params) Validate() error {
	if !(p.Amount >= 0 && p.Amount <= 1) {
		return fmt.Errorf("reverb: amount %g outside [0,1]: %w", p.Amount, core.ErrInvalidParameter)
	}
	if p.SampleRate <= 0 || p.SampleRate > MaxSampleRate {
		return fmt.Errorf("reverb: sample rate %d: %w", p.SampleRate, core.ErrInvalidParameter)
	}
	return nil
}

// TailLength returns the echo window length in samples.
func (p Params) TailLength() int {
	return TailLength(p.SampleRate)
}

// TailLength returns floor(sampleRate * TailSeconds), or 0 for a rate
// outside [1, MaxSampleRate].
func TailLength(sampleRate int) int {
	if sampleRate <= 0 || sampleRate > MaxSampleRate {
		return 0
	}
	return sampleRate * TailSeconds
}

// Kernel returns the echo weights exp(-decay*j/sampleRate) for
// j = 1..TailLength(sampleRate); element 0 holds the weight for j = 1.
func Kernel(sampleRate int) []float64 {
	return kernel(sampleRate, TailLength(sampleRate))
}

// kernel returns the first n weights of Kernel(sampleRate).
func kernel(sampleRate, n int) []float64 {
	k := make([]float64, n)
	for j := 1; j <= n; j++ {
		k[j-1] = math.Exp(-DefaultDecay * float64(j) / float64(sampleRate))
	}
	return k
}

// usedLags caps the tail at the longest lag a channel of n samples reads.
func usedLags(tail, n int) int {
	return max(0, min(tail, n-1))
}

type config struct {
	proc core.ProcessorConfig
	mode Mode
}

// Option configures Apply.
type Option func(*config)

// WithMode selects the evaluation mode. Unknown modes are ignored.
func WithMode(m Mode) Option {
	return func(cfg *config) {
		if m >= ModeExactSum && m <= ModeFFT {
			cfg.mode = m
		}
	}
}

// WithWorkers bounds how many channels are processed concurrently.
// 0 runs one goroutine per channel.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		core.WithWorkers(n)(&cfg.proc)
	}
}

var scratch = buffer.NewPool()

// Apply adds the echo tail to every channel and returns new channels.
// The input is not modified. Channels must share one length.
func Apply(channels [][]float32, amount float64, sampleRate int, opts ...Option) ([][]float32, error) {
	p := Params{Amount: amount, SampleRate: sampleRate}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := buffer.CheckUniform(channels); err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	cfg := config{proc: core.DefaultProcessorConfig(), mode: ModeExactSum}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([][]float32, len(channels))

	if amount == 0 {
		for ch, in := range channels {
			out[ch] = make([]float32, len(in))
			copy(out[ch], in)
		}
		return out, nil
	}

	frames := 0
	if len(channels) > 0 {
		frames = len(channels[0])
	}

	var rk []float64
	if cfg.mode == ModeExactSum {
		rk = reversedKernel(sampleRate, usedLags(p.TailLength(), frames))
	}

	err := core.ForEachChannel(cfg.proc, len(channels), func(ch int) error {
		var err error
		switch cfg.mode {
		case ModeRecurrence:
			out[ch] = recurrence(channels[ch], p)
		case ModeFFT:
			out[ch], err = fftSum(channels[ch], p)
		default:
			out[ch] = exactSum(channels[ch], p, rk)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// reversedKernel stores the weight for j at index n-j, so the history
// window in[i-m:i] lines up with the kernel suffix of length m.
func reversedKernel(sampleRate, n int) []float64 {
	k := kernel(sampleRate, n)
	for i, j := 0, len(k)-1; i < j; i, j = i+1, j-1 {
		k[i], k[j] = k[j], k[i]
	}
	return k
}

func exactSum(in []float32, p Params, rk []float64) []float32 {
	x := scratch.Get(len(in))
	defer scratch.Put(x)
	x = core.Widen(x, in)

	tail := len(rk)
	out := make([]float32, len(in))

	for i := range x {
		m := min(tail, i)
		acc := 0.0
		if m > 0 {
			acc = vecmath.DotProduct(x[i-m:i], rk[tail-m:])
		}
		out[i] = float32(x[i] + acc*p.Amount)
	}

	return out
}

// recurrence tracks w[i] = Σ_{j=1}^{min(tail,i)} in[i-j]*r^j as
// w[i] = r*(w[i-1] + in[i-1]) - r^(tail+1)*in[i-1-tail].
func recurrence(in []float32, p Params) []float32 {
	tail := p.TailLength()
	sr := float64(p.SampleRate)
	r := math.Exp(-DefaultDecay / sr)
	rEnd := math.Exp(-DefaultDecay * float64(tail+1) / sr)

	out := make([]float32, len(in))
	w := 0.0

	for i := range in {
		if i > 0 {
			w = r * (w + float64(in[i-1]))
			if k := i - 1 - tail; k >= 0 {
				w -= rEnd * float64(in[k])
			}
		}
		out[i] = float32(float64(in[i]) + w*p.Amount)
	}

	return out
}

func fftSum(in []float32, p Params) ([]float32, error) {
	if len(in) == 0 {
		return []float32{}, nil
	}

	// Index 0 carries the undelayed path, which is added separately.
	h := append([]float64{0}, kernel(p.SampleRate, usedLags(p.TailLength(), len(in)))...)

	oa, err := conv.NewOverlapAdd(h, 0)
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	x := scratch.Get(len(in))
	defer scratch.Put(x)
	x = core.Widen(x, in)

	wet, err := oa.ProcessCausal(x)
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	out := make([]float32, len(in))
	for i := range out {
		out[i] = float32(x[i] + wet[i]*p.Amount)
	}

	return out, nil
}
