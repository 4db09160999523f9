package reverb

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/internal/testutil"
)

// naive evaluates the echo sum literally, one term at a time.
func naive(in []float32, amount float64, sampleRate int) []float64 {
	tail := TailLength(sampleRate)
	out := make([]float64, len(in))
	for i := range in {
		out[i] = float64(in[i])
		for j := 1; j <= tail && i-j >= 0; j++ {
			out[i] += float64(in[i-j]) * math.Exp(-DefaultDecay*float64(j)/float64(sampleRate)) * amount
		}
	}
	return out
}

func widen(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

var allModes = []Mode{ModeExactSum, ModeRecurrence, ModeFFT}

func TestApplyImpulseAtUnitRate(t *testing.T) {
	want := []float64{1, math.Exp(-0.5), math.Exp(-1), 0}

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := Apply([][]float32{core.Narrow(testutil.Impulse(4, 0))}, 1, 1, WithMode(mode))
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, widen(out[0]), want, 1e-6)
		})
	}
}

func TestApplyTailIsInclusive(t *testing.T) {
	// sampleRate 2 gives a 4-sample tail: the impulse is still heard at
	// j = 4 and gone at j = 5.
	out, err := Apply([][]float32{core.Narrow(testutil.Impulse(6, 0))}, 1, 2)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got, want := float64(out[0][4]), math.Exp(-0.5*4/2); math.Abs(got-want) > 1e-6 {
		t.Fatalf("out[4] = %v, want %v", got, want)
	}
	if out[0][5] != 0 {
		t.Fatalf("out[5] = %v, want 0", out[0][5])
	}
}

func TestApplyMatchesNaiveSum(t *testing.T) {
	const sampleRate = 50
	in := core.Narrow(testutil.DeterministicNoise(9, 0.5, 400))

	want := naive(in, 0.35, sampleRate)

	tolerances := map[Mode]float64{
		ModeExactSum:   1e-5,
		ModeRecurrence: 1e-4,
		ModeFFT:        1e-4,
	}

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := Apply([][]float32{in}, 0.35, sampleRate, WithMode(mode))
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, widen(out[0]), want, tolerances[mode])
		})
	}
}

func TestApplyZeroAmountIsIdentity(t *testing.T) {
	in := [][]float32{
		core.Narrow(testutil.DeterministicNoise(1, 1, 300)),
		core.Narrow(testutil.DeterministicSine(440, 8000, 0.9, 300)),
	}

	for _, mode := range allModes {
		out, err := Apply(in, 0, 8000, WithMode(mode))
		if err != nil {
			t.Fatalf("%v: Apply() error = %v", mode, err)
		}
		for ch := range in {
			testutil.RequireChannelNearlyEqual(t, out[ch], in[ch], 0)
		}
		out[0][0] = 42
		if in[0][0] == 42 {
			t.Fatalf("%v: identity output aliases input", mode)
		}
	}
}

func TestApplyIsCausal(t *testing.T) {
	const n = 200
	base := core.Narrow(testutil.DeterministicNoise(5, 1, n))

	for _, mode := range allModes {
		ref, err := Apply([][]float32{base}, 0.8, 40, WithMode(mode))
		if err != nil {
			t.Fatalf("%v: Apply() error = %v", mode, err)
		}

		// Changing sample k must leave every output before k untouched.
		const k = 120
		mod := append([]float32(nil), base...)
		mod[k] += 1

		got, err := Apply([][]float32{mod}, 0.8, 40, WithMode(mode))
		if err != nil {
			t.Fatalf("%v: Apply() error = %v", mode, err)
		}

		eps := 0.0
		if mode == ModeFFT {
			eps = 1e-5
		}
		testutil.RequireChannelNearlyEqual(t, got[0][:k], ref[0][:k], eps)
		if got[0][k] == ref[0][k] {
			t.Fatalf("%v: output at k did not react to input change", mode)
		}
	}
}

func TestApplyPreservesShapeAndInput(t *testing.T) {
	in := [][]float32{{0.5, 0, 0}, {0, 0.5, 0}}
	orig := [][]float32{{0.5, 0, 0}, {0, 0.5, 0}}

	out, err := Apply(in, 0.5, 10, WithWorkers(0))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(out) != 2 || len(out[0]) != 3 || len(out[1]) != 3 {
		t.Fatalf("unexpected shape %v", out)
	}
	for ch := range in {
		testutil.RequireChannelNearlyEqual(t, in[ch], orig[ch], 0)
	}
	// Channels stay independent.
	if out[1][0] != 0 {
		t.Fatalf("channel 1 leaked energy from channel 0: %v", out[1])
	}
}

func TestApplyParallelMatchesSequential(t *testing.T) {
	in := make([][]float32, 3)
	for ch := range in {
		in[ch] = core.Narrow(testutil.DeterministicNoise(int64(ch+10), 1, 256))
	}

	seq, err := Apply(in, 0.5, 30, WithWorkers(1))
	if err != nil {
		t.Fatalf("sequential error = %v", err)
	}
	par, err := Apply(in, 0.5, 30, WithWorkers(2))
	if err != nil {
		t.Fatalf("parallel error = %v", err)
	}
	for ch := range seq {
		testutil.RequireChannelNearlyEqual(t, par[ch], seq[ch], 0)
	}
}

func TestApplyEmpty(t *testing.T) {
	for _, mode := range allModes {
		out, err := Apply([][]float32{{}}, 0.5, 44100, WithMode(mode))
		if err != nil {
			t.Fatalf("%v: Apply() error = %v", mode, err)
		}
		if len(out) != 1 || len(out[0]) != 0 {
			t.Fatalf("%v: unexpected output %v", mode, out)
		}
	}
}

func TestApplyInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		rate   int
	}{
		{name: "negative amount", amount: -0.1, rate: 100},
		{name: "amount above one", amount: 1.5, rate: 100},
		{name: "nan amount", amount: math.NaN(), rate: 100},
		{name: "zero rate", amount: 0.5, rate: 0},
		{name: "negative rate", amount: 0.5, rate: -44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply([][]float32{{1}}, tt.amount, tt.rate)
			if !errors.Is(err, core.ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestApplyMismatchedChannels(t *testing.T) {
	_, err := Apply([][]float32{{1, 2}, {1}}, 0.5, 10)
	if !errors.Is(err, core.ErrMalformedBuffer) {
		t.Fatalf("err = %v, want ErrMalformedBuffer", err)
	}
}

func TestApplyRejectsOverflowingSampleRate(t *testing.T) {
	for _, rate := range []int{1 << 62, MaxSampleRate + 1} {
		if TailLength(rate) != 0 {
			t.Fatalf("TailLength(%d) = %d, want 0", rate, TailLength(rate))
		}
		for _, mode := range allModes {
			_, err := Apply([][]float32{{1, 0, 0}}, 0.5, rate, WithMode(mode))
			if !errors.Is(err, core.ErrInvalidParameter) {
				t.Fatalf("%s at %d Hz: err = %v, want ErrInvalidParameter", mode, rate, err)
			}
		}
	}
}

func TestApplyShortInputAtHighRate(t *testing.T) {
	// A 2e9-sample tail must not be materialized for a 4-sample input.
	const rate = 1_000_000_000
	in := core.Narrow(testutil.Impulse(4, 0))
	want := naive(in, 1, rate)

	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := Apply([][]float32{in}, 1, rate, WithMode(mode))
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, widen(out[0]), want, 1e-6)
		})
	}
}

func TestUsedLags(t *testing.T) {
	tests := []struct {
		tail, n, want int
	}{
		{tail: 8, n: 0, want: 0},
		{tail: 8, n: 1, want: 0},
		{tail: 8, n: 4, want: 3},
		{tail: 8, n: 9, want: 8},
		{tail: 8, n: 100, want: 8},
	}
	for _, tt := range tests {
		if got := usedLags(tt.tail, tt.n); got != tt.want {
			t.Errorf("usedLags(%d, %d) = %d, want %d", tt.tail, tt.n, got, tt.want)
		}
	}
}

func TestKernel(t *testing.T) {
	k := Kernel(4)
	if len(k) != 8 {
		t.Fatalf("len = %d, want 8", len(k))
	}
	if !core.NearlyEqual(k[0], math.Exp(-0.125), 1e-15) {
		t.Fatalf("k[0] = %v", k[0])
	}
	for i := 1; i < len(k); i++ {
		if k[i] >= k[i-1] {
			t.Fatalf("kernel not decaying at %d", i)
		}
	}
	if TailLength(0) != 0 || TailLength(44100) != 88200 {
		t.Fatal("unexpected tail length")
	}
	if (Params{Amount: 0.5, SampleRate: 48000}).TailLength() != 96000 {
		t.Fatal("unexpected params tail length")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range allModes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if got, err := ParseMode(""); err != nil || got != ModeExactSum {
		t.Fatalf("ParseMode(\"\") = %v, %v", got, err)
	}
	if _, err := ParseMode("plate"); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if Mode(7).String() != "Mode(7)" {
		t.Fatalf("String() = %q", Mode(7).String())
	}
}
