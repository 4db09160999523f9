package reverb

import (
	"testing"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/internal/testutil"
)

func benchmarkApply(b *testing.B, mode Mode) {
	const sampleRate = 8000
	in := [][]float32{core.Narrow(testutil.DeterministicNoise(1, 1, sampleRate))}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := Apply(in, 0.5, sampleRate, WithMode(mode)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApplyExactSum(b *testing.B)   { benchmarkApply(b, ModeExactSum) }
func BenchmarkApplyRecurrence(b *testing.B) { benchmarkApply(b, ModeRecurrence) }
func BenchmarkApplyFFT(b *testing.B)        { benchmarkApply(b, ModeFFT) }
