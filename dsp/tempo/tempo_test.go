package tempo

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
)

func TestDefaultIsFixed120(t *testing.T) {
	a, _ := buffer.New(2, 1000, 44100)
	b, _ := buffer.New(1, 5, 8000)

	est := Default()
	for _, buf := range []*buffer.Audio{a, b, nil} {
		bpm, err := est.Estimate(buf)
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
		if bpm != 120 {
			t.Fatalf("Estimate() = %v, want 120", bpm)
		}
	}
}

func TestFixedRejectsInvalid(t *testing.T) {
	for _, v := range []float64{0, -90, math.NaN(), math.Inf(1)} {
		if _, err := Fixed(v).Estimate(nil); !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("Fixed(%v): err = %v, want ErrInvalidParameter", v, err)
		}
	}
}

func TestEstimatorFunc(t *testing.T) {
	var est Estimator = EstimatorFunc(func(buf *buffer.Audio) (float64, error) {
		return float64(buf.SampleRate) / 1000, nil
	})

	a, _ := buffer.New(1, 1, 96000)
	bpm, err := est.Estimate(a)
	if err != nil || bpm != 96 {
		t.Fatalf("Estimate() = %v, %v; want 96", bpm, err)
	}
}
