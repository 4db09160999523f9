package loudness

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/internal/testutil"
)

// A full-scale 1 kHz sine has mean square 0.5; the K-weighting shelf adds
// about 0.67 dB at 1 kHz, giving -0.691 + 10*log10(0.5834) = -3.03 LUFS.
const sine1kLUFS = -3.034

func TestMeterSine(t *testing.T) {
	const fs = 48000.0
	m := NewMeter(WithSampleRate(fs), WithChannels(1))

	for _, s := range testutil.DeterministicSine(1000, fs, 1, int(fs*4)) {
		m.ProcessFrame([]float64{s})
	}

	readings := map[string]float64{
		"momentary":  m.Momentary(),
		"short-term": m.ShortTerm(),
		"integrated": m.Integrated(),
	}
	for name, got := range readings {
		if math.Abs(got-sine1kLUFS) > 0.1 {
			t.Errorf("%s = %.3f LUFS, want %.3f", name, got, sine1kLUFS)
		}
	}

	if p := m.Peaks()[0]; math.Abs(p-1) > 1e-6 {
		t.Errorf("peak = %v, want 1", p)
	}
}

func TestMeterStereoSumsPower(t *testing.T) {
	const fs = 48000.0
	m := NewMeter(WithSampleRate(fs), WithChannels(2))

	sig := testutil.DeterministicSine(1000, fs, 1, int(fs*4))
	block := make([]float64, 0, 2*len(sig))
	for _, s := range sig {
		block = append(block, s, s)
	}
	m.ProcessInterleaved(block)

	want := sine1kLUFS + 10*math.Log10(2)
	if got := m.Integrated(); math.Abs(got-want) > 0.1 {
		t.Errorf("integrated = %.3f LUFS, want %.3f", got, want)
	}
}

func TestMeterSilence(t *testing.T) {
	m := NewMeter(WithChannels(1))
	m.ProcessInterleaved(make([]float64, 48000))

	if got := m.Momentary(); got != silenceLUFS {
		t.Errorf("momentary = %v, want %v", got, silenceLUFS)
	}
	if got := m.Integrated(); !math.IsInf(got, -1) {
		t.Errorf("integrated = %v, want -Inf", got)
	}
}

func TestMeterGating(t *testing.T) {
	const fs = 48000.0
	m := NewMeter(WithSampleRate(fs), WithChannels(1))

	for _, s := range testutil.DeterministicSine(1000, fs, 1, int(fs*10)) {
		m.ProcessFrame([]float64{s})
	}
	loud := m.Integrated()

	// -80 dBFS is below the absolute gate.
	for _, s := range testutil.DeterministicSine(1000, fs, 0.0001, int(fs*10)) {
		m.ProcessFrame([]float64{s})
	}

	if total := m.Integrated(); math.Abs(loud-total) > 0.1 {
		t.Errorf("gating failed: loud part %.3f, total %.3f", loud, total)
	}
}

func TestMeterReset(t *testing.T) {
	m := NewMeter(WithSampleRate(8000), WithChannels(1))
	for _, s := range testutil.DeterministicSine(440, 8000, 1, 8000) {
		m.ProcessFrame([]float64{s})
	}
	m.Reset()

	if m.Momentary() != silenceLUFS || m.Peaks()[0] != 0 || !math.IsInf(m.Integrated(), -1) {
		t.Fatal("Reset did not clear meter state")
	}
}

func TestMeterIgnoresShortFrames(t *testing.T) {
	m := NewMeter(WithChannels(2))
	m.ProcessFrame([]float64{1})

	if m.Peaks()[0] != 0 {
		t.Fatal("short frame was processed")
	}
}

func TestMeterOptions(t *testing.T) {
	m := NewMeter(WithSampleRate(-1), WithChannels(0), nil)
	if m.SampleRate() != 48000 || m.Channels() != 2 {
		t.Fatalf("invalid options changed config: %v Hz, %d ch", m.SampleRate(), m.Channels())
	}
}

func TestMeasure(t *testing.T) {
	const fs = 48000
	sine := core.Narrow(testutil.DeterministicSine(1000, fs, 0.5, 4*fs))
	a, err := buffer.FromChannels([][]float32{sine}, fs)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Measure(a)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	want := sine1kLUFS + 20*math.Log10(0.5)
	if math.Abs(got.Integrated-want) > 0.1 {
		t.Errorf("Integrated = %.3f, want %.3f", got.Integrated, want)
	}
	if math.Abs(got.MaxMomentary-want) > 0.1 || math.Abs(got.MaxShortTerm-want) > 0.1 {
		t.Errorf("max momentary/short-term = %.3f/%.3f, want %.3f", got.MaxMomentary, got.MaxShortTerm, want)
	}
	if math.Abs(got.Peak-0.5) > 1e-6 {
		t.Errorf("Peak = %v, want 0.5", got.Peak)
	}
}

func TestMeasureShortBuffer(t *testing.T) {
	a, err := buffer.New(2, 100, 48000)
	if err != nil {
		t.Fatal(err)
	}
	a.Channels[1][10] = 0.25

	got, err := Measure(a)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if !math.IsInf(got.Integrated, -1) || !math.IsInf(got.MaxMomentary, -1) || !math.IsInf(got.MaxShortTerm, -1) {
		t.Errorf("expected -Inf readings for a sub-window buffer, got %+v", got)
	}
	if got.Peak != 0.25 {
		t.Errorf("Peak = %v, want 0.25", got.Peak)
	}
}

func TestMeasureErrors(t *testing.T) {
	if _, err := Measure(nil); !errors.Is(err, core.ErrMalformedBuffer) {
		t.Errorf("nil buffer: err = %v", err)
	}
	if _, err := Measure(&buffer.Audio{SampleRate: 48000}); !errors.Is(err, core.ErrMalformedBuffer) {
		t.Errorf("no channels: err = %v", err)
	}
	if _, err := Measure(&buffer.Audio{Channels: [][]float32{{0}}}); !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("zero rate: err = %v", err)
	}
}
