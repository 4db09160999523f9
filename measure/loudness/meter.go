package loudness

import (
	"math"

	"github.com/cwbudde/slowverb/dsp/filter/biquad"
	"github.com/cwbudde/slowverb/dsp/filter/design"
)

const (
	// K-weighting filter parameters from BS.1770.
	kWeightingShelfFreq = 1500.0
	kWeightingShelfGain = 4.0
	kWeightingHpfFreq   = 38.0

	// Integration window durations in seconds.
	momentaryDuration = 0.4
	shortTermDuration = 3.0

	// Gating parameters.
	absThreshold    = -70.0
	relThreshold    = -10.0
	blockStepFactor = 0.25 // 75% block overlap

	// Floor reported for a zero mean square.
	silenceLUFS = -120.0
)

// Meter implements EBU R128 loudness metering over interleaved frames.
type Meter struct {
	sampleRate float64
	channels   int

	// K-weighting per channel
	shelf []*biquad.Section
	hpf   []*biquad.Section

	// Sliding windows of squared K-weighted samples
	momWindow   int
	shortWindow int
	momHistory  [][]float64
	shortHist   [][]float64
	momIdx      int
	shortIdx    int
	momSums     []float64
	shortSums   []float64
	filled      int
	sinceStep   int
	stepSamples int

	// Gating blocks: linear power summed over channels
	blocks []float64

	peaks []float64
}

// NewMeter creates a loudness meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	m := &Meter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}
	m.reconfigure()

	return m
}

// SampleRate returns the configured sample rate.
func (m *Meter) SampleRate() float64 { return m.sampleRate }

// Channels returns the configured channel count.
func (m *Meter) Channels() int { return m.channels }

func (m *Meter) reconfigure() {
	q := 1 / math.Sqrt2
	shelfCoeffs := design.HighShelf(kWeightingShelfFreq, kWeightingShelfGain, q, m.sampleRate)
	hpfCoeffs := design.Highpass(kWeightingHpfFreq, q, m.sampleRate)

	m.shelf = make([]*biquad.Section, m.channels)
	m.hpf = make([]*biquad.Section, m.channels)
	for i := range m.channels {
		m.shelf[i] = biquad.NewSection(shelfCoeffs)
		m.hpf[i] = biquad.NewSection(hpfCoeffs)
	}

	m.momWindow = max(int(math.Round(momentaryDuration*m.sampleRate)), 1)
	m.shortWindow = max(int(math.Round(shortTermDuration*m.sampleRate)), 1)
	m.stepSamples = max(int(math.Round(momentaryDuration*blockStepFactor*m.sampleRate)), 1)

	m.momHistory = make([][]float64, m.channels)
	m.shortHist = make([][]float64, m.channels)
	for i := range m.channels {
		m.momHistory[i] = make([]float64, m.momWindow)
		m.shortHist[i] = make([]float64, m.shortWindow)
	}

	m.momSums = make([]float64, m.channels)
	m.shortSums = make([]float64, m.channels)
	m.peaks = make([]float64, m.channels)

	m.Reset()
}

// Reset clears all integration state and peak values.
func (m *Meter) Reset() {
	for i := range m.channels {
		m.shelf[i].Reset()
		m.hpf[i].Reset()
		clear(m.momHistory[i])
		clear(m.shortHist[i])
		m.momSums[i] = 0
		m.shortSums[i] = 0
		m.peaks[i] = 0
	}

	m.momIdx = 0
	m.shortIdx = 0
	m.filled = 0
	m.sinceStep = 0
	m.blocks = m.blocks[:0]
}

// ProcessFrame consumes one sample per channel. Short frames are ignored.
func (m *Meter) ProcessFrame(frame []float64) {
	if len(frame) < m.channels {
		return
	}

	for i := range m.channels {
		x := frame[i]
		if a := math.Abs(x); a > m.peaks[i] {
			m.peaks[i] = a
		}

		v := m.hpf[i].ProcessSample(m.shelf[i].ProcessSample(x))
		sq := v * v

		m.momSums[i] += sq - m.momHistory[i][m.momIdx]
		m.momHistory[i][m.momIdx] = sq
		if m.momSums[i] < 0 {
			m.momSums[i] = 0
		}

		m.shortSums[i] += sq - m.shortHist[i][m.shortIdx]
		m.shortHist[i][m.shortIdx] = sq
		if m.shortSums[i] < 0 {
			m.shortSums[i] = 0
		}
	}

	m.momIdx = (m.momIdx + 1) % m.momWindow
	m.shortIdx = (m.shortIdx + 1) % m.shortWindow
	m.filled++

	// A gating block is only complete once a full 400 ms window was seen.
	m.sinceStep++
	if m.sinceStep >= m.stepSamples {
		m.sinceStep = 0
		if m.filled >= m.momWindow {
			m.blocks = append(m.blocks, m.meanSquare(m.momSums, m.momWindow))
		}
	}
}

// ProcessInterleaved consumes a block of interleaved frames.
func (m *Meter) ProcessInterleaved(block []float64) {
	for i := 0; i+m.channels <= len(block); i += m.channels {
		m.ProcessFrame(block[i : i+m.channels])
	}
}

// Momentary returns the current 400 ms loudness in LUFS.
func (m *Meter) Momentary() float64 {
	return toLUFS(m.meanSquare(m.momSums, m.momWindow))
}

// ShortTerm returns the current 3 s loudness in LUFS.
func (m *Meter) ShortTerm() float64 {
	return toLUFS(m.meanSquare(m.shortSums, m.shortWindow))
}

// Integrated returns the gated integrated loudness in LUFS since Reset.
// It is -Inf when no block passes the gates.
func (m *Meter) Integrated() float64 {
	var (
		absSum   float64
		absCount int
	)
	for _, b := range m.blocks {
		if toLUFS(b) > absThreshold {
			absSum += b
			absCount++
		}
	}
	if absCount == 0 {
		return math.Inf(-1)
	}

	gate := toLUFS(absSum/float64(absCount)) + relThreshold

	var (
		relSum   float64
		relCount int
	)
	for _, b := range m.blocks {
		if l := toLUFS(b); l > absThreshold && l > gate {
			relSum += b
			relCount++
		}
	}
	if relCount == 0 {
		return math.Inf(-1)
	}

	return toLUFS(relSum / float64(relCount))
}

// Peaks returns the maximum absolute sample per channel since Reset.
func (m *Meter) Peaks() []float64 {
	return append([]float64(nil), m.peaks...)
}

func (m *Meter) meanSquare(sums []float64, window int) float64 {
	total := 0.0
	for _, s := range sums {
		total += s / float64(window)
	}
	return total
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return silenceLUFS
	}

	return -0.691 + 10*math.Log10(meanSquare)
}
