package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
)

// Measurement summarizes the loudness of a complete buffer.
type Measurement struct {
	// Integrated is the gated programme loudness in LUFS.
	Integrated float64
	// MaxMomentary and MaxShortTerm are the loudest 400 ms and 3 s readings.
	MaxMomentary float64
	MaxShortTerm float64
	// Peak is the largest absolute sample over all channels.
	Peak float64
}

// Measure runs a meter over every frame of a.
func Measure(a *buffer.Audio) (Measurement, error) {
	if err := a.Validate(); err != nil {
		return Measurement{}, fmt.Errorf("loudness: %w", err)
	}
	if a.NumChannels() == 0 {
		return Measurement{}, fmt.Errorf("loudness: no channels: %w", core.ErrMalformedBuffer)
	}

	m := NewMeter(WithSampleRate(float64(a.SampleRate)), WithChannels(a.NumChannels()))

	res := Measurement{
		MaxMomentary: math.Inf(-1),
		MaxShortTerm: math.Inf(-1),
	}

	frame := make([]float64, a.NumChannels())
	for i := range a.Frames() {
		for ch := range frame {
			frame[ch] = float64(a.Channels[ch][i])
		}
		m.ProcessFrame(frame)

		if m.filled >= m.momWindow {
			res.MaxMomentary = max(res.MaxMomentary, m.Momentary())
		}
		if m.filled >= m.shortWindow {
			res.MaxShortTerm = max(res.MaxShortTerm, m.ShortTerm())
		}
	}

	res.Integrated = m.Integrated()
	for _, p := range m.Peaks() {
		res.Peak = max(res.Peak, p)
	}

	return res, nil
}
