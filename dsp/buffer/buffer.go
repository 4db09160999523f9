package buffer

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/core"
)

// Audio is a decoded multi-channel PCM buffer. Every channel holds the
// same number of samples.
type Audio struct {
	Channels   [][]float32
	SampleRate int
}

// New returns a zero-filled buffer with numChannels channels of length frames.
func New(numChannels, frames, sampleRate int) (*Audio, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("buffer: sample rate %d: %w", sampleRate, core.ErrInvalidParameter)
	}
	if numChannels < 0 || frames < 0 {
		return nil, fmt.Errorf("buffer: shape %dx%d: %w", numChannels, frames, core.ErrInvalidParameter)
	}

	channels := make([][]float32, numChannels)
	for i := range channels {
		channels[i] = make([]float32, frames)
	}

	return &Audio{Channels: channels, SampleRate: sampleRate}, nil
}

// FromChannels wraps existing channel slices without copying after
// checking that they form a valid buffer.
func FromChannels(channels [][]float32, sampleRate int) (*Audio, error) {
	a := &Audio{Channels: channels, SampleRate: sampleRate}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the sample rate and that all channels share one length.
func (a *Audio) Validate() error {
	if a == nil {
		return fmt.Errorf("buffer: nil audio: %w", core.ErrMalformedBuffer)
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("buffer: sample rate %d: %w", a.SampleRate, core.ErrInvalidParameter)
	}
	return CheckUniform(a.Channels)
}

// CheckUniform reports ErrMalformedBuffer if channels differ in length.
func CheckUniform(channels [][]float32) error {
	for i := 1; i < len(channels); i++ {
		if len(channels[i]) != len(channels[0]) {
			return fmt.Errorf("buffer: channel %d has %d samples, channel 0 has %d: %w",
				i, len(channels[i]), len(channels[0]), core.ErrMalformedBuffer)
		}
	}
	return nil
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int {
	return len(a.Channels)
}

// Frames returns the per-channel sample count.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// Empty reports whether the buffer carries no samples.
func (a *Audio) Empty() bool {
	return a.Frames() == 0
}

// Copy returns a deep copy of the buffer.
func (a *Audio) Copy() *Audio {
	channels := make([][]float32, len(a.Channels))
	for i, ch := range a.Channels {
		channels[i] = make([]float32, len(ch))
		copy(channels[i], ch)
	}
	return &Audio{Channels: channels, SampleRate: a.SampleRate}
}

// WithChannels returns a new buffer carrying channels at the same sample rate.
func (a *Audio) WithChannels(channels [][]float32) *Audio {
	return &Audio{Channels: channels, SampleRate: a.SampleRate}
}
