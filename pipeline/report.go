package pipeline

import (
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/measure/loudness"
)

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// ChannelLevel holds output level statistics of one channel.
type ChannelLevel struct {
	Peak float64
	RMS  float64
}

// Report summarizes a finished run.
type Report struct {
	SampleRate   int
	Channels     int
	InputFrames  int
	OutputFrames int

	OriginalBPM float64
	TargetBPM   float64
	Factor      float64

	ReverbMode    string
	Interpolation string
	Normalized    bool

	Stages []StageTiming
	Levels []ChannelLevel

	// Loudness readings, nil unless measure_loudness is set.
	InputLoudness  *loudness.Measurement
	OutputLoudness *loudness.Measurement
}

// Total returns the summed stage durations.
func (r *Report) Total() time.Duration {
	var d time.Duration
	for _, s := range r.Stages {
		d += s.Duration
	}
	return d
}

func (r *Report) addStage(stage Stage, d time.Duration) {
	r.Stages = append(r.Stages, StageTiming{Stage: stage, Duration: d})
}

func measureLevels(a *buffer.Audio) []ChannelLevel {
	levels := make([]ChannelLevel, len(a.Channels))
	var wide []float64
	for ch, samples := range a.Channels {
		if len(samples) == 0 {
			continue
		}
		wide = core.Widen(wide, samples)
		levels[ch] = ChannelLevel{
			Peak: vecmath.MaxAbs(wide),
			RMS:  math.Sqrt(vecmath.DotProduct(wide, wide) / float64(len(wide))),
		}
	}
	return levels
}
