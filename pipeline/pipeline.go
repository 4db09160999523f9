// Package pipeline sequences the slowed + reverb transform around a decoded
// buffer: tempo estimation, stretch factor, time stretch, reverb, an
// optional peak normalization and optional EBU R128 loudness metering.
//
// The numeric stages are pure; the pipeline adds validation, logging,
// progress callbacks and timing. Decoding and encoding are delegated to
// caller-supplied [Decoder] and [Encoder] implementations.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/reverb"
	"github.com/cwbudde/slowverb/dsp/signal"
	"github.com/cwbudde/slowverb/dsp/stretch"
	"github.com/cwbudde/slowverb/dsp/tempo"
	"github.com/cwbudde/slowverb/measure/loudness"
)

// Pipeline runs one configuration against any number of buffers.
// It holds no per-run state and is safe for concurrent use if its
// estimator and progress callback are.
type Pipeline struct {
	cfg       Config
	estimator tempo.Estimator
	logger    *slog.Logger
	progress  func(Event)

	stretchOpts []stretch.Option
	reverbOpts  []reverb.Option
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEstimator replaces the fixed 120 BPM tempo policy.
func WithEstimator(e tempo.Estimator) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.estimator = e
		}
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a callback invoked at the start and end of every
// stage.
func WithProgress(fn func(Event)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New validates cfg and builds a pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	mode, _ := reverb.ParseMode(cfg.ReverbMode)
	im, _ := parseInterpolation(cfg.Interpolation)

	cfg = cfg.canonical()

	p := &Pipeline{
		cfg:       cfg,
		estimator: tempo.Default(),
		logger:    slog.New(slog.DiscardHandler),
		stretchOpts: []stretch.Option{
			stretch.WithInterpolation(im),
			stretch.WithWorkers(cfg.Workers),
		},
		reverbOpts: []reverb.Option{
			reverb.WithMode(mode),
			reverb.WithWorkers(cfg.Workers),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run decodes, processes and encodes one buffer. The encoder is only
// called after every processing stage succeeded.
func (p *Pipeline) Run(ctx context.Context, dec Decoder, enc Encoder) (*Report, error) {
	var in *buffer.Audio
	decoded := &Report{}
	err := p.stage(ctx, StageDecode, decoded, func() error {
		var err error
		in, err = dec.Decode(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out, report, err := p.Process(ctx, in)
	if err != nil {
		return nil, err
	}
	report.Stages = append(decoded.Stages, report.Stages...)

	err = p.stage(ctx, StageEncode, report, func() error {
		return enc.Encode(ctx, out)
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// Process applies the transform to in and returns a new buffer. in is not
// modified. On error no buffer is returned.
func (p *Pipeline) Process(ctx context.Context, in *buffer.Audio) (*buffer.Audio, *Report, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}
	if in.NumChannels() == 0 || in.Empty() {
		return nil, nil, fmt.Errorf("pipeline: no samples to process: %w", core.ErrMalformedBuffer)
	}

	report := &Report{
		SampleRate:    in.SampleRate,
		Channels:      in.NumChannels(),
		InputFrames:   in.Frames(),
		TargetBPM:     p.cfg.TargetBPM,
		ReverbMode:    p.cfg.ReverbMode,
		Interpolation: p.cfg.Interpolation,
		Normalized:    p.cfg.Normalize,
	}

	err := p.stage(ctx, StageEstimate, report, func() error {
		bpm, err := p.estimator.Estimate(in)
		if err != nil {
			return err
		}
		if err := tempo.Check(bpm); err != nil {
			return err
		}
		report.OriginalBPM = bpm
		report.Factor, err = stretch.Factor(p.cfg.TargetBPM, bpm)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	p.logger.Info("tempo estimated",
		slog.Float64("original_bpm", report.OriginalBPM),
		slog.Float64("target_bpm", report.TargetBPM),
		slog.Float64("factor", report.Factor),
	)

	channels := in.Channels
	steps := []struct {
		stage Stage
		skip  bool
		run   func([][]float32) ([][]float32, error)
	}{
		{stage: StageStretch, run: func(c [][]float32) ([][]float32, error) {
			return stretch.Stretch(c, report.Factor, p.stretchOpts...)
		}},
		{stage: StageReverb, run: func(c [][]float32) ([][]float32, error) {
			return reverb.Apply(c, p.cfg.ReverbAmount, in.SampleRate, p.reverbOpts...)
		}},
		{stage: StageNormalize, skip: !p.cfg.Normalize, run: func(c [][]float32) ([][]float32, error) {
			return signal.Normalize(c, p.cfg.NormalizePeak)
		}},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		err := p.stage(ctx, step.stage, report, func() error {
			next, err := step.run(channels)
			if err != nil {
				return err
			}
			channels = next
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	out := in.WithChannels(channels)
	report.OutputFrames = out.Frames()
	report.Levels = measureLevels(out)

	if p.cfg.MeasureLoudness {
		err := p.stage(ctx, StageMeasure, report, func() error {
			return measureLoudness(in, out, report)
		})
		if err != nil {
			return nil, nil, err
		}
	}

	p.logger.Info("processing complete",
		slog.Int("channels", report.Channels),
		slog.Int("input_frames", report.InputFrames),
		slog.Int("output_frames", report.OutputFrames),
		slog.Duration("elapsed", report.Total()),
	)

	return out, report, nil
}

// measureLoudness meters input and output concurrently.
func measureLoudness(in, out *buffer.Audio, report *Report) error {
	var before, after loudness.Measurement

	var g errgroup.Group
	g.Go(func() error {
		var err error
		before, err = loudness.Measure(in)
		return err
	})
	g.Go(func() error {
		var err error
		after, err = loudness.Measure(out)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	report.InputLoudness = &before
	report.OutputLoudness = &after
	return nil
}

// stage runs fn as the named stage: it checks ctx first, reports progress,
// logs and times the call, and wraps any error with the stage name.
func (p *Pipeline) stage(ctx context.Context, stage Stage, report *Report, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline: %s: %w", stage, err)
	}

	p.notify(Event{Stage: stage})
	p.logger.Debug("stage started", slog.String("stage", string(stage)))

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	p.notify(Event{Stage: stage, Done: true, Elapsed: elapsed, Err: err})

	if err != nil {
		p.logger.Error("stage failed",
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("pipeline: %s: %w", stage, err)
	}

	if report != nil {
		report.addStage(stage, elapsed)
	}
	p.logger.Debug("stage finished",
		slog.String("stage", string(stage)),
		slog.Duration("elapsed", elapsed),
	)
	return nil
}

func (p *Pipeline) notify(e Event) {
	if p.progress != nil {
		p.progress(e)
	}
}
