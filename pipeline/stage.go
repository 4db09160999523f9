package pipeline

import (
	"context"
	"time"

	"github.com/cwbudde/slowverb/dsp/buffer"
)

// Stage names one step of a run.
type Stage string

// Stages in execution order.
const (
	StageDecode    Stage = "decode"
	StageEstimate  Stage = "estimate"
	StageStretch   Stage = "stretch"
	StageReverb    Stage = "reverb"
	StageNormalize Stage = "normalize"
	StageMeasure   Stage = "measure"
	StageEncode    Stage = "encode"
)

// Event is delivered to the progress callback when a stage starts and
// again when it finishes.
type Event struct {
	Stage   Stage
	Done    bool
	Elapsed time.Duration
	Err     error
}

// Decoder produces the PCM buffer to process, for example by converting a
// compressed file. Decoding must complete before any processing starts.
type Decoder interface {
	Decode(ctx context.Context) (*buffer.Audio, error)
}

// Encoder consumes the processed buffer, for example by writing a 32-bit
// float container file. It is never called after a failed stage.
type Encoder interface {
	Encode(ctx context.Context, a *buffer.Audio) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context) (*buffer.Audio, error)

// Decode calls f(ctx).
func (f DecoderFunc) Decode(ctx context.Context) (*buffer.Audio, error) {
	return f(ctx)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(ctx context.Context, a *buffer.Audio) error

// Encode calls f(ctx, a).
func (f EncoderFunc) Encode(ctx context.Context, a *buffer.Audio) error {
	return f(ctx, a)
}
