package pipeline_test

import (
	"context"
	"fmt"

	"github.com/cwbudde/slowverb/dsp/buffer"
	"github.com/cwbudde/slowverb/pipeline"
)

func ExamplePipeline_Process() {
	in, _ := buffer.FromChannels([][]float32{make([]float32, 1200)}, 100)

	p, _ := pipeline.New(pipeline.DefaultConfig())
	out, report, _ := p.Process(context.Background(), in)

	fmt.Printf("bpm %.0f -> %.0f, factor %.4f, frames %d -> %d\n",
		report.OriginalBPM, report.TargetBPM, report.Factor, in.Frames(), out.Frames())
	// Output:
	// bpm 120 -> 85, factor 0.7083, frames 1200 -> 1694
}
