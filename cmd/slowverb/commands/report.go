package commands

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/slowverb/measure/loudness"
	"github.com/cwbudde/slowverb/pipeline"
)

func writeReport(w io.Writer, r *pipeline.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rows := []struct {
		key, value string
	}{
		{"Sample rate", fmt.Sprintf("%d Hz", r.SampleRate)},
		{"Channels", fmt.Sprintf("%d", r.Channels)},
		{"Tempo", fmt.Sprintf("%.2f -> %.2f BPM", r.OriginalBPM, r.TargetBPM)},
		{"Factor", fmt.Sprintf("%.6f", r.Factor)},
		{"Frames", fmt.Sprintf("%d -> %d", r.InputFrames, r.OutputFrames)},
		{"Reverb mode", r.ReverbMode},
		{"Interpolation", r.Interpolation},
		{"Normalized", fmt.Sprintf("%t", r.Normalized)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row.key, row.value); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if _, err := fmt.Fprintf(tw, "\nStage\tDuration\n-----\t--------\n"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	for _, s := range r.Stages {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", s.Stage, s.Duration); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if _, err := fmt.Fprintf(tw, "total\t%s\n", r.Total()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "\nChannel\tPeak [dBFS]\tRMS [dBFS]\n-------\t-----------\t----------\n"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	for ch, l := range r.Levels {
		if _, err := fmt.Fprintf(tw, "%d\t%.2f\t%.2f\n", ch, dBFS(l.Peak), dBFS(l.RMS)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if r.InputLoudness != nil && r.OutputLoudness != nil {
		if _, err := fmt.Fprintf(tw, "\nLoudness\tIntegrated [LUFS]\tMax momentary [LUFS]\tMax short-term [LUFS]\tPeak [dBFS]\n--------\t-----------------\t--------------------\t---------------------\t-----------\n"); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		for _, row := range []struct {
			name string
			m    *loudness.Measurement
		}{{"input", r.InputLoudness}, {"output", r.OutputLoudness}} {
			if _, err := fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
				row.name, row.m.Integrated, row.m.MaxMomentary, row.m.MaxShortTerm, dBFS(row.m.Peak)); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

func dBFS(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
