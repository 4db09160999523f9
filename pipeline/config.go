package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/interp"
	"github.com/cwbudde/slowverb/dsp/reverb"
	"github.com/cwbudde/slowverb/dsp/tempo"
)

// Default parameter values.
const (
	DefaultTargetBPM     = 85
	DefaultReverbAmount  = 0.5
	DefaultNormalizePeak = 1.0
)

// Config holds every parameter of one slowed + reverb run.
type Config struct {
	// TargetBPM is the tempo the output should have.
	TargetBPM float64 `yaml:"target_bpm"`
	// ReverbAmount is the echo gain in [0,1].
	ReverbAmount float64 `yaml:"reverb_amount"`
	// ReverbMode is "exact", "recurrence" or "fft".
	ReverbMode string `yaml:"reverb_mode"`
	// Interpolation is "linear" or "hermite".
	Interpolation string `yaml:"interpolation"`
	// Normalize scales the result so its peak equals NormalizePeak.
	Normalize     bool    `yaml:"normalize"`
	NormalizePeak float64 `yaml:"normalize_peak"`
	// Workers bounds channel concurrency; 0 means one goroutine per channel.
	Workers int `yaml:"workers"`
	// MeasureLoudness adds EBU R128 readings of input and output to the report.
	MeasureLoudness bool `yaml:"measure_loudness"`
}

// DefaultConfig returns the reference parameters: 85 BPM target, half
// reverb, exact echo sum, linear interpolation, no normalization.
func DefaultConfig() Config {
	return Config{
		TargetBPM:     DefaultTargetBPM,
		ReverbAmount:  DefaultReverbAmount,
		ReverbMode:    reverb.ModeExactSum.String(),
		Interpolation: interp.Linear.String(),
		NormalizePeak: DefaultNormalizePeak,
		Workers:       1,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig, rejects unknown keys,
// validates the result and returns it with canonical mode names.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.canonical(), nil
}

// canonical rewrites ReverbMode and Interpolation to the names their
// parsers produce. c must be valid.
func (c Config) canonical() Config {
	mode, _ := reverb.ParseMode(c.ReverbMode)
	im, _ := parseInterpolation(c.Interpolation)
	c.ReverbMode = mode.String()
	c.Interpolation = im.String()
	return c
}

// Marshal encodes the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every field without running any processing.
func (c Config) Validate() error {
	if err := tempo.Check(c.TargetBPM); err != nil {
		return fmt.Errorf("target_bpm: %w", err)
	}
	if err := (reverb.Params{Amount: c.ReverbAmount, SampleRate: 1}).Validate(); err != nil {
		return fmt.Errorf("reverb_amount: %w", err)
	}
	if _, err := reverb.ParseMode(c.ReverbMode); err != nil {
		return fmt.Errorf("reverb_mode: %w", err)
	}
	if _, err := parseInterpolation(c.Interpolation); err != nil {
		return fmt.Errorf("interpolation: %w", err)
	}
	if c.Normalize && (!(c.NormalizePeak > 0) || !core.IsFinite(c.NormalizePeak)) {
		return fmt.Errorf("normalize_peak %g: %w", c.NormalizePeak, core.ErrInvalidParameter)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, core.ErrInvalidParameter)
	}
	return nil
}

func parseInterpolation(s string) (interp.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", interp.Linear.String():
		return interp.Linear, nil
	case interp.Hermite.String():
		return interp.Hermite, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q: %w", s, core.ErrInvalidParameter)
	}
}
