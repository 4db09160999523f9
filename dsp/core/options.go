package core

// ProcessorConfig defines settings shared by the batch processors.
type ProcessorConfig struct {
	// Workers bounds how many channels are processed concurrently.
	// 0 means one goroutine per channel; 1 processes channels sequentially.
	Workers int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the sequential default.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Workers: 1,
	}
}

// WithWorkers sets the channel concurrency limit. Negative values are ignored.
func WithWorkers(n int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if n >= 0 {
			cfg.Workers = n
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
