package core

import "fmt"

// ProcessorConfig defines the shared analysis settings.
//
// BlockSize is the transform length in samples and StepSize the hop between
// consecutive spectral frames. One frame is produced per StepSize samples.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	StepSize   int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for live analysis.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  2048,
		StepSize:   512,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the transform block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithStepSize sets the hop between frames.
func WithStepSize(stepSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if stepSize > 0 {
			cfg.StepSize = stepSize
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

// BinCount returns the number of spectral bins a frame carries for this
// configuration, which is half the block size.
func (c ProcessorConfig) BinCount() int {
	return c.BlockSize / 2
}

// Validate reports whether the configuration can drive an analyzer.
func (c ProcessorConfig) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("sample rate must be > 0: %f", c.SampleRate)
	}
	if c.BlockSize < 4 || !IsPowerOfTwo(c.BlockSize) {
		return fmt.Errorf("block size must be a power of two >= 4: %d", c.BlockSize)
	}
	if c.StepSize < 1 || c.StepSize > c.BlockSize {
		return fmt.Errorf("step size must be in [1, %d]: %d", c.BlockSize, c.StepSize)
	}
	return nil
}
