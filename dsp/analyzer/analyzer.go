// Package analyzer turns a stream of audio samples into spectral frames.
//
// An [Analyzer] keeps the last BlockSize samples and, for every StepSize new
// samples, computes a windowed FFT and emits one [spectrum.Frame] of
// BlockSize/2 bins. Each bin carries a normalized magnitude and a frequency
// estimate, either the bin center or a phase-refined instantaneous frequency.
//
// An Analyzer is mono and not safe for concurrent use.
package analyzer

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-landmark/dsp/buffer"
	"github.com/cwbudde/algo-landmark/dsp/core"
	"github.com/cwbudde/algo-landmark/dsp/spectrum"
	"github.com/cwbudde/algo-landmark/dsp/window"
)

// FrequencyMode selects how a bin's frequency is estimated.
type FrequencyMode int

const (
	// FrequencyInstantaneous refines the bin center with the phase advance
	// between consecutive frames.
	FrequencyInstantaneous FrequencyMode = iota
	// FrequencyBinCenter reports k*SampleRate/BlockSize.
	FrequencyBinCenter
)

// ErrStepLength is returned by FeedStep when the step does not hold exactly
// StepSize samples.
var ErrStepLength = errors.New("analyzer: step length mismatch")

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWindow selects the analysis window. Default is Hann.
func WithWindow(t window.Type) Option {
	return func(a *Analyzer) {
		a.windowType = t
	}
}

// WithFrequencyMode selects the frequency estimator.
func WithFrequencyMode(m FrequencyMode) Option {
	return func(a *Analyzer) {
		a.mode = m
	}
}

// Analyzer is a streaming short-time Fourier analyzer.
type Analyzer struct {
	cfg        core.ProcessorConfig
	windowType window.Type
	mode       FrequencyMode

	plan    *algofft.Plan[complex128]
	coeffs  []float64
	ampNorm float64
	binHz   float64
	omega   []float64

	history   *buffer.Ring
	block     []float64
	in        []complex128
	spec      []complex128
	mags      []float64
	prevPhase []float64
	primed    bool
	pending   []float64
	frames    int
}

// New creates an analyzer from processor options (sample rate, block size,
// step size) and analyzer options.
func New(coreOpts []core.ProcessorOption, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		cfg:        core.ApplyProcessorOptions(coreOpts...),
		windowType: window.TypeHann,
		mode:       FrequencyInstantaneous,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	if a.mode != FrequencyInstantaneous && a.mode != FrequencyBinCenter {
		return nil, fmt.Errorf("analyzer: unknown frequency mode: %d", a.mode)
	}

	if err := a.rebuildState(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) rebuildState() error {
	n := a.cfg.BlockSize

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return fmt.Errorf("analyzer: failed to create FFT plan: %w", err)
	}
	a.plan = plan

	a.coeffs = window.Generate(a.windowType, n, window.WithPeriodic())
	if len(a.coeffs) != n {
		return fmt.Errorf("analyzer: window generation failed for size %d", n)
	}
	sum, err := window.Sum(a.coeffs)
	if err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}
	// Full-scale sine at a bin center reads as amplitude 1.
	a.ampNorm = 2 / sum
	a.binHz = a.cfg.SampleRate / float64(n)

	bins := a.cfg.BinCount()
	a.omega = make([]float64, bins)
	for k := range bins {
		a.omega[k] = 2 * math.Pi * float64(k) / float64(n)
	}

	a.history = buffer.New(n)
	a.block = make([]float64, n)
	a.in = make([]complex128, n)
	a.spec = make([]complex128, n)
	a.mags = make([]float64, bins)
	a.prevPhase = make([]float64, bins)
	a.pending = make([]float64, 0, a.cfg.StepSize)

	return nil
}

// Config returns the processor configuration in use.
func (a *Analyzer) Config() core.ProcessorConfig { return a.cfg }

// BinCount returns the number of bins per frame, BlockSize/2.
func (a *Analyzer) BinCount() int { return a.cfg.BinCount() }

// StepSize returns the number of samples consumed per frame.
func (a *Analyzer) StepSize() int { return a.cfg.StepSize }

// BinFrequency returns the center frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 { return float64(k) * a.binHz }

// StepDuration returns the time covered by one frame step in seconds.
func (a *Analyzer) StepDuration() float64 {
	return float64(a.cfg.StepSize) / a.cfg.SampleRate
}

// Frames returns the number of frames produced since construction or Reset.
func (a *Analyzer) Frames() int { return a.frames }

// Reset clears the sample history, phase memory and any buffered partial step.
func (a *Analyzer) Reset() {
	a.history.Reset()
	core.Zero(a.prevPhase)
	a.primed = false
	a.pending = a.pending[:0]
	a.frames = 0
}

// FeedStep consumes exactly StepSize samples and returns the frame for the
// block ending with them. Before BlockSize samples have been seen the block
// is zero-padded at the front. On error the analyzer state is unchanged.
func (a *Analyzer) FeedStep(step []float64) (spectrum.Frame, error) {
	if len(step) != a.cfg.StepSize {
		return spectrum.Frame{}, fmt.Errorf("%w: got %d samples, want %d", ErrStepLength, len(step), a.cfg.StepSize)
	}

	// history is only committed once the frame has been computed
	n := len(a.block)
	a.history.CopyTo(a.block)
	copy(a.block, a.block[len(step):])
	copy(a.block[n-len(step):], step)
	if err := window.ApplyCoefficients(a.block, a.block, a.coeffs); err != nil {
		return spectrum.Frame{}, fmt.Errorf("analyzer: %w", err)
	}
	for i, x := range a.block {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.spec, a.in); err != nil {
		return spectrum.Frame{}, fmt.Errorf("analyzer: forward FFT failed: %w", err)
	}

	a.history.Write(step)

	bins := len(a.mags)
	spectrum.MagnitudeInto(a.mags, a.spec[:bins])

	frame := spectrum.Empty(bins)
	hop := float64(a.cfg.StepSize)
	for k := range bins {
		freq := a.BinFrequency(k)
		if a.mode == FrequencyInstantaneous {
			phase := math.Atan2(imag(a.spec[k]), real(a.spec[k]))
			if a.primed {
				delta := wrapPhase(phase - a.prevPhase[k] - a.omega[k]*hop)
				inst := a.omega[k] + delta/hop
				freq = inst * a.cfg.SampleRate / (2 * math.Pi)
			}
			a.prevPhase[k] = phase
		}
		frame.Bins[k] = spectrum.Bin{Amplitude: a.mags[k] * a.ampNorm, Frequency: freq}
	}
	a.primed = true
	a.frames++

	return frame, nil
}

// Feed consumes any number of samples and returns one frame per completed
// step, in order. Samples left over from an incomplete step are kept for the
// next call.
func (a *Analyzer) Feed(samples []float64) ([]spectrum.Frame, error) {
	step := a.cfg.StepSize
	buf := append(a.pending, samples...)

	var frames []spectrum.Frame
	off := 0
	for len(buf)-off >= step {
		frame, err := a.FeedStep(buf[off : off+step])
		if err != nil {
			// the failed step and everything after it stay pending
			a.pending = append(a.pending[:0], buf[off:]...)
			return frames, err
		}
		frames = append(frames, frame)
		off += step
	}

	a.pending = append(a.pending[:0], buf[off:]...)
	return frames, nil
}

// Pending returns the number of buffered samples that do not yet form a step.
func (a *Analyzer) Pending() int { return len(a.pending) }

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}
