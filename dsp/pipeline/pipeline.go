package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-landmark/dsp/analyzer"
	"github.com/cwbudde/algo-landmark/dsp/landmark"
	"github.com/cwbudde/algo-landmark/dsp/spectrum"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	shift    float64
	history  int
	logger   *slog.Logger
	registry prometheus.Registerer
}

// WithShift remaps every frame with spectrum.Frame.Shift(factor) before
// detection. Factor must be positive and finite.
func WithShift(factor float64) Option {
	return func(o *options) {
		o.shift = factor
	}
}

// WithHistory keeps the last n frames (after shifting) for display.
func WithHistory(n int) Option {
	return func(o *options) {
		o.history = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegisterer registers the pipeline metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// Pipeline feeds audio through an analyzer into a landmark detector.
type Pipeline struct {
	analyzer *analyzer.Analyzer
	detector *landmark.Detector
	shift    float64
	history  *History
	metrics  *Metrics
	log      *slog.Logger
}

// New builds a pipeline around an with a detector sized to the analyzer's
// bin count and a half window of tSpan frames.
func New(an *analyzer.Analyzer, tSpan int, opts ...Option) (*Pipeline, error) {
	if an == nil {
		return nil, fmt.Errorf("pipeline: analyzer must not be nil")
	}
	det, err := landmark.New(an.BinCount(), tSpan)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return NewWithDetector(an, det, opts...)
}

// NewWithDetector builds a pipeline from an existing detector. When an is
// non-nil the detector must expect exactly an.BinCount() bins. A nil
// analyzer gives a frame-only pipeline driven through PushFrame.
func NewWithDetector(an *analyzer.Analyzer, det *landmark.Detector, opts ...Option) (*Pipeline, error) {
	if det == nil {
		return nil, fmt.Errorf("pipeline: detector must not be nil")
	}
	if an != nil && det.BinCount() != an.BinCount() {
		return nil, &landmark.ContractError{
			Op:    "pipeline",
			Field: "detector bin count",
			Got:   det.BinCount(),
			Want:  strconv.Itoa(an.BinCount()) + " (analyzer block size / 2)",
		}
	}

	o := options{shift: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if !(o.shift > 0) || math.IsInf(o.shift, 0) {
		return nil, fmt.Errorf("pipeline: shift factor must be > 0 and finite: %f", o.shift)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	m, err := NewMetrics(o.registry)
	if err != nil {
		return nil, fmt.Errorf("pipeline: register metrics: %w", err)
	}

	p := &Pipeline{
		analyzer: an,
		detector: det,
		shift:    o.shift,
		metrics:  m,
		log:      o.logger,
	}
	if o.history > 0 {
		p.history = NewHistory(o.history)
	}
	return p, nil
}

// Detector returns the underlying detector.
func (p *Pipeline) Detector() *landmark.Detector { return p.detector }

// History returns the frame history, or nil when disabled.
func (p *Pipeline) History() *History { return p.history }

// Metrics returns the pipeline counters.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// TimeOf returns the end time in seconds of the block a landmark was found
// in. It returns 0 for frame-only pipelines.
func (p *Pipeline) TimeOf(l landmark.Landmark) float64 {
	if p.analyzer == nil {
		return 0
	}
	return float64(l.Time) * p.analyzer.StepDuration()
}

// Push feeds audio samples and returns the landmarks confirmed by all frames
// completed by them, in order.
func (p *Pipeline) Push(samples []float64) ([]landmark.Landmark, error) {
	if p.analyzer == nil {
		return nil, fmt.Errorf("pipeline: Push requires an analyzer")
	}
	frames, err := p.analyzer.Feed(samples)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	var found []landmark.Landmark
	for _, f := range frames {
		lms, err := p.PushFrame(f)
		if err != nil {
			return found, err
		}
		found = append(found, lms...)
	}
	return found, nil
}

// PushFrame feeds one frame directly to the detector.
func (p *Pipeline) PushFrame(f spectrum.Frame) ([]landmark.Landmark, error) {
	if p.shift != 1 {
		f = f.Shift(p.shift)
	}

	lms, err := p.detector.Process(f)
	if err != nil {
		p.metrics.ContractErrors.Inc()
		p.log.Error("frame rejected", "bins", f.Len(), "want", p.detector.BinCount(), "err", err)
		return nil, err
	}

	if p.history != nil {
		p.history.Add(f)
		p.metrics.HistoryFrames.Set(float64(p.history.Len()))
	}
	p.metrics.Frames.Inc()
	p.metrics.Landmarks.Add(float64(len(lms)))
	if len(lms) > 0 {
		p.log.Debug("landmarks", "step", p.detector.Step(), "count", len(lms))
	}
	return lms, nil
}

// Run owns the pipeline until in is closed, ctx is cancelled or processing
// fails. Each received chunk is pushed through the pipeline and non-empty
// landmark batches are sent to out in order. Run never closes out.
func (p *Pipeline) Run(ctx context.Context, in <-chan []float64, out chan<- []landmark.Landmark) error {
	for {
		select {
		case <-ctx.Done():
			p.log.Info("pipeline stopped", "reason", ctx.Err())
			return ctx.Err()
		case samples, ok := <-in:
			if !ok {
				p.log.Info("pipeline input closed", "steps", p.detector.Step())
				return nil
			}
			lms, err := p.Push(samples)
			if err != nil {
				return err
			}
			if len(lms) == 0 {
				continue
			}
			select {
			case out <- lms:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
