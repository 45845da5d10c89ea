package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-landmark/dsp/analyzer"
	"github.com/cwbudde/algo-landmark/dsp/core"
	"github.com/cwbudde/algo-landmark/dsp/landmark"
	"github.com/cwbudde/algo-landmark/dsp/signal"
	"github.com/cwbudde/algo-landmark/dsp/spectrum"
)

const (
	rate  = 8000.0
	block = 256
	step  = 64
)

func coreOpts() []core.ProcessorOption {
	return []core.ProcessorOption{
		core.WithSampleRate(rate),
		core.WithBlockSize(block),
		core.WithStepSize(step),
	}
}

func newAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	an, err := analyzer.New(coreOpts(), analyzer.WithFrequencyMode(analyzer.FrequencyBinCenter))
	require.NoError(t, err)
	return an
}

// burst returns silence with one 1 kHz burst covering frames 21..24 exactly.
func burst(t *testing.T) []float64 {
	t.Helper()
	g := signal.NewGenerator(coreOpts()...)
	x, err := g.ToneBurst(1000, 1, 20*step, block, 40*step)
	require.NoError(t, err)
	return x
}

func TestNewRequiresAnalyzer(t *testing.T) {
	_, err := New(nil, 2)
	assert.Error(t, err)

	_, err = NewWithDetector(nil, nil)
	assert.Error(t, err)
}

func TestNewPropagatesDetectorContract(t *testing.T) {
	_, err := New(newAnalyzer(t), 0)
	assert.ErrorIs(t, err, landmark.ErrContractViolation)
}

func TestBinCountContract(t *testing.T) {
	an := newAnalyzer(t)

	det, err := landmark.New(block, 2)
	require.NoError(t, err)
	_, err = NewWithDetector(an, det)
	require.ErrorIs(t, err, landmark.ErrContractViolation)

	var ce *landmark.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, block, ce.Got)

	det, err = landmark.New(block/2, 2)
	require.NoError(t, err)
	p, err := NewWithDetector(an, det)
	require.NoError(t, err)
	assert.Same(t, det, p.Detector())
}

func TestInvalidShiftRejected(t *testing.T) {
	for _, f := range []float64{0, -1} {
		_, err := New(newAnalyzer(t), 2, WithShift(f))
		assert.Error(t, err, "factor %v", f)
	}
}

func TestToneBurstYieldsLandmark(t *testing.T) {
	const tSpan = 4
	reg := prometheus.NewRegistry()
	p, err := New(newAnalyzer(t), tSpan, WithRegisterer(reg), WithHistory(8))
	require.NoError(t, err)

	x := burst(t)
	var got []landmark.Landmark
	// odd chunk size to exercise analyzer buffering
	for off := 0; off < len(x); off += 100 {
		lms, err := p.Push(x[off:min(off+100, len(x))])
		require.NoError(t, err)
		got = append(got, lms...)
	}

	// leading silence reports every bin's sentinel once, on step tSpan
	sentinels := 0
	var hit *landmark.Landmark
	for i, l := range got {
		if l.Time == 0 {
			assert.Equal(t, 0.0, l.Amplitude)
			sentinels++
			continue
		}
		if l.Bin == 32 {
			require.Nil(t, hit, "bin 32 reported twice: %+v", got)
			hit = &got[i]
		}
	}
	assert.Equal(t, block/2, sentinels)
	require.NotNil(t, hit)
	assert.Equal(t, 24, hit.Time)
	assert.InDelta(t, 1000, hit.Frequency, 1e-9)
	assert.InDelta(t, 1, hit.Amplitude, 1e-9)
	assert.InDelta(t, 24*float64(step)/rate, p.TimeOf(*hit), 1e-12)

	assert.Equal(t, 40.0, promtest.ToFloat64(p.Metrics().Frames))
	assert.Equal(t, float64(len(got)), promtest.ToFloat64(p.Metrics().Landmarks))
	assert.Equal(t, 8.0, promtest.ToFloat64(p.Metrics().HistoryFrames))
	assert.Equal(t, 8, p.History().Len())

	count, err := promtest.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(newAnalyzer(t), 2, WithRegisterer(reg))
	require.NoError(t, err)
	_, err = New(newAnalyzer(t), 2, WithRegisterer(reg))
	assert.Error(t, err)
}

func TestPushFrameContractError(t *testing.T) {
	p, err := New(newAnalyzer(t), 2)
	require.NoError(t, err)

	_, err = p.PushFrame(spectrum.Empty(3))
	require.ErrorIs(t, err, landmark.ErrContractViolation)
	assert.Equal(t, 1.0, promtest.ToFloat64(p.Metrics().ContractErrors))
	assert.Equal(t, 0.0, promtest.ToFloat64(p.Metrics().Frames))
	assert.Equal(t, 0, p.Detector().Step())
}

func TestFrameOnlyPipelineWithShift(t *testing.T) {
	det, err := landmark.New(4, 2)
	require.NoError(t, err)
	p, err := NewWithDetector(nil, det, WithShift(2), WithHistory(3))
	require.NoError(t, err)

	_, err = p.Push([]float64{1, 2, 3})
	assert.Error(t, err)

	f, err := spectrum.NewFrame([]float64{0, 3, 0, 0}, []float64{0, 10, 0, 0})
	require.NoError(t, err)

	var lms []landmark.Landmark
	for _, frame := range []spectrum.Frame{f, spectrum.Empty(4), spectrum.Empty(4)} {
		out, err := p.PushFrame(frame)
		require.NoError(t, err)
		lms = append(lms, out...)
	}

	// bin 1 moved to bin 2 with doubled frequency; the other bins stayed
	// silent and report their sentinels first
	require.Len(t, lms, 4)
	assert.Equal(t, []landmark.Landmark{{Bin: 0}, {Bin: 1}, {Bin: 3}}, lms[:3])
	assert.Equal(t, landmark.Landmark{Time: 1, Bin: 2, Frequency: 20, Amplitude: 3}, lms[3])
	assert.Equal(t, 0.0, p.TimeOf(lms[3]))

	hist := p.History().Frames()
	require.Len(t, hist, 3)
	assert.Equal(t, 3.0, hist[0].Bins[2].Amplitude)
	assert.Equal(t, 0.0, hist[0].Bins[1].Amplitude)
}

func TestRunDeliversBatchesInOrder(t *testing.T) {
	p, err := New(newAnalyzer(t), 4)
	require.NoError(t, err)

	x := burst(t)
	in := make(chan []float64)
	out := make(chan []landmark.Landmark, 64)

	errc := make(chan error, 1)
	go func() { errc <- p.Run(context.Background(), in, out) }()

	for off := 0; off < len(x); off += step {
		in <- x[off : off+step]
	}
	close(in)
	require.NoError(t, <-errc)
	close(out)

	last := 0
	total := 0
	for batch := range out {
		require.NotEmpty(t, batch)
		for _, l := range batch {
			assert.GreaterOrEqual(t, l.Time, last)
			last = l.Time
		}
		total += len(batch)
	}
	assert.Positive(t, total)
	assert.Equal(t, 40, p.Detector().Step())
}

func TestRunStopsOnCancel(t *testing.T) {
	p, err := New(newAnalyzer(t), 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx, make(chan []float64), make(chan []landmark.Landmark)) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
