package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pipeline activity.
type Metrics struct {
	Frames         prometheus.Counter
	Landmarks      prometheus.Counter
	ContractErrors prometheus.Counter
	HistoryFrames  prometheus.Gauge
}

// NewMetrics creates the pipeline collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landmark_frames_total",
			Help: "Spectral frames processed by the detector",
		}),
		Landmarks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landmark_landmarks_total",
			Help: "Landmarks emitted",
		}),
		ContractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landmark_contract_errors_total",
			Help: "Frames rejected for a bin count mismatch",
		}),
		HistoryFrames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "landmark_history_frames",
			Help: "Frames currently held for display",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Frames, m.Landmarks, m.ContractErrors, m.HistoryFrames} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
