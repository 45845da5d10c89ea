package landmark

import (
	"strconv"

	"github.com/cwbudde/algo-landmark/dsp/spectrum"
)

// Landmark is a confirmed local maximum of one bin.
type Landmark struct {
	Time      int // step index, first processed frame is 1; 0 is the warm-up sentinel
	Bin       int
	Frequency float64
	Amplitude float64
}

// Detector keeps the last 2*TSpan samples of every bin and reports a
// landmark whenever a bin's window maximum sits TSpan steps in the past.
type Detector struct {
	binCount int
	tSpan    int
	width    int // 2 * tSpan
	step     int

	// window is a flat arena of binCount rings, each width samples long.
	// All rings advance together so one head index serves them all; head
	// points at the oldest sample.
	window []Landmark
	head   int
	max    []Landmark
}

// New returns a detector for frames of binCount bins and a half window of
// tSpan steps.
func New(binCount, tSpan int) (*Detector, error) {
	if binCount < 1 {
		return nil, &ContractError{Op: "new", Field: "bin count", Got: binCount, Want: ">= 1"}
	}
	if tSpan < 1 {
		return nil, &ContractError{Op: "new", Field: "t span", Got: tSpan, Want: ">= 1"}
	}

	width := 2 * tSpan
	d := &Detector{
		binCount: binCount,
		tSpan:    tSpan,
		width:    width,
		window:   make([]Landmark, binCount*width),
		max:      make([]Landmark, binCount),
	}
	for i := range binCount {
		sentinel := Landmark{Bin: i}
		ring := d.window[i*width : (i+1)*width]
		for j := range ring {
			ring[j] = sentinel
		}
		d.max[i] = sentinel
	}
	return d, nil
}

// BinCount returns the number of bins each frame must carry.
func (d *Detector) BinCount() int { return d.binCount }

// TSpan returns the half window length in steps.
func (d *Detector) TSpan() int { return d.tSpan }

// Latency returns the number of steps between a landmark's occurrence and
// its report.
func (d *Detector) Latency() int { return d.tSpan }

// Step returns the number of frames processed so far.
func (d *Detector) Step() int { return d.step }

// Process consumes the next frame and returns the landmarks confirmed by it,
// ordered by bin. A frame with the wrong bin count is rejected without
// touching the detector state.
func (d *Detector) Process(frame spectrum.Frame) ([]Landmark, error) {
	if len(frame.Bins) != d.binCount {
		return nil, &ContractError{
			Op:    "process",
			Field: "frame bin count",
			Got:   len(frame.Bins),
			Want:  strconv.Itoa(d.binCount),
		}
	}

	d.step++
	t := d.step
	slot := d.head

	for i, b := range frame.Bins {
		s := Landmark{Time: t, Bin: i, Frequency: b.Frequency, Amplitude: b.Amplitude}

		if s.Amplitude > d.max[i].Amplitude {
			d.max[i] = s
		}

		// Writing into the head slot both appends s and evicts the oldest.
		ring := d.window[i*d.width : (i+1)*d.width]
		evicted := ring[slot]
		ring[slot] = s

		// Times are unique within a ring, so they identify the sample even
		// when its frequency is NaN.
		if evicted.Time == d.max[i].Time {
			d.max[i] = d.rescan(ring, slot+1)
		}
	}
	d.head = (slot + 1) % d.width

	var found []Landmark
	due := t - d.tSpan
	for _, m := range d.max {
		// A bin silent through its first TSpan steps reports its sentinel.
		if m.Time == due {
			found = append(found, m)
		}
	}
	return found, nil
}

// rescan returns the earliest sample with the greatest amplitude, walking the
// ring from its oldest slot.
func (d *Detector) rescan(ring []Landmark, oldest int) Landmark {
	oldest %= d.width
	best := ring[oldest]
	for k := 1; k < d.width; k++ {
		e := ring[(oldest+k)%d.width]
		if e.Amplitude > best.Amplitude {
			best = e
		}
	}
	return best
}

// Window returns a copy of the bin's retained samples, oldest first.
// Unfilled slots hold sentinels with Time 0.
func (d *Detector) Window(bin int) []Landmark {
	if bin < 0 || bin >= d.binCount {
		return nil
	}
	ring := d.window[bin*d.width : (bin+1)*d.width]
	out := make([]Landmark, 0, d.width)
	for k := range d.width {
		out = append(out, ring[(d.head+k)%d.width])
	}
	return out
}

// Max returns the cached window maximum of bin.
func (d *Detector) Max(bin int) (Landmark, bool) {
	if bin < 0 || bin >= d.binCount {
		return Landmark{}, false
	}
	return d.max[bin], true
}
