package spectrum

import (
	"fmt"
	"math"
)

// Bin is one channel's reading at one instant.
type Bin struct {
	Amplitude float64 // linear, >= 0
	Frequency float64 // Hz
}

// Frame is the spectrum at one discrete step. All frames consumed by one
// detector share the same bin count.
type Frame struct {
	Bins []Bin
}

// Empty returns the zero frame: every bin has amplitude 0 and frequency 0.
func Empty(binCount int) Frame {
	if binCount < 0 {
		binCount = 0
	}
	return Frame{Bins: make([]Bin, binCount)}
}

// NewFrame builds a frame from parallel amplitude and frequency slices.
func NewFrame(amplitudes, frequencies []float64) (Frame, error) {
	if len(amplitudes) != len(frequencies) {
		return Frame{}, fmt.Errorf("frame amplitude/frequency length mismatch: %d != %d",
			len(amplitudes), len(frequencies))
	}
	f := Empty(len(amplitudes))
	for i := range f.Bins {
		if amplitudes[i] < 0 || math.IsNaN(amplitudes[i]) {
			return Frame{}, fmt.Errorf("frame amplitude must be >= 0 at index %d: %f", i, amplitudes[i])
		}
		f.Bins[i] = Bin{Amplitude: amplitudes[i], Frequency: frequencies[i]}
	}
	return f, nil
}

// Len returns the bin count.
func (f Frame) Len() int { return len(f.Bins) }

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	return Frame{Bins: append([]Bin(nil), f.Bins...)}
}

// Amplitudes returns the per-bin amplitudes as a new slice.
func (f Frame) Amplitudes() []float64 {
	out := make([]float64, len(f.Bins))
	for i, b := range f.Bins {
		out[i] = b.Amplitude
	}
	return out
}

// DominantFrequency returns the frequency of the loudest bin.
//
// Ties keep the first bin encountered. A frame without any positive
// amplitude returns 0.
func (f Frame) DominantFrequency() float64 {
	maxFreq := 0.0
	maxAmp := 0.0
	for _, b := range f.Bins {
		if b.Amplitude > maxAmp {
			maxAmp = b.Amplitude
			maxFreq = b.Frequency
		}
	}
	return maxFreq
}

// Shift remaps bin content by factor and returns a new frame of the same
// length.
//
// Bin k moves to index floor(k*factor). Indices below zero or NaN saturate to
// bin 0, indices past the last bin are dropped. When several source bins land on the same index their
// amplitudes are summed and the frequency of the last one mapped, scaled by
// factor, is kept.
func (f Frame) Shift(factor float64) Frame {
	out := Empty(len(f.Bins))
	n := len(out.Bins)
	for k, b := range f.Bins {
		pos := math.Floor(float64(k) * factor)
		if pos >= float64(n) {
			continue
		}
		idx := 0
		if pos > 0 {
			idx = int(pos)
		}
		out.Bins[idx].Amplitude += b.Amplitude
		out.Bins[idx].Frequency = b.Frequency * factor
	}
	return out
}
