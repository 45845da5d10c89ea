// Package spectrum provides the spectral-frame data model.
//
// A [Frame] is one time step of per-bin amplitude/frequency readings as
// delivered by an external analyzer. The package does not implement a
// frequency transform; it offers the frame operations consumed by landmark
// detection ([Frame.DominantFrequency], [Frame.Shift]) and magnitude helpers
// for turning complex FFT output into frames.
package spectrum
