// Package pipeline wires a spectral analyzer to a landmark detector.
//
// A [Pipeline] owns one analyzer and one detector and guarantees the
// detector receives frames with the analyzer's bin count (BlockSize/2).
// Frames can optionally be pitch-shifted before detection and kept in a
// bounded [History] for renderers. [Pipeline.Run] serializes access for
// producers running on other goroutines.
package pipeline
