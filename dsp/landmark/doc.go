// Package landmark finds spectral landmarks in a stream of frames.
//
// A landmark is a time-frequency point whose amplitude is the maximum of its
// bin over a sliding window of 2*TSpan steps, with the maximum sitting exactly
// in the middle of that window. The [Detector] consumes one
// [spectrum.Frame] per step and reports each landmark once, TSpan steps after
// it occurred.
//
// Memory is bounded by BinCount*2*TSpan samples regardless of stream length,
// so a detector can run indefinitely on a live signal. A Detector is not safe
// for concurrent use.
package landmark
