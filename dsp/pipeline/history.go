package pipeline

import "github.com/cwbudde/algo-landmark/dsp/spectrum"

// History keeps the most recent frames, e.g. for a scrolling spectrogram.
type History struct {
	frames []spectrum.Frame
	next   int
	full   bool
}

// NewHistory returns a history holding up to capacity frames.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{frames: make([]spectrum.Frame, capacity)}
}

// Add stores a copy of f, dropping the oldest frame when full.
func (h *History) Add(f spectrum.Frame) {
	h.frames[h.next] = f.Clone()
	h.next++
	if h.next == len(h.frames) {
		h.next = 0
		h.full = true
	}
}

// Len returns the number of stored frames.
func (h *History) Len() int {
	if h.full {
		return len(h.frames)
	}
	return h.next
}

// Cap returns the maximum number of stored frames.
func (h *History) Cap() int { return len(h.frames) }

// Frames returns the stored frames, oldest first.
func (h *History) Frames() []spectrum.Frame {
	if !h.full {
		return append([]spectrum.Frame(nil), h.frames[:h.next]...)
	}
	out := make([]spectrum.Frame, 0, len(h.frames))
	out = append(out, h.frames[h.next:]...)
	return append(out, h.frames[:h.next]...)
}
