package buffer

// Ring holds the most recent Cap() samples written to it.
// The zero value is not usable; construct with New.
type Ring struct {
	samples []float64
	write   int // next slot to overwrite, which is also the oldest sample
	filled  int
}

// New returns a zero-filled Ring of the given capacity.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{samples: make([]float64, capacity)}
}

// Cap returns the number of samples retained.
func (r *Ring) Cap() int { return len(r.samples) }

// Len returns how many real samples have been written, up to Cap.
func (r *Ring) Len() int { return r.filled }

// Write appends samples, overwriting the oldest ones once full.
func (r *Ring) Write(samples []float64) {
	n := len(r.samples)
	// Only the tail can survive.
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	for len(samples) > 0 {
		c := copy(r.samples[r.write:], samples)
		samples = samples[c:]
		r.write = (r.write + c) % n
		r.filled = min(n, r.filled+c)
	}
}

// CopyTo writes the retained samples into dst, oldest first, and returns
// the number copied. Slots never written read as zero, so a partially filled
// ring behaves like a zero-padded history.
func (r *Ring) CopyTo(dst []float64) int {
	n := min(len(dst), len(r.samples))
	first := copy(dst[:n], r.samples[r.write:])
	copy(dst[first:n], r.samples[:r.write])
	return n
}

// Reset zeroes the history.
func (r *Ring) Reset() {
	for i := range r.samples {
		r.samples[i] = 0
	}
	r.write = 0
	r.filled = 0
}
