package testutil

// Emission is one landmark expected from a detector: the sample at Time in
// Bin, reported while processing Step.
type Emission struct {
	Step      int
	Time      int
	Bin       int
	Amplitude float64
}

// WindowMax returns the time and amplitude of the earliest maximum of bin in
// the 2*tSpan window ending at step t (1-based). Steps before the first frame
// count as zero-amplitude sentinels at time 0, placed ahead of real samples.
func WindowMax(amps [][]float64, bin, tSpan, t int) (int, float64) {
	width := 2 * tSpan
	first := t - width + 1

	bestTime, bestAmp := 0, 0.0
	seeded := false
	if first < 1 {
		// sentinels occupy the oldest slots
		seeded = true
		first = 1
	}
	for s := first; s <= t; s++ {
		a := amps[s-1][bin]
		if !seeded || a > bestAmp {
			bestTime, bestAmp = s, a
			seeded = true
		}
	}
	return bestTime, bestAmp
}

// ExpectedLandmarks recomputes, by brute force over full history, which
// landmarks a detector with the given half window must emit for amps
// (amps[t-1][bin] is the amplitude of bin at step t).
func ExpectedLandmarks(amps [][]float64, tSpan int) []Emission {
	var out []Emission
	for t := 1; t <= len(amps); t++ {
		for bin := range amps[t-1] {
			mt, ma := WindowMax(amps, bin, tSpan, t)
			if mt == t-tSpan {
				out = append(out, Emission{Step: t, Time: mt, Bin: bin, Amplitude: ma})
			}
		}
	}
	return out
}
