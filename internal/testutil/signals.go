package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// QuantizedAmplitudes returns steps rows of bins amplitudes drawn from
// {0, 1, ..., levels-1}. Few levels make ties common, which exercises the
// earliest-maximum tie-break.
func QuantizedAmplitudes(seed int64, steps, bins, levels int) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float64, steps)
	for t := range out {
		row := make([]float64, bins)
		for i := range row {
			row[i] = float64(rng.Intn(levels))
		}
		out[t] = row
	}
	return out
}
