package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-landmark/dsp/spectrum"
)

func ExampleMagnitudeInto() {
	bins := []complex128{1 + 0i, 0 + 1i, -1 + 0i}
	mag := make([]float64, len(bins))
	spectrum.MagnitudeInto(mag, bins)
	fmt.Printf("%.1f %.1f %.1f\n", mag[0], mag[1], mag[2])
	// Output:
	// 1.0 1.0 1.0
}

func ExampleFrame_DominantFrequency() {
	f, _ := spectrum.NewFrame(
		[]float64{0.1, 0.8, 0.3},
		[]float64{100, 200, 300},
	)
	fmt.Println(f.DominantFrequency())
	// Output:
	// 200
}

func ExampleFrame_Shift() {
	f, _ := spectrum.NewFrame(
		[]float64{1, 2, 3, 4},
		[]float64{10, 20, 30, 40},
	)
	for _, b := range f.Shift(0.5).Bins {
		fmt.Printf("%.0f@%.0f ", b.Amplitude, b.Frequency)
	}
	fmt.Println()
	// Output:
	// 3@10 7@20 0@0 0@0
}
