package analyzer_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-landmark/dsp/analyzer"
	"github.com/cwbudde/algo-landmark/dsp/core"
)

func ExampleAnalyzer_Feed() {
	a, err := analyzer.New([]core.ProcessorOption{
		core.WithSampleRate(8000),
		core.WithBlockSize(256),
		core.WithStepSize(64),
	})
	if err != nil {
		panic(err)
	}

	sig := make([]float64, 1024)
	for i := range sig {
		sig[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / 8000)
	}

	frames, err := a.Feed(sig)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d frames of %d bins, dominant %.1f Hz\n",
		len(frames), a.BinCount(), frames[len(frames)-1].DominantFrequency())

	// Output:
	// 16 frames of 128 bins, dominant 1000.0 Hz
}
