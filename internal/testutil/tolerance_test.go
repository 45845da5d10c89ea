package testutil

import (
	"math"
	"testing"
)

func TestRequireSliceNearlyEqualAccepts(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2.0000001, 3}, []float64{1, 2, 3}, 1e-6)
}

func TestRequireFiniteAccepts(t *testing.T) {
	RequireFinite(t, []float64{0, -1, math.MaxFloat64, math.SmallestNonzeroFloat64})
}
