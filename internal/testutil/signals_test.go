package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
	}
}

func TestQuantizedAmplitudes(t *testing.T) {
	rows := QuantizedAmplitudes(7, 10, 3, 4)
	if len(rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(rows))
	}
	for ti, row := range rows {
		if len(row) != 3 {
			t.Fatalf("row %d len = %d, want 3", ti, len(row))
		}
		for _, v := range row {
			if v < 0 || v > 3 || v != math.Trunc(v) {
				t.Fatalf("row %d: unexpected level %v", ti, v)
			}
		}
	}
}
