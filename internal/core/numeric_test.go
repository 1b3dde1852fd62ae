package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lo       float64
		hi       float64
		expected float64
	}{
		{name: "inside", value: 0.5, lo: -1, hi: 1, expected: 0.5},
		{name: "below", value: -3, lo: -1, hi: 1, expected: -1},
		{name: "above", value: 2, lo: -1, hi: 1, expected: 1},
		{name: "swapped", value: 2, lo: 1, hi: -1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.lo, tt.hi)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampBlockLeavesSourceUntouched(t *testing.T) {
	src := []float64{-2, -0.5, 0, 0.5, 2}
	dst := make([]float64, len(src))
	ClampBlock(dst, src, -1, 1)

	want := []float64{-1, -0.5, 0, 0.5, 1}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
	if src[0] != -2 || src[4] != 2 {
		t.Fatalf("source mutated: %#v", src)
	}
}

func TestClampBlockPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for mismatched lengths")
		}
	}()
	ClampBlock(make([]float64, 2), make([]float64, 3), -1, 1)
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
	if !NearlyEqual(1e9, 1e9+1, 1e-6) {
		t.Fatal("expected relative comparison for large values")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite([]float64{0, 1, -1}) {
		t.Fatal("expected finite slice")
	}
	if IsFinite([]float64{0, math.NaN()}) {
		t.Fatal("expected NaN to be reported")
	}
	if IsFinite([]float64{math.Inf(-1)}) {
		t.Fatal("expected Inf to be reported")
	}
}

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}

	grown := EnsureLen(buf, 16)
	if len(grown) != 16 {
		t.Fatalf("len = %d, want 16", len(grown))
	}
}
