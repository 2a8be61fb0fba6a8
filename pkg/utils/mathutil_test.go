package utils

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestClampAndLerp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
	if got := Lerp(2, 4, 0.25); got != 2.5 {
		t.Errorf("Lerp = %v, want 2.5", got)
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"zero", 1, 1, 0},
		{"small positive", 0, 0.5, 0.5},
		{"wraps forward", 3, -3, 2*math.Pi - 6},
		{"wraps backward", -3, 3, 6 - 2*math.Pi},
		{"half turn", 0, math.Pi, math.Pi},
		{"minus half turn maps to plus", 0, -math.Pi, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AngleDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRandDeterministicAndInRange(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 1000; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("same seed diverged at %d", i)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("Float64 out of range: %v", x)
		}
	}
	if NewRand(0).NextU64() == NewRand(1).NextU64() {
		t.Errorf("seeds 0 and 1 should give different streams")
	}
	r := NewRand(3)
	for i := 0; i < 100; i++ {
		if v := r.RangeF(10, 20); v < 10 || v >= 20 {
			t.Fatalf("RangeF out of range: %v", v)
		}
	}
	if r.RangeF(5, 5) != 5 {
		t.Errorf("empty range should return min")
	}
}

func TestRandMatchesPCG(t *testing.T) {
	ref := rand.New(rand.NewPCG(99, 99^pcgStream))
	r := NewRand(99)
	for i := 0; i < 16; i++ {
		if got, want := r.NextU64(), ref.Uint64(); got != want {
			t.Fatalf("draw %d: got %d, want %d", i, got, want)
		}
	}
}
