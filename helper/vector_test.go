package helper

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"unit apart", []float64{0, 0}, []float64{1, 0}, 1},
		{"3-4-5 triangle", []float64{0, 0}, []float64{3, 4}, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Distance(tc.a, tc.b); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Distance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"perfect match", 0, 1},
		{"good match", 0.1, 0.9},
		{"verification boundary", 0.6, 0.4},
		{"poor match goes negative", 1.3, -0.3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Confidence(tc.distance); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Confidence(%v) = %v, want %v", tc.distance, got, tc.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{0.8, 0.9, 1.0}); math.Abs(got-0.9) > 1e-12 {
		t.Errorf("Mean = %v, want 0.9", got)
	}
}
