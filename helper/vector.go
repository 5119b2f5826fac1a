package helper

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distance is the Euclidean distance between two face signatures of equal
// length. Smaller means more similar.
func Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Confidence converts a match distance to the score shown to operators.
// Not clamped: a distance above 1.0 yields a negative confidence.
func Confidence(distance float64) float64 {
	return 1 - distance
}

// Mean of a sample, 0 for an empty one. Used for the dashboard's average
// confidence figure.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
