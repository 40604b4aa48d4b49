package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateGeometry is returned when a ratio would divide by zero,
// which happens when two landmarks coincide.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Point is a position in image pixel space
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Distance returns the Euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// Ratio returns the larger of two magnitudes divided by the smaller one.
// The result is always >= 1 for positive input.
func Ratio(a, b float64) (float64, error) {
	if math.IsNaN(a) || math.IsNaN(b) || a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: ratio of %v and %v", ErrDegenerateGeometry, a, b)
	}

	larger, smaller := math.Max(a, b), math.Min(a, b)
	if smaller == 0 {
		return 0, fmt.Errorf("%w: zero-length feature (%v / %v)", ErrDegenerateGeometry, larger, smaller)
	}

	return larger / smaller, nil
}
