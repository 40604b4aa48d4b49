package face

import (
	"fmt"
	"image"
	"math"

	"github.com/ivlev/faceratio/internal/geometry"
)

// Region is an axis-aligned face bounding box in pixel space
type Region struct {
	X          float64 `yaml:"x" json:"x"`
	Y          float64 `yaml:"y" json:"y"`
	Width      float64 `yaml:"width" json:"width"`
	Height     float64 `yaml:"height" json:"height"`
	Confidence float64 `yaml:"confidence" json:"confidence"` // 0 when the detector reports none
}

// RegionFromRect converts an integer rectangle to a Region
func RegionFromRect(r image.Rectangle, confidence float64) Region {
	return Region{
		X:          float64(r.Min.X),
		Y:          float64(r.Min.Y),
		Width:      float64(r.Dx()),
		Height:     float64(r.Dy()),
		Confidence: confidence,
	}
}

// Rect returns the region rounded to an integer rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

func (r Region) Area() float64 {
	return r.Width * r.Height
}

func (r Region) Center() geometry.Point {
	return geometry.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Region) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", r.X, r.Y, r.Width, r.Height)
}

// Division controls how landmark offsets are computed from box dimensions
type Division string

const (
	// DivisionFloat uses exact floating-point fractions
	DivisionFloat Division = "float"
	// DivisionFloor floors every offset, as integer division of whole-pixel boxes does
	DivisionFloor Division = "floor"
)

// ParseDivision maps a config value to a Division. Empty means float.
func ParseDivision(s string) (Division, error) {
	switch Division(s) {
	case DivisionFloat, "":
		return DivisionFloat, nil
	case DivisionFloor:
		return DivisionFloor, nil
	default:
		return "", fmt.Errorf("unknown landmark division: %s", s)
	}
}

// fraction returns num/den of size, floored when d is DivisionFloor
func (d Division) fraction(size float64, num, den int) float64 {
	v := size * float64(num) / float64(den)
	if d == DivisionFloor {
		return math.Floor(v)
	}
	return v
}

// Landmarks are face feature positions interpolated from a bounding box.
// They are not detected, only placed at fixed proportions of the box.
type Landmarks struct {
	LeftEye  geometry.Point `yaml:"left_eye" json:"left_eye"`
	RightEye geometry.Point `yaml:"right_eye" json:"right_eye"`
	Nose     geometry.Point `yaml:"nose" json:"nose"`
	Mouth    geometry.Point `yaml:"mouth" json:"mouth"`
}

// DeriveLandmarks places eyes at a third of the box height, the nose at
// two thirds and the mouth at seven eighths.
func DeriveLandmarks(r Region, d Division) Landmarks {
	eyeY := r.Y + d.fraction(r.Height, 1, 3)
	centerX := r.X + d.fraction(r.Width, 1, 2)

	return Landmarks{
		LeftEye:  geometry.Point{X: r.X + d.fraction(r.Width, 1, 4), Y: eyeY},
		RightEye: geometry.Point{X: r.X + d.fraction(r.Width, 3, 4), Y: eyeY},
		Nose:     geometry.Point{X: centerX, Y: r.Y + d.fraction(r.Height, 2, 3)},
		Mouth:    geometry.Point{X: centerX, Y: r.Y + d.fraction(r.Height, 7, 8)},
	}
}

// Points returns the landmarks in a fixed order: left eye, right eye, nose, mouth
func (l Landmarks) Points() []geometry.Point {
	return []geometry.Point{l.LeftEye, l.RightEye, l.Nose, l.Mouth}
}
