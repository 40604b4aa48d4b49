package face

import (
	"fmt"
	"image"

	"github.com/ivlev/faceratio/internal/geometry"
)

// Selection decides which face is scored when a detector finds several
type Selection string

const (
	SelectFirst     Selection = "first"     // detector order
	SelectLargest   Selection = "largest"   // biggest box area
	SelectCentral   Selection = "central"   // box centre nearest the image centre
	SelectConfident Selection = "confident" // highest detector confidence
)

// ParseSelection maps a config value to a Selection. Empty means first.
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case SelectFirst, "":
		return SelectFirst, nil
	case SelectLargest, SelectCentral, SelectConfident:
		return Selection(s), nil
	default:
		return "", fmt.Errorf("unknown face selection: %s", s)
	}
}

// Select returns the region chosen by policy. The second value is false
// when regions is empty. Ties keep the earlier region.
func Select(regions []Region, policy Selection, bounds image.Rectangle) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}

	var better func(a, b Region) bool
	switch policy {
	case SelectLargest:
		better = func(a, b Region) bool { return a.Area() > b.Area() }
	case SelectConfident:
		better = func(a, b Region) bool { return a.Confidence > b.Confidence }
	case SelectCentral:
		if bounds.Empty() {
			return regions[0], true
		}
		center := geometry.Point{
			X: float64(bounds.Min.X) + float64(bounds.Dx())/2,
			Y: float64(bounds.Min.Y) + float64(bounds.Dy())/2,
		}
		better = func(a, b Region) bool {
			return geometry.Distance(a.Center(), center) < geometry.Distance(b.Center(), center)
		}
	default:
		return regions[0], true
	}

	best := regions[0]
	for _, r := range regions[1:] {
		if better(r, best) {
			best = r
		}
	}
	return best, true
}
