package analyzer

import (
	"image"

	"github.com/ivlev/faceratio/internal/face"
)

// Detector finds face bounding boxes in an image. Implementations convert
// to grayscale themselves when their backend needs it.
type Detector interface {
	Name() string
	Detect(img image.Image) ([]face.Region, error)
}
