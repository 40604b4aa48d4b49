package analyzer

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/ivlev/faceratio/internal/config"
	"github.com/ivlev/faceratio/internal/face"
	"github.com/ivlev/faceratio/internal/logger"
)

// PigoDetector runs the pure Go pigo cascade
type PigoDetector struct {
	classifier  *pigo.Pigo
	minSize     int
	maxSize     int
	shiftFactor float64
	scaleFactor float64
	iou         float64
	minQuality  float32
}

// NewPigoDetector unpacks the cascade file named in cfg
func NewPigoDetector(cfg config.Detector) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade %s: %w", cfg.CascadePath, err)
	}

	logger.Debug(logger.Fields{
		"cascade":     cfg.CascadePath,
		"min_size":    cfg.MinSize,
		"min_quality": cfg.MinQuality,
	}, "pigo face detector initialized")

	return &PigoDetector{
		classifier:  classifier,
		minSize:     cfg.MinSize,
		maxSize:     cfg.MaxSize,
		shiftFactor: cfg.ShiftFactor,
		scaleFactor: cfg.ScaleFactor,
		iou:         cfg.IoU,
		minQuality:  float32(cfg.MinQuality),
	}, nil
}

func (d *PigoDetector) Name() string {
	return "pigo"
}

// Detect returns regions in the image's own coordinate space
func (d *PigoDetector) Detect(img image.Image) ([]face.Region, error) {
	gray := toGrayscale(img)

	params := pigo.CascadeParams{
		MinSize:     d.minSize,
		MaxSize:     d.maxSize,
		ShiftFactor: d.shiftFactor,
		ScaleFactor: d.scaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   gray.Rect.Dy(),
			Cols:   gray.Rect.Dx(),
			Dim:    gray.Stride,
		},
	}

	// angle 0: upright faces only
	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.iou)

	regions := convertPigoDetections(dets, d.minQuality, img.Bounds().Min)
	logger.Debug(logger.Fields{"raw": len(dets), "kept": len(regions)}, "pigo detection finished")

	return regions, nil
}

// convertPigoDetections turns pigo's centre/diameter output into square
// regions, dropping those under minQuality. Quality is scaled into a 0-1
// confidence.
func convertPigoDetections(dets []pigo.Detection, minQuality float32, origin image.Point) []face.Region {
	var regions []face.Region

	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}

		// Scale is the window side, Row/Col its centre
		half := float64(det.Scale) / 2
		regions = append(regions, face.Region{
			X:          float64(origin.X+det.Col) - half,
			Y:          float64(origin.Y+det.Row) - half,
			Width:      float64(det.Scale),
			Height:     float64(det.Scale),
			Confidence: float64(det.Q) / 100.0,
		})
	}

	return regions
}
