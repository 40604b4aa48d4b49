//go:build gocv

package analyzer

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ivlev/faceratio/internal/config"
	"github.com/ivlev/faceratio/internal/face"
	"github.com/ivlev/faceratio/internal/logger"
)

// HaarDetector runs an OpenCV Haar cascade, by default the stock
// haarcascade_frontalface_default.xml.
type HaarDetector struct {
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	minSize      image.Point
}

// NewHaarDetector loads the cascade XML named in cfg. Call Close when done.
func NewHaarDetector(cfg config.Detector) (*HaarDetector, error) {
	path := cfg.CascadePath
	if path == "" || path == config.Default().Detector.CascadePath {
		path = "haarcascade_frontalface_default.xml"
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load haar cascade from %s", path)
	}

	logger.Debug(logger.Fields{"cascade": path}, "haar face detector initialized")

	return &HaarDetector{
		classifier:   classifier,
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbor,
		minSize:      image.Pt(cfg.MinSize, cfg.MinSize),
	}, nil
}

func newHaar(cfg config.Detector) (Detector, error) {
	d, err := NewHaarDetector(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *HaarDetector) Name() string {
	return "haar"
}

func (d *HaarDetector) Detect(img image.Image) ([]face.Region, error) {
	gray := toGrayscale(img)

	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer mat.Close()

	rects := d.classifier.DetectMultiScaleWithParams(
		mat,
		d.scaleFactor,
		d.minNeighbors,
		0,             // flags
		d.minSize,     // min size
		image.Point{}, // no max size
	)

	origin := img.Bounds().Min
	regions := make([]face.Region, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, face.RegionFromRect(r.Add(origin), 0))
	}

	logger.Debug(logger.Fields{"faces": len(regions)}, "haar detection finished")
	return regions, nil
}

func (d *HaarDetector) Close() error {
	return d.classifier.Close()
}
