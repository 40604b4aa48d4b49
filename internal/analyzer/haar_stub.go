//go:build !gocv

package analyzer

import (
	"errors"

	"github.com/ivlev/faceratio/internal/config"
)

// ErrHaarUnavailable is returned when the binary was built without OpenCV
var ErrHaarUnavailable = errors.New("haar detector requires OpenCV: rebuild with -tags gocv")

func newHaar(cfg config.Detector) (Detector, error) {
	return nil, ErrHaarUnavailable
}
