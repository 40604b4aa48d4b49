package analyzer

import (
	"fmt"

	"github.com/ivlev/faceratio/internal/config"
)

// NewDetector creates a detector based on the configured variant
func NewDetector(cfg config.Detector) (Detector, error) {
	var (
		det Detector
		err error
	)

	switch cfg.Variant {
	case "pigo", "":
		var d *PigoDetector
		if d, err = NewPigoDetector(cfg); err == nil {
			det = d
		}
	case "haar":
		det, err = newHaar(cfg)
	case "socket":
		det = NewSocketDetector(cfg)
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", cfg.Variant)
	}

	if err != nil {
		return nil, fmt.Errorf("%s detector: %w", cfg.Variant, err)
	}
	return det, nil
}
