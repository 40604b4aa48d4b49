//go:build !gocv

package analyzer

import (
	"errors"
	"testing"

	"github.com/ivlev/faceratio/internal/config"
)

func TestHaarRequiresBuildTag(t *testing.T) {
	det, err := NewDetector(config.Detector{Variant: "haar"})
	if !errors.Is(err, ErrHaarUnavailable) {
		t.Errorf("error = %v, want ErrHaarUnavailable", err)
	}
	if det != nil {
		t.Errorf("expected nil detector, got %T", det)
	}
}
