package report

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ivlev/faceratio/internal/face"
)

// Report is the outcome of one analysis
type Report struct {
	ID            string          `yaml:"id" json:"id"`
	Input         string          `yaml:"input" json:"input"`
	Detector      string          `yaml:"detector" json:"detector"`
	Division      face.Division   `yaml:"division" json:"division"`
	Selection     face.Selection  `yaml:"selection" json:"selection"`
	FacesDetected int             `yaml:"faces_detected" json:"faces_detected"`
	NoFace        bool            `yaml:"no_face" json:"no_face"`
	Region        *face.Region    `yaml:"region,omitempty" json:"region,omitempty"`
	Landmarks     *face.Landmarks `yaml:"landmarks,omitempty" json:"landmarks,omitempty"`
	Result        *face.Result    `yaml:"result,omitempty" json:"result,omitempty"`
	Error         string          `yaml:"error,omitempty" json:"error,omitempty"` // why a detected face got no result
	CreatedAt     time.Time       `yaml:"created_at" json:"created_at"`
}

// New creates an empty report stamped with a ULID taken from t
func New(input string, t time.Time) (*Report, error) {
	id, err := newID(t)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report id: %w", err)
	}

	return &Report{
		ID:        id,
		Input:     input,
		CreatedAt: t,
	}, nil
}

func newID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NoFaceMessage is printed instead of scores when nothing was detected
const NoFaceMessage = "No face detected."

// DegenerateMessage is printed when a face was found but could not be scored
const DegenerateMessage = "Face geometry is degenerate, no score computed."

// WriteText prints the human readable summary, two decimals per number
func WriteText(w io.Writer, r *Report) error {
	switch {
	case r.NoFace:
		_, err := fmt.Fprintln(w, NoFaceMessage)
		return err
	case r.Result == nil:
		if r.Error == "" {
			_, err := fmt.Fprintln(w, DegenerateMessage)
			return err
		}
		_, err := fmt.Fprintf(w, "%s (%s)\n", DegenerateMessage, r.Error)
		return err
	}

	_, err := fmt.Fprintf(w,
		"Eye-to-eye distance to nose width ratio: %.2f\n"+
			"Eye-to-nose distance to nose-to-mouth distance ratio: %.2f\n"+
			"Total score: %.2f\n",
		r.Result.EyeNoseRatio,
		r.Result.NoseMouthRatio,
		r.Result.TotalScore,
	)
	return err
}
