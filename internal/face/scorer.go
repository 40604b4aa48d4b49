package face

import (
	"errors"
	"fmt"
	"image"

	"github.com/ivlev/faceratio/internal/geometry"
)

// ErrNoFaceDetected is returned when there is no region to score
var ErrNoFaceDetected = errors.New("no face detected")

// Result holds the proportion ratios of one face and their sum
type Result struct {
	EyeNoseRatio   float64 `yaml:"eye_nose_ratio" json:"eye_nose_ratio"`
	NoseMouthRatio float64 `yaml:"nose_mouth_ratio" json:"nose_mouth_ratio"`
	TotalScore     float64 `yaml:"total_score" json:"total_score"`
}

// Scorer turns detected regions into a Result
type Scorer struct {
	Division  Division
	Selection Selection
	Bounds    image.Rectangle // image bounds, used by SelectCentral
}

// NewScorer creates a scorer with float division and first-face selection
func NewScorer() *Scorer {
	return &Scorer{
		Division:  DivisionFloat,
		Selection: SelectFirst,
	}
}

// Evaluation is a scored face together with the geometry behind the score
type Evaluation struct {
	Region    Region
	Landmarks Landmarks
	Result    Result
}

// Score picks one region according to the selection policy and scores it.
// Zero regions yield ErrNoFaceDetected.
func (s *Scorer) Score(regions []Region) (Result, error) {
	ev, err := s.Evaluate(regions)
	return ev.Result, err
}

// Evaluate is Score keeping the selected region and its landmarks. On a
// degenerate region the returned Evaluation still carries both.
func (s *Scorer) Evaluate(regions []Region) (Evaluation, error) {
	r, ok := Select(regions, s.Selection, s.Bounds)
	if !ok {
		return Evaluation{}, ErrNoFaceDetected
	}

	res, lm, err := s.ScoreRegion(r)
	return Evaluation{Region: r, Landmarks: lm, Result: res}, err
}

// ScoreRegion derives landmarks for r and computes the two ratios.
//
// noseWidth is measured between the eyes, same as eyeDistance, so
// EyeNoseRatio is 1 for every non-degenerate box.
func (s *Scorer) ScoreRegion(r Region) (Result, Landmarks, error) {
	lm := DeriveLandmarks(r, s.Division)

	eyeDistance := geometry.Distance(lm.LeftEye, lm.RightEye)
	noseWidth := geometry.Distance(lm.LeftEye, lm.RightEye)
	eyeNoseDistance := geometry.Distance(lm.LeftEye, lm.Nose)
	noseMouthDistance := geometry.Distance(lm.Nose, lm.Mouth)

	eyeNoseRatio, err := geometry.Ratio(eyeDistance, noseWidth)
	if err != nil {
		return Result{}, lm, fmt.Errorf("eye-nose ratio for region %s: %w", r, err)
	}

	noseMouthRatio, err := geometry.Ratio(eyeNoseDistance, noseMouthDistance)
	if err != nil {
		return Result{}, lm, fmt.Errorf("nose-mouth ratio for region %s: %w", r, err)
	}

	return Result{
		EyeNoseRatio:   eyeNoseRatio,
		NoseMouthRatio: noseMouthRatio,
		TotalScore:     eyeNoseRatio + noseMouthRatio,
	}, lm, nil
}
