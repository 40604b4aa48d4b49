package engine

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ivlev/faceratio/internal/analyzer"
	"github.com/ivlev/faceratio/internal/annotate"
	"github.com/ivlev/faceratio/internal/config"
	"github.com/ivlev/faceratio/internal/face"
	"github.com/ivlev/faceratio/internal/logger"
	"github.com/ivlev/faceratio/internal/report"
	"github.com/ivlev/faceratio/internal/system"
)

// Loader turns an input path into pixels
type Loader interface {
	Load(path string, dpi int) (image.Image, error)
}

// Project analyzes a single input image
type Project struct {
	Config   *config.Config
	Loader   Loader
	Detector analyzer.Detector
	Scorer   *face.Scorer

	now func() time.Time
}

func NewProject(cfg *config.Config, loader Loader, det analyzer.Detector) (*Project, error) {
	div, err := face.ParseDivision(cfg.Division)
	if err != nil {
		return nil, err
	}
	sel, err := face.ParseSelection(cfg.Selection)
	if err != nil {
		return nil, err
	}

	return &Project{
		Config:   cfg,
		Loader:   loader,
		Detector: det,
		Scorer:   &face.Scorer{Division: div, Selection: sel},
		now:      time.Now,
	}, nil
}

// Run loads the input, detects faces, scores the selected one and writes
// any configured artifacts. The report is returned whenever detection
// ran, including alongside face.ErrNoFaceDetected and degenerate
// geometry errors.
func (p *Project) Run() (*report.Report, error) {
	startTime := p.now()
	fields := logger.Fields{"input": p.Config.InputPath, "detector": p.Detector.Name()}

	img, err := p.Loader.Load(p.Config.InputPath, p.Config.DPI)
	if err != nil {
		return nil, err
	}
	fields["size"] = fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	logger.Debug(fields, "image loaded")

	regions, err := p.Detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	fields["faces"] = len(regions)
	logger.Info(fields, "face detection finished")

	rep, err := report.New(p.Config.InputPath, startTime)
	if err != nil {
		return nil, err
	}
	rep.Detector = p.Detector.Name()
	rep.Division = p.Scorer.Division
	rep.Selection = p.Scorer.Selection
	rep.FacesDetected = len(regions)

	p.Scorer.Bounds = img.Bounds()
	ev, scoreErr := p.Scorer.Evaluate(regions)
	switch {
	case errors.Is(scoreErr, face.ErrNoFaceDetected):
		rep.NoFace = true
		logger.Warn(fields, "no face detected")
	case scoreErr != nil:
		rep.Region = &ev.Region
		rep.Landmarks = &ev.Landmarks
		rep.Error = scoreErr.Error()
		logger.Warn(logger.Fields{"region": ev.Region.String(), "error": scoreErr.Error()}, "face geometry is degenerate")
	default:
		rep.Region = &ev.Region
		rep.Landmarks = &ev.Landmarks
		rep.Result = &ev.Result
		logger.Info(logger.Fields{
			"region":           ev.Region.String(),
			"eye_nose_ratio":   ev.Result.EyeNoseRatio,
			"nose_mouth_ratio": ev.Result.NoseMouthRatio,
			"total_score":      ev.Result.TotalScore,
		}, "face scored")
	}

	if err := p.writeArtifacts(img, regions, rep); err != nil {
		return rep, err
	}

	if p.Config.ShowStats {
		p.logStats(startTime)
	}

	return rep, scoreErr
}

func (p *Project) writeArtifacts(img image.Image, regions []face.Region, rep *report.Report) error {
	if path := p.Config.AnnotatePath; path != "" {
		frame := annotate.Frame{
			Regions:   regions,
			Selected:  rep.Region,
			Landmarks: rep.Landmarks,
			Result:    rep.Result,
		}
		if err := annotate.WriteFile(path, img, frame); err != nil {
			return err
		}
		logger.Info(logger.Fields{"path": path}, "annotated image saved")
	}

	if path := p.Config.ReportPath; path != "" {
		if err := report.WriteReport(rep, path); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info(logger.Fields{"path": path}, "report saved")
	}

	if path := p.Config.QRPath; path != "" {
		if err := report.WriteQR(rep, path, p.Config.QRSize); err != nil {
			return err
		}
		logger.Info(logger.Fields{"path": path}, "qr code saved")
	}

	return nil
}

func (p *Project) logStats(startTime time.Time) {
	s, err := system.ProcessStats(startTime)
	if err != nil {
		logger.Warn(logger.Fields{"error": err.Error()}, "process stats unavailable")
		return
	}

	logger.Info(logger.Fields{
		"elapsed":        s.Elapsed.Round(time.Millisecond).String(),
		"rss_mb":         fmt.Sprintf("%.1f", float64(s.RSSBytes)/(1<<20)),
		"heap_mb":        fmt.Sprintf("%.1f", float64(s.HeapBytes)/(1<<20)),
		"cpu_percent":    fmt.Sprintf("%.1f", s.CPUPercent),
		"system_mem_pct": fmt.Sprintf("%.1f", s.SystemUsedPct),
	}, "process stats")
}
