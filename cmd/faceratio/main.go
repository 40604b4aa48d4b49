package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ivlev/faceratio/internal/analyzer"
	"github.com/ivlev/faceratio/internal/config"
	"github.com/ivlev/faceratio/internal/engine"
	"github.com/ivlev/faceratio/internal/face"
	"github.com/ivlev/faceratio/internal/logger"
	"github.com/ivlev/faceratio/internal/report"
	"github.com/ivlev/faceratio/internal/source"
	"github.com/ivlev/faceratio/internal/system"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Default()
	cfg.BuildVersion = version

	fs := flag.NewFlagSet("faceratio", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPtr := fs.String("config", "", "YAML config file")
	envPtr := fs.String("env", ".env", "dotenv file with FACERATIO_* overrides")
	inputPtr := fs.String("input", "", "Image or PDF to analyze (default: newest image in input/)")
	formatPtr := fs.String("format", cfg.Format, "Output format: text, yaml, json")
	divisionPtr := fs.String("division", cfg.Division, "Landmark offsets: float or floor (integer pixel)")
	selectionPtr := fs.String("selection", cfg.Selection, "Face to score when several are found: first, largest, central, confident")
	detectorPtr := fs.String("detector", cfg.Detector.Variant, "Face detector: pigo, haar (needs -tags gocv), socket")
	cascadePtr := fs.String("cascade", cfg.Detector.CascadePath, "Cascade file for pigo or haar")
	socketPtr := fs.String("socket", "", "Unix socket of the external detection service")
	minSizePtr := fs.Int("min-size", cfg.Detector.MinSize, "Minimum face size in pixels")
	dpiPtr := fs.Int("dpi", cfg.DPI, "DPI used to rasterize PDF input")
	reportPtr := fs.String("report", "", "Also save the report to this .yaml or .json file")
	annotatePtr := fs.String("annotate", "", "Save a copy of the image with box and landmarks drawn")
	qrPtr := fs.String("qr", "", "Save the text report as a QR code PNG")
	statsPtr := fs.Bool("stats", false, "Log process resource usage after the run")
	logLevelPtr := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	logFilePtr := fs.String("log-file", "", "Also write logs to this rotating file")
	versionPtr := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionPtr {
		fmt.Fprintf(stdout, "faceratio %s\n", version)
		return 0
	}

	if *configPtr != "" {
		if err := config.LoadFile(cfg, *configPtr); err != nil {
			fmt.Fprintf(stderr, "[-] %v\n", err)
			return 1
		}
	}
	if err := config.LoadEnv(cfg, *envPtr); err != nil {
		fmt.Fprintf(stderr, "[-] %v\n", err)
		return 1
	}

	// explicit flags win over file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "format":
			cfg.Format = *formatPtr
		case "division":
			cfg.Division = *divisionPtr
		case "selection":
			cfg.Selection = *selectionPtr
		case "detector":
			cfg.Detector.Variant = *detectorPtr
		case "cascade":
			cfg.Detector.CascadePath = *cascadePtr
		case "socket":
			cfg.Detector.SocketPath = *socketPtr
		case "min-size":
			cfg.Detector.MinSize = *minSizePtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "report":
			cfg.ReportPath = *reportPtr
		case "annotate":
			cfg.AnnotatePath = *annotatePtr
		case "qr":
			cfg.QRPath = *qrPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "log-level":
			cfg.LogLevel = *logLevelPtr
		case "log-file":
			cfg.LogFile = *logFilePtr
		}
	})

	logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: stderr})

	if cfg.InputPath == "" {
		latest, err := system.FindLatestImage("input", append(source.Extensions, ".pdf"))
		if err != nil {
			fmt.Fprintf(stderr, "[-] No input given and %v. Pass -input or put an image in input/\n", err)
			return 1
		}
		cfg.InputPath = latest
		logger.Info(logger.Fields{"input": latest}, "using newest image")
	}

	if err := cfg.Validate(); err != nil {
		logger.Error(logger.Fields{"error": err.Error()}, "configuration rejected")
		fmt.Fprintf(stderr, "[-] %v\n", err)
		return 1
	}

	det, err := analyzer.NewDetector(cfg.Detector)
	if err != nil {
		traceID := logger.ErrorWithTraceID(logger.Fields{"error": err.Error()}, "failed to initialize detector")
		fmt.Fprintf(stderr, "[-] Detector initialization failed (trace %s): %v\n", traceID, err)
		return 1
	}
	if c, ok := det.(io.Closer); ok {
		defer c.Close()
	}

	project, err := engine.NewProject(cfg, source.FileLoader{}, det)
	if err != nil {
		logger.Error(logger.Fields{"error": err.Error()}, "failed to set up analysis")
		fmt.Fprintf(stderr, "[-] %v\n", err)
		return 1
	}

	start := time.Now()
	rep, err := project.Run()
	if err != nil && !errors.Is(err, face.ErrNoFaceDetected) {
		traceID := logger.ErrorWithTraceID(logger.Fields{
			"input": cfg.InputPath,
			"error": err.Error(),
		}, "analysis failed")
		fmt.Fprintf(stderr, "[-] Analysis failed (trace %s): %v\n", traceID, err)
		return 1
	}

	if err := report.Render(stdout, rep, cfg.Format); err != nil {
		logger.Error(logger.Fields{"format": cfg.Format, "error": err.Error()}, "failed to print report")
		fmt.Fprintf(stderr, "[-] %v\n", err)
		return 1
	}

	logger.Debug(logger.Fields{"elapsed": time.Since(start).String(), "id": rep.ID}, "done")
	return 0
}
