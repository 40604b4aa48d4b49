package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FACERATIO_DETECTOR
const EnvPrefix = "FACERATIO_"

type Config struct {
	InputPath    string   `yaml:"input" validate:"required"`
	Format       string   `yaml:"format" validate:"oneof=text yaml json"`
	Division     string   `yaml:"division" validate:"oneof=float floor"`
	Selection    string   `yaml:"selection" validate:"oneof=first largest central confident"`
	DPI          int      `yaml:"dpi" validate:"gte=36,lte=1200"`
	Detector     Detector `yaml:"detector"`
	ReportPath   string   `yaml:"report"`
	AnnotatePath string   `yaml:"annotate"`
	QRPath       string   `yaml:"qr"`
	QRSize       int      `yaml:"qr_size" validate:"gte=64,lte=2048"`
	ShowStats    bool     `yaml:"stats"`
	LogLevel     string   `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error"`
	LogFile      string   `yaml:"log_file"`
	BuildVersion string   `yaml:"-"`
}

// Detector selects and tunes the face detection backend
type Detector struct {
	Variant     string        `yaml:"variant" validate:"oneof=pigo haar socket"`
	CascadePath string        `yaml:"cascade_path"`
	MinSize     int           `yaml:"min_size" validate:"gte=1"`
	MaxSize     int           `yaml:"max_size" validate:"gtefield=MinSize"`
	ScaleFactor float64       `yaml:"scale_factor" validate:"gt=1"`
	ShiftFactor float64       `yaml:"shift_factor" validate:"gt=0,lte=1"`
	MinNeighbor int           `yaml:"min_neighbors" validate:"gte=0"`
	IoU         float64       `yaml:"iou" validate:"gt=0,lte=1"`
	MinQuality  float64       `yaml:"min_quality" validate:"gte=0"`
	SocketPath  string        `yaml:"socket_path" validate:"required_if=Variant socket"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Default returns the configuration used when nothing is overridden.
// Detector parameters follow the stock frontal face cascade setup:
// scale 1.1, 5 neighbours, 30px minimum face.
func Default() *Config {
	return &Config{
		Format:    "text",
		Division:  "float",
		Selection: "first",
		DPI:       150,
		QRSize:    256,
		LogLevel:  "info",
		Detector: Detector{
			Variant:     "pigo",
			CascadePath: "models/facefinder",
			MinSize:     30,
			MaxSize:     1000,
			ScaleFactor: 1.1,
			ShiftFactor: 0.1,
			MinNeighbor: 5,
			IoU:         0.2,
			MinQuality:  5.0,
			Timeout:     2 * time.Second,
		},
	}
}

// LoadFile merges a YAML file over cfg. Fields absent from the file keep
// their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv reads a dotenv file (if present) and applies FACERATIO_*
// variables over cfg. A missing dotenv file is not an error.
func LoadEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	str("INPUT", &cfg.InputPath)
	str("FORMAT", &cfg.Format)
	str("DIVISION", &cfg.Division)
	str("SELECTION", &cfg.Selection)
	str("REPORT", &cfg.ReportPath)
	str("ANNOTATE", &cfg.AnnotatePath)
	str("QR", &cfg.QRPath)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	str("DETECTOR", &cfg.Detector.Variant)
	str("CASCADE_PATH", &cfg.Detector.CascadePath)
	str("SOCKET_PATH", &cfg.Detector.SocketPath)

	if v, ok := os.LookupEnv(EnvPrefix + "DPI"); ok {
		dpi, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sDPI %q: %w", EnvPrefix, v, err)
		}
		cfg.DPI = dpi
	}
	if v, ok := os.LookupEnv(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT %q: %w", EnvPrefix, v, err)
		}
		cfg.Detector.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "STATS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTATS %q: %w", EnvPrefix, v, err)
		}
		cfg.ShowStats = b
	}

	return nil
}

var validate = validator.New()

// Validate checks the configuration and reports every invalid field at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
