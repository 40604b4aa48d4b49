package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Render writes r to w as text, yaml or json
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case "text", "":
		return WriteText(w, r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

// FormatForPath infers the report format from a file extension
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "text"
	}
}

// WriteReport writes r to path in the format implied by its extension
func WriteReport(r *Report, path string) error {
	var buf bytes.Buffer
	if err := Render(&buf, r, FormatForPath(path)); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ReadReport reads a YAML or JSON report back
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	switch FormatForPath(path) {
	case "json":
		err = json.Unmarshal(data, &r)
	case "yaml":
		err = yaml.Unmarshal(data, &r)
	default:
		return nil, fmt.Errorf("cannot read text report %s", path)
	}
	if err != nil {
		return nil, err
	}

	return &r, nil
}
