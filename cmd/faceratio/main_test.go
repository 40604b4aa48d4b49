package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/faceratio/internal/logger"
)

var logs bytes.Buffer

func TestMain(m *testing.M) {
	// run's own logger.New is a no-op after this
	logger.New(logger.Options{Level: "debug", NoColor: true, Output: &logs})
	os.Exit(m.Run())
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "faceratio ") {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-env", "",
		"-input", filepath.Join(dir, "missing.jpg"),
		"-detector", "socket",
		"-socket", filepath.Join(dir, "det.sock"),
	}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should reach stdout on load failure, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "trace") {
		t.Errorf("stderr should carry a trace id: %s", stderr.String())
	}
	if !strings.Contains(logs.String(), "main.go:") {
		t.Errorf("log entries should point at the CLI call site: %s", logs.String())
	}
}

func TestRunInvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-env", "", "-input", "face.jpg", "-division", "round"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Division") {
		t.Errorf("stderr should name the invalid field: %s", stderr.String())
	}
	if !strings.Contains(logs.String(), "configuration rejected") {
		t.Errorf("rejected configuration not logged: %s", logs.String())
	}
}
