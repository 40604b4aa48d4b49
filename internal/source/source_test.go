package source

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/faceratio/internal/logger"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.png")
	writePNG(t, path, 64, 48)

	img, err := Load(path, 150)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("bounds = %v, want 64x48", img.Bounds())
	}

	src, err := NewImageSource(path)
	if err != nil {
		t.Fatal(err)
	}
	w, h, err := src.GetPageDimensions(0)
	if err != nil || w != 64 || h != 48 {
		t.Errorf("GetPageDimensions = %v, %v, %v", w, h, err)
	}
	if _, err := src.RenderPage(1, 0); err == nil {
		t.Error("RenderPage(1) should fail for a single image")
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.jpg")},
		{"directory", dir},
		{"undecodable", garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, 150)
			if !errors.Is(err, ErrImageLoad) {
				t.Errorf("Load(%s) error = %v, want ErrImageLoad", tt.path, err)
			}
		})
	}
}

func TestLoadLogsPageSize(t *testing.T) {
	var buf bytes.Buffer
	logger.New(logger.Options{Level: "debug", NoColor: true, Output: &buf})

	path := filepath.Join(t.TempDir(), "page.png")
	writePNG(t, path, 64, 48)

	if _, err := Load(path, 150); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "rendering first page") {
		t.Fatalf("page size not logged: %q", out)
	}
	for _, want := range []string{"width:64", "height:48", "pages:1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %q", want, out)
		}
	}
}
