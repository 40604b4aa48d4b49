package annotate

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/faceratio/internal/face"
)

func TestDraw(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 200, 200))

	selected := face.Region{X: 50, Y: 50, Width: 100, Height: 90}
	other := face.Region{X: 160, Y: 150, Width: 30, Height: 30}
	res, lm, err := face.NewScorer().ScoreRegion(selected)
	if err != nil {
		t.Fatal(err)
	}

	out := Draw(src, Frame{
		Regions:   []face.Region{selected, other},
		Selected:  &selected,
		Landmarks: &lm,
		Result:    &res,
	})

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}

	// left edge of the selected box
	if got := out.RGBAAt(50, 100); got != selectedColor {
		t.Errorf("selected box edge = %v, want %v", got, selectedColor)
	}
	// left edge of the other box
	if got := out.RGBAAt(160, 170); got != otherColor {
		t.Errorf("other box edge = %v, want %v", got, otherColor)
	}
	// nose landmark
	if got := out.RGBAAt(int(lm.Nose.X), int(lm.Nose.Y)); got != selectedColor {
		t.Errorf("nose dot = %v, want %v", got, selectedColor)
	}
	// interior stays untouched
	if got := out.RGBAAt(100, 120); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("interior pixel = %v, want black", got)
	}
}

func TestDrawClipsOutOfBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 40))
	r := face.Region{X: -20, Y: 30, Width: 100, Height: 100}

	// must not panic
	Draw(src, Frame{Regions: []face.Region{r}, Selected: &r})
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotated", "out.png")
	src := image.NewRGBA(image.Rect(0, 0, 64, 64))

	if err := WriteFile(path, src, Frame{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not png: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("width = %d, want 64", img.Bounds().Dx())
	}
}

func TestLabel(t *testing.T) {
	region := face.Region{X: 10, Y: 10, Height: 50}
	res := face.Result{EyeNoseRatio: 1, NoseMouthRatio: 2.0833, TotalScore: 3.0833}

	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{"no face", Frame{}, "no face detected"},
		{"degenerate", Frame{Regions: []face.Region{region}, Selected: &region}, "degenerate face geometry"},
		{"scored", Frame{Selected: &region, Result: &res}, "eye/nose 1.00  nose/mouth 2.08  total 3.08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := label(tt.frame); got != tt.want {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}
}
