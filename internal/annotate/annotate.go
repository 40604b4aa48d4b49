package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/faceratio/internal/face"
	"github.com/ivlev/faceratio/internal/geometry"
)

var (
	selectedColor = color.RGBA{0, 255, 0, 255}   // scored face
	otherColor    = color.RGBA{255, 255, 0, 255} // detected, not scored
	labelColor    = color.RGBA{0, 0, 0, 200}
	textColor     = color.RGBA{255, 255, 255, 255}
)

// Frame is what gets drawn over the source image
type Frame struct {
	Regions   []face.Region   // every detection
	Selected  *face.Region    // scored region, nil when no face
	Landmarks *face.Landmarks // landmarks of Selected
	Result    *face.Result    // nil when Selected could not be scored
}

// Draw returns a copy of img with boxes, landmarks and a score label
func Draw(img image.Image, f Frame) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	for _, r := range f.Regions {
		if f.Selected != nil && r == *f.Selected {
			continue
		}
		drawRect(rgba, r.Rect(), otherColor, 2)
	}

	if f.Selected != nil {
		drawRect(rgba, f.Selected.Rect(), selectedColor, 3)
	}
	if f.Landmarks != nil {
		for _, p := range f.Landmarks.Points() {
			drawDot(rgba, p, selectedColor, 3)
		}
	}

	drawLabel(rgba, label(f))
	return rgba
}

func label(f Frame) string {
	switch {
	case f.Selected == nil:
		return "no face detected"
	case f.Result == nil:
		return "degenerate face geometry"
	}
	return fmt.Sprintf("eye/nose %.2f  nose/mouth %.2f  total %.2f",
		f.Result.EyeNoseRatio, f.Result.NoseMouthRatio, f.Result.TotalScore)
}

// WriteFile draws f over img and saves it as PNG or JPEG depending on
// the path extension.
func WriteFile(path string, img image.Image, f Frame) error {
	out := Draw(img, f)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create annotation directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create annotated file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, out, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(file, out)
	}
	if err != nil {
		return fmt.Errorf("failed to encode annotated image: %w", err)
	}

	return file.Close()
}

// drawRect draws a rectangle outline of the given thickness, clipped to img
func drawRect(img *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	b := img.Bounds()
	for t := 0; t < thickness; t++ {
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y+t, r.Max.X, r.Min.Y+t+1), // top
			image.Rect(r.Min.X, r.Max.Y-t-1, r.Max.X, r.Max.Y-t), // bottom
			image.Rect(r.Min.X+t, r.Min.Y, r.Min.X+t+1, r.Max.Y), // left
			image.Rect(r.Max.X-t-1, r.Min.Y, r.Max.X-t, r.Max.Y), // right
		}
		for _, e := range edges {
			draw.Draw(img, e.Intersect(b), &image.Uniform{col}, image.Point{}, draw.Src)
		}
	}
}

// drawDot draws a filled circle of radius around p
func drawDot(img *image.RGBA, p geometry.Point, col color.RGBA, radius int) {
	cx, cy := int(p.X), int(p.Y)
	b := img.Bounds()

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			pt := image.Pt(cx+dx, cy+dy)
			if pt.In(b) {
				img.SetRGBA(pt.X, pt.Y, col)
			}
		}
	}
}

// drawLabel writes text on a dark bar along the top edge
func drawLabel(img *image.RGBA, text string) {
	fnt := basicfont.Face7x13
	b := img.Bounds()

	bar := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+fnt.Height+6).Intersect(b)
	draw.Draw(img, bar, &image.Uniform{labelColor}, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: fnt,
		Dot:  fixed.P(b.Min.X+4, b.Min.Y+fnt.Ascent+3),
	}
	d.DrawString(text)
}
