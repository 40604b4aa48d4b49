package analyzer

import (
	"image"
	"image/color"
	"image/draw"
)

// toGrayscale converts an image to grayscale, rebased so that Pix starts
// at the top-left pixel.
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	if g, ok := img.(*image.Gray); ok && bounds.Min == (image.Point{}) {
		return g
	}

	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// toRGB packs an image into row-major RGB bytes
func toRGB(img image.Image) []byte {
	bounds := img.Bounds()
	out := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}
