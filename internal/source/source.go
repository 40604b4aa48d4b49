package source

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/faceratio/internal/logger"
)

// ErrImageLoad marks any failure to open, read or decode the input
var ErrImageLoad = errors.New("image load failed")

type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a Source by file extension: PDFs go through MuPDF, everything
// else through the registered image decoders.
func Open(path string) (Source, error) {
	var (
		src Source
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		src, err = NewFitzPDFSource(path)
	} else {
		src, err = NewImageSource(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	return src, nil
}

// Load opens path and returns its first page as an image. For PDFs the
// page is rasterized at dpi.
func Load(path string, dpi int) (image.Image, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if src.PageCount() == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrImageLoad, path)
	}

	width, height, err := src.GetPageDimensions(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	logger.Debug(logger.Fields{
		"path":   path,
		"pages":  src.PageCount(),
		"width":  width,
		"height": height,
		"dpi":    dpi,
	}, "rendering first page")

	img, err := src.RenderPage(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s is empty", ErrImageLoad, path)
	}
	return img, nil
}

type FitzPDFSource struct {
	doc *fitz.Document
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// FileLoader loads inputs from the local file system
type FileLoader struct{}

func (FileLoader) Load(path string, dpi int) (image.Image, error) {
	return Load(path, dpi)
}
