package analyzer

import (
	"image"
	"image/color"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	pigo "github.com/esimov/pigo/core"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ivlev/faceratio/internal/config"
	"github.com/ivlev/faceratio/internal/face"
)

func TestDetectorRegistry(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "facefinder")

	tests := []struct {
		name    string
		cfg     config.Detector
		wantErr bool
	}{
		{"pigo missing cascade", config.Detector{Variant: "pigo", CascadePath: missing}, true},
		{"default missing cascade", config.Detector{CascadePath: missing}, true},
		{"socket", config.Detector{Variant: "socket", SocketPath: "/tmp/none.sock", Timeout: time.Second}, false},
		{"invalid", config.Detector{Variant: "dlib"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, err := NewDetector(tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				if detector != nil {
					t.Errorf("Expected nil detector on error, got %T", detector)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}

func TestToGrayscale(t *testing.T) {
	// non-zero origin, as produced by SubImage
	src := image.NewRGBA(image.Rect(10, 20, 14, 23))
	src.Set(10, 20, color.RGBA{255, 255, 255, 255})
	src.Set(13, 22, color.RGBA{0, 0, 0, 255})
	src.Set(11, 21, color.RGBA{255, 0, 0, 255})

	gray := toGrayscale(src)

	if gray.Rect != image.Rect(0, 0, 4, 3) {
		t.Fatalf("gray bounds = %v, want rebased 4x3", gray.Rect)
	}
	if got := gray.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("white pixel = %d, want 255", got)
	}
	if got := gray.GrayAt(3, 2).Y; got != 0 {
		t.Errorf("black pixel = %d, want 0", got)
	}
	if got := gray.GrayAt(1, 1).Y; got == 0 || got == 255 {
		t.Errorf("red pixel = %d, want mid gray", got)
	}
}

func TestToRGB(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{1, 2, 3, 255})
	src.Set(1, 0, color.RGBA{4, 5, 6, 255})

	got := toRGB(src)
	want := []byte{1, 2, 3, 4, 5, 6}
	if string(got) != string(want) {
		t.Errorf("toRGB = %v, want %v", got, want)
	}
}

func TestConvertPigoDetections(t *testing.T) {
	dets := []pigo.Detection{
		{Row: 100, Col: 80, Scale: 60, Q: 12.5},
		{Row: 10, Col: 10, Scale: 20, Q: 2.0}, // below quality threshold
	}

	regions := convertPigoDetections(dets, 5.0, image.Pt(0, 0))
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}

	want := face.Region{X: 50, Y: 70, Width: 60, Height: 60, Confidence: 0.125}
	if regions[0] != want {
		t.Errorf("region = %+v, want %+v", regions[0], want)
	}

	shifted := convertPigoDetections(dets[:1], 5.0, image.Pt(5, 7))
	if shifted[0].X != 55 || shifted[0].Y != 77 {
		t.Errorf("origin not applied: %+v", shifted[0])
	}
}

func TestSocketDetector(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "det.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	gotReq := make(chan InferenceRequest, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		data, err := io.ReadAll(conn)
		if err != nil {
			return
		}
		var req InferenceRequest
		if err := msgpack.Unmarshal(data, &req); err != nil {
			return
		}
		gotReq <- req

		resp, _ := msgpack.Marshal(InferenceResponse{
			Detections: []SocketDetection{
				{X: 4, Y: 2, Width: 10, Height: 12, Confidence: 0.9},
			},
			InferenceMs: 3.5,
		})
		conn.Write(resp)
	}()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	det := NewSocketDetector(config.Detector{SocketPath: sock, Timeout: 2 * time.Second})

	regions, err := det.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	req := <-gotReq
	if req.Width != 16 || req.Height != 16 || len(req.Data) != 16*16*3 {
		t.Errorf("request = %dx%d with %d bytes", req.Width, req.Height, len(req.Data))
	}

	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	want := face.Region{X: 4, Y: 2, Width: 10, Height: 12, Confidence: float64(float32(0.9))}
	if regions[0] != want {
		t.Errorf("region = %+v, want %+v", regions[0], want)
	}
}

func TestSocketDetectorUnavailable(t *testing.T) {
	det := NewSocketDetector(config.Detector{
		SocketPath: filepath.Join(t.TempDir(), "absent.sock"),
		Timeout:    100 * time.Millisecond,
	})

	if _, err := det.Detect(image.NewGray(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("expected error when the service is not listening")
	}
}
