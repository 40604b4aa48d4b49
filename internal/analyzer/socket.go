package analyzer

import (
	"fmt"
	"image"
	"io"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ivlev/faceratio/internal/config"
	"github.com/ivlev/faceratio/internal/face"
	"github.com/ivlev/faceratio/internal/logger"
)

// SocketDetector delegates detection to an out-of-process model (e.g. a
// YuNet service) listening on a unix socket. One request per connection.
type SocketDetector struct {
	socketPath string
	timeout    time.Duration
}

// InferenceRequest is sent to the detection service
type InferenceRequest struct {
	Height int    `msgpack:"h"`
	Width  int    `msgpack:"w"`
	Data   []byte `msgpack:"d"` // RGB uint8, row-major, shape (H, W, 3)
}

// SocketDetection is one face reported by the service
type SocketDetection struct {
	X          float32 `msgpack:"x"`
	Y          float32 `msgpack:"y"`
	Width      float32 `msgpack:"w"`
	Height     float32 `msgpack:"h"`
	Confidence float32 `msgpack:"c"`
}

// InferenceResponse is received from the detection service
type InferenceResponse struct {
	Detections  []SocketDetection `msgpack:"detections"`
	InferenceMs float32           `msgpack:"inference_ms"`
	Error       string            `msgpack:"error,omitempty"`
}

func NewSocketDetector(cfg config.Detector) *SocketDetector {
	return &SocketDetector{
		socketPath: cfg.SocketPath,
		timeout:    cfg.Timeout,
	}
}

func (d *SocketDetector) Name() string {
	return "socket"
}

// Detect sends the image as raw RGB and returns the service's detections
// translated into the image's coordinate space.
func (d *SocketDetector) Detect(img image.Image) ([]face.Region, error) {
	conn, err := net.DialTimeout("unix", d.socketPath, d.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to detection service: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(d.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	bounds := img.Bounds()
	req := InferenceRequest{
		Height: bounds.Dy(),
		Width:  bounds.Dx(),
		Data:   toRGB(img),
	}

	reqData, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	// signal end of request so the service can reply
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return nil, fmt.Errorf("failed to close request stream: %w", err)
		}
	}

	respData, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp InferenceResponse
	if err := msgpack.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("detection service: %s", resp.Error)
	}

	regions := make([]face.Region, 0, len(resp.Detections))
	for _, det := range resp.Detections {
		regions = append(regions, face.Region{
			X:          float64(bounds.Min.X) + float64(det.X),
			Y:          float64(bounds.Min.Y) + float64(det.Y),
			Width:      float64(det.Width),
			Height:     float64(det.Height),
			Confidence: float64(det.Confidence),
		})
	}

	logger.Debug(logger.Fields{
		"faces":        len(regions),
		"inference_ms": resp.InferenceMs,
	}, "socket detection finished")

	return regions, nil
}
