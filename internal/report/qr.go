package report

import (
	"bytes"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// WriteQR encodes the text summary of r as a PNG QR code of size pixels
func WriteQR(r *Report, path string, size int) error {
	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		return err
	}

	if err := qrcode.WriteFile(buf.String(), qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("failed to write qr code: %w", err)
	}
	return nil
}
