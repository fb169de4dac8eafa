// Package barcode renders QR label images for catalog items so the warehouse
// can print and stick them onto bins and machines.
package barcode

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// GeneratePNG renders the given code as a QR PNG. Size is in pixels per side;
// zero or negative picks the default.
func GeneratePNG(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("barcode content must not be empty")
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
