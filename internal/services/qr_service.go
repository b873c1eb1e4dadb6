package services

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

type QRService struct{}

// DataURI renders text as a QR PNG and returns it as a data URI suitable
// for an <img> src.
func (QRService) DataURI(text string, size int) (string, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
