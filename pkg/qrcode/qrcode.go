package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRService renders share QR codes for public track pages.
type QRService struct {
	baseURL string // e.g. "https://melodia.app/t/"
}

func NewQRService(baseURL string) *QRService {
	return &QRService{
		baseURL: baseURL,
	}
}

// GenerateShareQR returns a PNG QR code pointing at the public page for the
// given share slug.
func (s *QRService) GenerateShareQR(shareSlug string, size int) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s", s.baseURL, shareSlug)

	png, err := qrcode.Encode(fullURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}

	return png, nil
}
