package qrcode

import (
	"fmt"
	"strings"

	"libris/config"
	"libris/internal/domain/service"
	"libris/internal/errors"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size    int
	level   qrcode.RecoveryLevel
	baseURL string
}

// NewQRCodeService creates a QR code service for book share links.
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size := 256
	levelName := "M"
	if cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		if cfg.QRCode.ErrorCorrectionLevel != "" {
			levelName = cfg.QRCode.ErrorCorrectionLevel
		}
	}

	var level qrcode.RecoveryLevel
	switch levelName {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:    size,
		level:   level,
		baseURL: strings.TrimRight(cfg.Web.BaseURL, "/"),
	}
}

func (s *qrcodeService) shareURL(bookID int64) string {
	return fmt.Sprintf("%s/books/%d", s.baseURL, bookID)
}

// BookSharePNG renders a PNG QR code pointing at the public book page.
func (s *qrcodeService) BookSharePNG(bookID int64) ([]byte, error) {
	png, err := qrcode.Encode(s.shareURL(bookID), s.level, s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate QR code")
	}

	return png, nil
}

// BookShareTerminal renders the QR code as a terminal-printable string.
func (s *qrcodeService) BookShareTerminal(bookID int64) (string, error) {
	code, err := qrcode.New(s.shareURL(bookID), s.level)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate QR code")
	}

	return code.ToSmallString(false), nil
}
