package qrcode

import (
	"bytes"
	"testing"

	"libris/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSharePNG(t *testing.T) {
	cfg := &config.Config{}
	cfg.Web.BaseURL = "https://libris.example/"
	cfg.QRCode = &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "H"}

	svc := NewQRCodeService(cfg)

	png, err := svc.BookSharePNG(42)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "output must be a PNG")
}

func TestBookShareTerminal(t *testing.T) {
	cfg := &config.Config{}
	cfg.Web.BaseURL = "https://libris.example"

	svc := NewQRCodeService(cfg)

	art, err := svc.BookShareTerminal(42)
	require.NoError(t, err)
	assert.NotEmpty(t, art)
}
