// Package qr renders the quiz link as a PNG QR code.
package qr

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels
const DefaultSize = 512

// Options control how the code is drawn
type Options struct {
	Size       int
	Foreground color.Color
	Background color.Color
}

// BrandOptions is the palette used on the printed poster: slate-900 at 80% on white
func BrandOptions() Options {
	return Options{
		Size:       DefaultSize,
		Foreground: color.NRGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xcc},
		Background: color.White,
	}
}

// Encode returns content as a PNG QR code
func Encode(content string, opts Options) ([]byte, error) {
	code, err := newCode(content, opts)
	if err != nil {
		return nil, err
	}

	png, err := code.PNG(size(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// WriteFile encodes content and writes the PNG to path, creating parent directories
func WriteFile(content, path string, opts Options) error {
	code, err := newCode(content, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := code.WriteFile(size(opts), path); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return nil
}

func newCode(content string, opts Options) (*qrcode.QRCode, error) {
	if content == "" {
		return nil, errors.New("QR content is empty")
	}

	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	if opts.Foreground != nil {
		code.ForegroundColor = opts.Foreground
	}
	if opts.Background != nil {
		code.BackgroundColor = opts.Background
	}
	return code, nil
}

func size(opts Options) int {
	if opts.Size <= 0 {
		return DefaultSize
	}
	return opts.Size
}
