package main

import (
	"flag"
	"os"

	"github.com/liamcoop/sentest/internal/logger"
	"github.com/liamcoop/sentest/qr"
)

func main() {
	var url string
	var out string

	flag.StringVar(&url, "url", "", "Quiz URL the code should open (required)")
	flag.StringVar(&out, "out", "public/qr-code.png", "Output PNG path")
	flag.Parse()

	if url == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := qr.WriteFile(url, out, qr.BrandOptions()); err != nil {
		logger.Fatal("Failed to generate QR code", "error", err)
	}

	logger.Info("QR code generated", "path", out, "url", url)
}
