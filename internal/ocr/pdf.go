package ocr

import (
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
)

// RenderPDFPage rasterizes the first page of a PDF into a temporary PNG so
// it can be fed to tesseract. The caller removes the returned file when done.
func RenderPDFPage(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return "", fmt.Errorf("failed to render PDF page: %w", err)
	}

	tmp, err := os.CreateTemp("", "receipt_page_*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
