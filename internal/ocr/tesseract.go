package ocr

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Recognizer runs the tesseract binary over an image and returns the
// recognized text block.
type Recognizer struct {
	runner   Runner
	binary   string
	language string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRecognizer creates a Recognizer using the given tesseract binary and
// language model
func NewRecognizer(runner Runner, binary, language string, timeout time.Duration, logger *zap.Logger) *Recognizer {
	return &Recognizer{
		runner:   runner,
		binary:   binary,
		language: language,
		timeout:  timeout,
		logger:   logger,
	}
}

// Recognize OCRs a single raster image. The call is multi-second for typical
// receipt photos; the configured timeout bounds it.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.binary, imagePath, "stdout", "-l", r.language)
	if err != nil {
		r.logger.Error("OCR failed",
			zap.String("image", imagePath),
			zap.String("stderr", truncate(string(errb), 2048)),
			zap.Error(err))
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
