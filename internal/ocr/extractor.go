package ocr

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	amountPattern = regexp.MustCompile(`\$?\d+[,.]?\d*\.?\d{2}`)
	datePattern   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	stripPattern  = regexp.MustCompile(`[$,]`)
)

// ExtractedFields is the best-effort guess parsed out of receipt text. Every
// field may be nil; nothing is validated.
type ExtractedFields struct {
	PossibleVendor *string `json:"possibleVendor"`
	PossibleAmount *string `json:"possibleAmount"`
	PossibleDate   *string `json:"possibleDate"`
}

// Extraction is the OCR result returned to the caller for expense form
// pre-fill.
type Extraction struct {
	RawText       string          `json:"rawText"`
	ExtractedData ExtractedFields `json:"extractedData"`
}

// Extractor OCRs a receipt image and heuristically pulls vendor, amount and
// date out of the recognized text.
type Extractor struct {
	recognizer *Recognizer
	logger     *zap.Logger
}

// NewExtractor creates an Extractor backed by the given recognizer
func NewExtractor(recognizer *Recognizer, logger *zap.Logger) *Extractor {
	return &Extractor{
		recognizer: recognizer,
		logger:     logger,
	}
}

// Extract runs OCR over the uploaded file and parses the text. PDFs are
// rasterized to their first page before recognition.
func (e *Extractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	imagePath := path
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		rendered, err := RenderPDFPage(path)
		if err != nil {
			return nil, err
		}
		defer os.Remove(rendered)
		imagePath = rendered
	}

	text, err := e.recognizer.Recognize(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	result := ParseReceiptText(text)
	e.logger.Info("Receipt text extracted",
		zap.Bool("vendor_found", result.ExtractedData.PossibleVendor != nil),
		zap.Bool("amount_found", result.ExtractedData.PossibleAmount != nil),
		zap.Bool("date_found", result.ExtractedData.PossibleDate != nil))
	return result, nil
}

// ParseReceiptText scans the recognized text line by line. For each of the
// three fields the first matching line wins and the search for that field
// stops; the field stays nil when no line matches. A line counts as a vendor
// candidate only when it matches neither the amount nor the date pattern and
// its raw length is strictly between 3 and 50 characters.
func ParseReceiptText(text string) *Extraction {
	result := &Extraction{RawText: text}
	fields := &result.ExtractedData

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		amountMatch := amountPattern.FindString(line)
		dateMatch := datePattern.FindString(line)

		if fields.PossibleAmount == nil && amountMatch != "" {
			amount := stripPattern.ReplaceAllString(amountMatch, "")
			fields.PossibleAmount = &amount
		}
		if fields.PossibleDate == nil && dateMatch != "" {
			date := dateMatch
			fields.PossibleDate = &date
		}
		if fields.PossibleVendor == nil && len(line) > 3 && len(line) < 50 &&
			amountMatch == "" && dateMatch == "" {
			vendor := strings.TrimSpace(line)
			fields.PossibleVendor = &vendor
		}
	}
	return result
}
