package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
)

// InvoiceExporter renders an invoice and its lines into an XLSX workbook
type InvoiceExporter struct {
	invoices *repository.InvoiceRepository
	partners *repository.PartnerRepository
	products *repository.ProductRepository
	logger   *zap.Logger
}

// NewInvoiceExporter creates a new invoice exporter
func NewInvoiceExporter(invoices *repository.InvoiceRepository, partners *repository.PartnerRepository,
	products *repository.ProductRepository, logger *zap.Logger) *InvoiceExporter {
	return &InvoiceExporter{
		invoices: invoices,
		partners: partners,
		products: products,
		logger:   logger,
	}
}

var lineHeaders = []string{"Product", "Quantity", "Unit Price", "Amount"}

// ExportXLSX builds the workbook for one invoice and returns its bytes, or
// nil bytes when the invoice does not exist.
func (e *InvoiceExporter) ExportXLSX(invoiceID string) ([]byte, error) {
	invoice, err := e.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, nil
	}
	lines, err := e.invoices.ListLines(invoiceID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	e.setCell(f, sheet, "A1", "Invoice Number")
	e.setCell(f, sheet, "B1", invoice.Number)
	e.setCell(f, sheet, "A2", "Type")
	e.setCell(f, sheet, "B2", invoice.Type)
	e.setCell(f, sheet, "A3", "Status")
	e.setCell(f, sheet, "B3", invoice.Status)
	e.setCell(f, sheet, "A4", "Partner")
	e.setCell(f, sheet, "B4", e.partnerName(invoice))
	e.setCell(f, sheet, "A5", "Date")
	e.setCell(f, sheet, "B5", invoice.CreatedAt.Format("2006-01-02"))

	const headerRow = 7
	for i, h := range lineHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		e.setCell(f, sheet, cell, h)
	}

	row := headerRow + 1
	for _, line := range lines {
		e.setCell(f, sheet, fmt.Sprintf("A%d", row), e.productName(line))
		e.setCell(f, sheet, fmt.Sprintf("B%d", row), line.Quantity)
		e.setCell(f, sheet, fmt.Sprintf("C%d", row), line.UnitPrice)
		e.setCell(f, sheet, fmt.Sprintf("D%d", row), line.Amount)
		row++
	}

	row++
	e.setCell(f, sheet, fmt.Sprintf("C%d", row), "Untaxed")
	e.setCell(f, sheet, fmt.Sprintf("D%d", row), invoice.UntaxedAmount)
	row++
	e.setCell(f, sheet, fmt.Sprintf("C%d", row), "Total")
	e.setCell(f, sheet, fmt.Sprintf("D%d", row), invoice.TotalAmount)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Invoice exported",
		zap.String("invoice_id", invoiceID),
		zap.Int("line_count", len(lines)))
	return buf.Bytes(), nil
}

func (e *InvoiceExporter) partnerName(invoice *models.Invoice) string {
	if invoice.PartnerID == nil {
		return ""
	}
	partner, err := e.partners.GetByID(*invoice.PartnerID)
	if err != nil || partner == nil {
		return ""
	}
	return partner.Name
}

func (e *InvoiceExporter) productName(line models.InvoiceLine) string {
	if line.ProductID == nil {
		return ""
	}
	product, err := e.products.GetByID(*line.ProductID)
	if err != nil || product == nil {
		return ""
	}
	return product.Name
}

func (e *InvoiceExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
