package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// InvoiceRepository handles invoice and invoice line database operations
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// InvoiceFilter narrows invoice listings. Search matches the invoice number.
type InvoiceFilter struct {
	Search    string
	Type      string
	ProjectID string
	PartnerID string
	Status    string
}

const invoiceColumns = `id, number, type, partner_id, project_id, status, untaxed_amount, total_amount, created_at`

func scanInvoice(scanner interface{ Scan(...interface{}) error }) (*models.Invoice, error) {
	var inv models.Invoice
	var partnerID, projectID sql.NullString
	err := scanner.Scan(&inv.ID, &inv.Number, &inv.Type, &partnerID, &projectID, &inv.Status,
		&inv.UntaxedAmount, &inv.TotalAmount, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.PartnerID = stringPtr(partnerID)
	inv.ProjectID = stringPtr(projectID)
	return &inv, nil
}

// Create inserts a new invoice with zeroed amounts
func (r *InvoiceRepository) Create(inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = models.OrderDraft
	}
	inv.UntaxedAmount = "0"
	inv.TotalAmount = "0"
	inv.CreatedAt = time.Now().UTC()

	query := `INSERT INTO invoices (id, number, type, partner_id, project_id, status, untaxed_amount, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, inv.ID, inv.Number, inv.Type, nullString(inv.PartnerID),
		nullString(inv.ProjectID), inv.Status, inv.UntaxedAmount, inv.TotalAmount, inv.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID returns an invoice by id, or nil when not found
func (r *InvoiceRepository) GetByID(id string) (*models.Invoice, error) {
	row := r.db.QueryRow(`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}
	return inv, nil
}

// List returns invoices matching the filter, newest first
func (r *InvoiceRepository) List(filter InvoiceFilter) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var clauses []string
	var args []interface{}

	if filter.Search != "" {
		clauses = append(clauses, `number LIKE ?`)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Type != "" && filter.Type != "all" {
		clauses = append(clauses, `type = ?`)
		args = append(args, filter.Type)
	}
	if filter.ProjectID != "" && filter.ProjectID != "all" {
		clauses = append(clauses, `project_id = ?`)
		args = append(args, filter.ProjectID)
	}
	if filter.PartnerID != "" && filter.PartnerID != "all" {
		clauses = append(clauses, `partner_id = ?`)
		args = append(args, filter.PartnerID)
	}
	if filter.Status != "" && filter.Status != "all" {
		clauses = append(clauses, `status = ?`)
		args = append(args, filter.Status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// Update writes the full invoice row, returning false when it does not exist
func (r *InvoiceRepository) Update(inv *models.Invoice) (bool, error) {
	query := `UPDATE invoices SET number = ?, type = ?, partner_id = ?, project_id = ?, status = ?,
		untaxed_amount = ?, total_amount = ? WHERE id = ?`
	result, err := r.db.Exec(query, inv.Number, inv.Type, nullString(inv.PartnerID),
		nullString(inv.ProjectID), inv.Status, inv.UntaxedAmount, inv.TotalAmount, inv.ID)
	if err != nil {
		r.logger.Error("Failed to update invoice", zap.String("invoice_id", inv.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update invoice: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes an invoice and its lines, returning false when it does not exist
func (r *InvoiceRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete invoice", zap.String("invoice_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete invoice: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

const invoiceLineColumns = `id, invoice_id, product_id, quantity, unit_price, tax_ids, amount`

func scanInvoiceLine(scanner interface{ Scan(...interface{}) error }) (*models.InvoiceLine, error) {
	var l models.InvoiceLine
	var productID, taxIDs sql.NullString
	err := scanner.Scan(&l.ID, &l.InvoiceID, &productID, &l.Quantity, &l.UnitPrice, &taxIDs, &l.Amount)
	if err != nil {
		return nil, err
	}
	l.ProductID = stringPtr(productID)
	l.TaxIDs = stringPtr(taxIDs)
	return &l, nil
}

// ListLines returns all lines of one invoice
func (r *InvoiceRepository) ListLines(invoiceID string) ([]models.InvoiceLine, error) {
	rows, err := r.db.Query(`SELECT `+invoiceLineColumns+` FROM invoice_lines WHERE invoice_id = ?`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []models.InvoiceLine
	for rows.Next() {
		l, err := scanInvoiceLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

// GetLine returns a line by id, or nil when not found
func (r *InvoiceRepository) GetLine(id string) (*models.InvoiceLine, error) {
	row := r.db.QueryRow(`SELECT `+invoiceLineColumns+` FROM invoice_lines WHERE id = ?`, id)
	l, err := scanInvoiceLine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice line: %w", err)
	}
	return l, nil
}

// AddLine inserts a new line for an invoice
func (r *InvoiceRepository) AddLine(l *models.InvoiceLine) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `INSERT INTO invoice_lines (id, invoice_id, product_id, quantity, unit_price, tax_ids, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, l.ID, l.InvoiceID, nullString(l.ProductID), l.Quantity,
		l.UnitPrice, nullString(l.TaxIDs), l.Amount)
	if err != nil {
		r.logger.Error("Failed to add invoice line", zap.String("invoice_id", l.InvoiceID), zap.Error(err))
		return fmt.Errorf("failed to add invoice line: %w", err)
	}
	return nil
}

// UpdateLine writes the full line row, returning false when it does not exist
func (r *InvoiceRepository) UpdateLine(l *models.InvoiceLine) (bool, error) {
	query := `UPDATE invoice_lines SET product_id = ?, quantity = ?, unit_price = ?, tax_ids = ?, amount = ? WHERE id = ?`
	result, err := r.db.Exec(query, nullString(l.ProductID), l.Quantity, l.UnitPrice,
		nullString(l.TaxIDs), l.Amount, l.ID)
	if err != nil {
		r.logger.Error("Failed to update invoice line", zap.String("line_id", l.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update invoice line: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// DeleteLine removes a line, returning false when it does not exist
func (r *InvoiceRepository) DeleteLine(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM invoice_lines WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete invoice line", zap.String("line_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete invoice line: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
