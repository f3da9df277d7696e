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

// PurchaseOrderRepository handles purchase order and line database operations
type PurchaseOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *sql.DB, logger *zap.Logger) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		db:     db,
		logger: logger,
	}
}

// PurchaseOrderFilter narrows purchase order listings. Search matches the order code.
type PurchaseOrderFilter struct {
	Search    string
	ProjectID string
	VendorID  string
	Status    string
}

const purchaseOrderColumns = `id, code, vendor_id, project_id, status, untaxed_amount, total_amount, created_at`

func scanPurchaseOrder(scanner interface{ Scan(...interface{}) error }) (*models.PurchaseOrder, error) {
	var o models.PurchaseOrder
	var vendorID, projectID sql.NullString
	err := scanner.Scan(&o.ID, &o.Code, &vendorID, &projectID, &o.Status,
		&o.UntaxedAmount, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.VendorID = stringPtr(vendorID)
	o.ProjectID = stringPtr(projectID)
	return &o, nil
}

// Create inserts a new purchase order with zeroed amounts
func (r *PurchaseOrderRepository) Create(o *models.PurchaseOrder) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.OrderDraft
	}
	o.UntaxedAmount = "0"
	o.TotalAmount = "0"
	o.CreatedAt = time.Now().UTC()

	query := `INSERT INTO purchase_orders (id, code, vendor_id, project_id, status, untaxed_amount, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, o.ID, o.Code, nullString(o.VendorID), nullString(o.ProjectID),
		o.Status, o.UntaxedAmount, o.TotalAmount, o.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create purchase order", zap.Error(err))
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	return nil
}

// GetByID returns a purchase order by id, or nil when not found
func (r *PurchaseOrderRepository) GetByID(id string) (*models.PurchaseOrder, error) {
	row := r.db.QueryRow(`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = ?`, id)
	o, err := scanPurchaseOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase order: %w", err)
	}
	return o, nil
}

// List returns purchase orders matching the filter, newest first
func (r *PurchaseOrderRepository) List(filter PurchaseOrderFilter) ([]models.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders`
	var clauses []string
	var args []interface{}

	if filter.Search != "" {
		clauses = append(clauses, `code LIKE ?`)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.ProjectID != "" && filter.ProjectID != "all" {
		clauses = append(clauses, `project_id = ?`)
		args = append(args, filter.ProjectID)
	}
	if filter.VendorID != "" && filter.VendorID != "all" {
		clauses = append(clauses, `vendor_id = ?`)
		args = append(args, filter.VendorID)
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
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []models.PurchaseOrder
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Update writes the full purchase order row, returning false when it does not exist
func (r *PurchaseOrderRepository) Update(o *models.PurchaseOrder) (bool, error) {
	query := `UPDATE purchase_orders SET code = ?, vendor_id = ?, project_id = ?, status = ?,
		untaxed_amount = ?, total_amount = ? WHERE id = ?`
	result, err := r.db.Exec(query, o.Code, nullString(o.VendorID), nullString(o.ProjectID),
		o.Status, o.UntaxedAmount, o.TotalAmount, o.ID)
	if err != nil {
		r.logger.Error("Failed to update purchase order", zap.String("order_id", o.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update purchase order: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a purchase order and its lines, returning false when it does not exist
func (r *PurchaseOrderRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM purchase_orders WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete purchase order", zap.String("order_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete purchase order: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

const purchaseOrderLineColumns = `id, order_id, product_id, quantity, unit, unit_price, tax_ids, amount`

func scanPurchaseOrderLine(scanner interface{ Scan(...interface{}) error }) (*models.PurchaseOrderLine, error) {
	var l models.PurchaseOrderLine
	var productID, unit, taxIDs sql.NullString
	err := scanner.Scan(&l.ID, &l.OrderID, &productID, &l.Quantity, &unit, &l.UnitPrice, &taxIDs, &l.Amount)
	if err != nil {
		return nil, err
	}
	l.ProductID = stringPtr(productID)
	l.Unit = stringPtr(unit)
	l.TaxIDs = stringPtr(taxIDs)
	return &l, nil
}

// ListLines returns all lines of one order
func (r *PurchaseOrderRepository) ListLines(orderID string) ([]models.PurchaseOrderLine, error) {
	rows, err := r.db.Query(`SELECT `+purchaseOrderLineColumns+` FROM purchase_order_lines WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.PurchaseOrderLine
	for rows.Next() {
		l, err := scanPurchaseOrderLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order line: %w", err)
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

// GetLine returns a line by id, or nil when not found
func (r *PurchaseOrderRepository) GetLine(id string) (*models.PurchaseOrderLine, error) {
	row := r.db.QueryRow(`SELECT `+purchaseOrderLineColumns+` FROM purchase_order_lines WHERE id = ?`, id)
	l, err := scanPurchaseOrderLine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase order line: %w", err)
	}
	return l, nil
}

// AddLine inserts a new line for an order
func (r *PurchaseOrderRepository) AddLine(l *models.PurchaseOrderLine) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `INSERT INTO purchase_order_lines (id, order_id, product_id, quantity, unit, unit_price, tax_ids, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, l.ID, l.OrderID, nullString(l.ProductID), l.Quantity,
		nullString(l.Unit), l.UnitPrice, nullString(l.TaxIDs), l.Amount)
	if err != nil {
		r.logger.Error("Failed to add purchase order line", zap.String("order_id", l.OrderID), zap.Error(err))
		return fmt.Errorf("failed to add purchase order line: %w", err)
	}
	return nil
}

// UpdateLine writes the full line row, returning false when it does not exist
func (r *PurchaseOrderRepository) UpdateLine(l *models.PurchaseOrderLine) (bool, error) {
	query := `UPDATE purchase_order_lines SET product_id = ?, quantity = ?, unit = ?,
		unit_price = ?, tax_ids = ?, amount = ? WHERE id = ?`
	result, err := r.db.Exec(query, nullString(l.ProductID), l.Quantity, nullString(l.Unit),
		l.UnitPrice, nullString(l.TaxIDs), l.Amount, l.ID)
	if err != nil {
		r.logger.Error("Failed to update purchase order line", zap.String("line_id", l.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update purchase order line: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// DeleteLine removes a line, returning false when it does not exist
func (r *PurchaseOrderRepository) DeleteLine(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM purchase_order_lines WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete purchase order line", zap.String("line_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete purchase order line: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
