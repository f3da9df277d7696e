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

// SalesOrderRepository handles sales order and line database operations
type SalesOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSalesOrderRepository creates a new sales order repository
func NewSalesOrderRepository(db *sql.DB, logger *zap.Logger) *SalesOrderRepository {
	return &SalesOrderRepository{
		db:     db,
		logger: logger,
	}
}

// SalesOrderFilter narrows sales order listings. Search matches the order code.
type SalesOrderFilter struct {
	Search     string
	ProjectID  string
	CustomerID string
	Status     string
}

const salesOrderColumns = `id, code, customer_id, project_id, status, untaxed_amount, total_amount, created_at`

func scanSalesOrder(scanner interface{ Scan(...interface{}) error }) (*models.SalesOrder, error) {
	var o models.SalesOrder
	var customerID, projectID sql.NullString
	err := scanner.Scan(&o.ID, &o.Code, &customerID, &projectID, &o.Status,
		&o.UntaxedAmount, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.CustomerID = stringPtr(customerID)
	o.ProjectID = stringPtr(projectID)
	return &o, nil
}

// Create inserts a new sales order. Amounts always start at zero; they are
// only moved by explicit updates.
func (r *SalesOrderRepository) Create(o *models.SalesOrder) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.OrderDraft
	}
	o.UntaxedAmount = "0"
	o.TotalAmount = "0"
	o.CreatedAt = time.Now().UTC()

	query := `INSERT INTO sales_orders (id, code, customer_id, project_id, status, untaxed_amount, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, o.ID, o.Code, nullString(o.CustomerID), nullString(o.ProjectID),
		o.Status, o.UntaxedAmount, o.TotalAmount, o.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create sales order", zap.Error(err))
		return fmt.Errorf("failed to create sales order: %w", err)
	}
	return nil
}

// GetByID returns a sales order by id, or nil when not found
func (r *SalesOrderRepository) GetByID(id string) (*models.SalesOrder, error) {
	row := r.db.QueryRow(`SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = ?`, id)
	o, err := scanSalesOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sales order: %w", err)
	}
	return o, nil
}

// List returns sales orders matching the filter, newest first
func (r *SalesOrderRepository) List(filter SalesOrderFilter) ([]models.SalesOrder, error) {
	query := `SELECT ` + salesOrderColumns + ` FROM sales_orders`
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
	if filter.CustomerID != "" && filter.CustomerID != "all" {
		clauses = append(clauses, `customer_id = ?`)
		args = append(args, filter.CustomerID)
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
		return nil, fmt.Errorf("failed to list sales orders: %w", err)
	}
	defer rows.Close()

	var orders []models.SalesOrder
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Update writes the full sales order row, returning false when it does not exist
func (r *SalesOrderRepository) Update(o *models.SalesOrder) (bool, error) {
	query := `UPDATE sales_orders SET code = ?, customer_id = ?, project_id = ?, status = ?,
		untaxed_amount = ?, total_amount = ? WHERE id = ?`
	result, err := r.db.Exec(query, o.Code, nullString(o.CustomerID), nullString(o.ProjectID),
		o.Status, o.UntaxedAmount, o.TotalAmount, o.ID)
	if err != nil {
		r.logger.Error("Failed to update sales order", zap.String("order_id", o.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update sales order: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a sales order and its lines, returning false when it does not exist
func (r *SalesOrderRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM sales_orders WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete sales order", zap.String("order_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete sales order: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

const salesOrderLineColumns = `id, order_id, product_id, quantity, unit, unit_price, tax_ids, amount`

func scanSalesOrderLine(scanner interface{ Scan(...interface{}) error }) (*models.SalesOrderLine, error) {
	var l models.SalesOrderLine
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
func (r *SalesOrderRepository) ListLines(orderID string) ([]models.SalesOrderLine, error) {
	rows, err := r.db.Query(`SELECT `+salesOrderLineColumns+` FROM sales_order_lines WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.SalesOrderLine
	for rows.Next() {
		l, err := scanSalesOrderLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales order line: %w", err)
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

// GetLine returns a line by id, or nil when not found
func (r *SalesOrderRepository) GetLine(id string) (*models.SalesOrderLine, error) {
	row := r.db.QueryRow(`SELECT `+salesOrderLineColumns+` FROM sales_order_lines WHERE id = ?`, id)
	l, err := scanSalesOrderLine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sales order line: %w", err)
	}
	return l, nil
}

// AddLine inserts a new line for an order
func (r *SalesOrderRepository) AddLine(l *models.SalesOrderLine) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `INSERT INTO sales_order_lines (id, order_id, product_id, quantity, unit, unit_price, tax_ids, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, l.ID, l.OrderID, nullString(l.ProductID), l.Quantity,
		nullString(l.Unit), l.UnitPrice, nullString(l.TaxIDs), l.Amount)
	if err != nil {
		r.logger.Error("Failed to add sales order line", zap.String("order_id", l.OrderID), zap.Error(err))
		return fmt.Errorf("failed to add sales order line: %w", err)
	}
	return nil
}

// UpdateLine writes the full line row, returning false when it does not exist
func (r *SalesOrderRepository) UpdateLine(l *models.SalesOrderLine) (bool, error) {
	query := `UPDATE sales_order_lines SET product_id = ?, quantity = ?, unit = ?,
		unit_price = ?, tax_ids = ?, amount = ? WHERE id = ?`
	result, err := r.db.Exec(query, nullString(l.ProductID), l.Quantity, nullString(l.Unit),
		l.UnitPrice, nullString(l.TaxIDs), l.Amount, l.ID)
	if err != nil {
		r.logger.Error("Failed to update sales order line", zap.String("line_id", l.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update sales order line: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// DeleteLine removes a line, returning false when it does not exist
func (r *SalesOrderRepository) DeleteLine(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM sales_order_lines WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete sales order line", zap.String("line_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete sales order line: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
