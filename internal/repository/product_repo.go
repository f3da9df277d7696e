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

// ProductRepository handles product database operations
type ProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// ProductFilter narrows product listings. Usage selects products flagged
// for "sales", "purchase" or "expenses".
type ProductFilter struct {
	Search string
	Usage  string
}

const productColumns = `id, name, for_sales, for_purchase, for_expenses, sales_price, cost, tax_ids, created_at`

func scanProduct(scanner interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	var taxIDs sql.NullString
	err := scanner.Scan(&p.ID, &p.Name, &p.ForSales, &p.ForPurchase, &p.ForExpenses,
		&p.SalesPrice, &p.Cost, &taxIDs, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.TaxIDs = stringPtr(taxIDs)
	return &p, nil
}

// Create inserts a new product
func (r *ProductRepository) Create(p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.SalesPrice == "" {
		p.SalesPrice = "0"
	}
	if p.Cost == "" {
		p.Cost = "0"
	}
	p.CreatedAt = time.Now().UTC()

	query := `INSERT INTO products (id, name, for_sales, for_purchase, for_expenses, sales_price, cost, tax_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, p.ID, p.Name, p.ForSales, p.ForPurchase, p.ForExpenses,
		p.SalesPrice, p.Cost, nullString(p.TaxIDs), p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create product", zap.Error(err))
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID returns a product by id, or nil when not found
func (r *ProductRepository) GetByID(id string) (*models.Product, error) {
	row := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// List returns products matching the filter
func (r *ProductRepository) List(filter ProductFilter) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var clauses []string
	var args []interface{}

	if filter.Search != "" {
		clauses = append(clauses, `name LIKE ?`)
		args = append(args, "%"+filter.Search+"%")
	}
	switch filter.Usage {
	case "sales":
		clauses = append(clauses, `for_sales = 1`)
	case "purchase":
		clauses = append(clauses, `for_purchase = 1`)
	case "expenses":
		clauses = append(clauses, `for_expenses = 1`)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Update writes the full product row, returning false when it does not exist
func (r *ProductRepository) Update(p *models.Product) (bool, error) {
	query := `UPDATE products SET name = ?, for_sales = ?, for_purchase = ?, for_expenses = ?,
		sales_price = ?, cost = ?, tax_ids = ? WHERE id = ?`
	result, err := r.db.Exec(query, p.Name, p.ForSales, p.ForPurchase, p.ForExpenses,
		p.SalesPrice, p.Cost, nullString(p.TaxIDs), p.ID)
	if err != nil {
		r.logger.Error("Failed to update product", zap.String("product_id", p.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a product, returning false when it does not exist
func (r *ProductRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
