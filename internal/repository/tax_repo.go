package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// TaxRepository handles tax database operations
type TaxRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaxRepository creates a new tax repository
func NewTaxRepository(db *sql.DB, logger *zap.Logger) *TaxRepository {
	return &TaxRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new tax
func (r *TaxRepository) Create(t *models.Tax) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Rate == "" {
		t.Rate = "0"
	}
	t.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(`INSERT INTO taxes (id, name, rate, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Rate, t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create tax", zap.Error(err))
		return fmt.Errorf("failed to create tax: %w", err)
	}
	return nil
}

// GetByID returns a tax by id, or nil when not found
func (r *TaxRepository) GetByID(id string) (*models.Tax, error) {
	var t models.Tax
	err := r.db.QueryRow(`SELECT id, name, rate, created_at FROM taxes WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Rate, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tax: %w", err)
	}
	return &t, nil
}

// List returns all taxes ordered by name
func (r *TaxRepository) List() ([]models.Tax, error) {
	rows, err := r.db.Query(`SELECT id, name, rate, created_at FROM taxes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxes: %w", err)
	}
	defer rows.Close()

	var taxes []models.Tax
	for rows.Next() {
		var t models.Tax
		if err := rows.Scan(&t.ID, &t.Name, &t.Rate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tax: %w", err)
		}
		taxes = append(taxes, t)
	}
	return taxes, rows.Err()
}

// Update writes the full tax row, returning false when it does not exist
func (r *TaxRepository) Update(t *models.Tax) (bool, error) {
	result, err := r.db.Exec(`UPDATE taxes SET name = ?, rate = ? WHERE id = ?`, t.Name, t.Rate, t.ID)
	if err != nil {
		r.logger.Error("Failed to update tax", zap.String("tax_id", t.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update tax: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a tax, returning false when it does not exist
func (r *TaxRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM taxes WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete tax", zap.String("tax_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete tax: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
