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

// PartnerRepository handles partner database operations
type PartnerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(db *sql.DB, logger *zap.Logger) *PartnerRepository {
	return &PartnerRepository{
		db:     db,
		logger: logger,
	}
}

// PartnerFilter narrows partner listings
type PartnerFilter struct {
	Search string
	Type   string
}

const partnerColumns = `id, name, type, email, phone, address, created_at`

func scanPartner(scanner interface{ Scan(...interface{}) error }) (*models.Partner, error) {
	var p models.Partner
	var email, phone, address sql.NullString
	err := scanner.Scan(&p.ID, &p.Name, &p.Type, &email, &phone, &address, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Email = stringPtr(email)
	p.Phone = stringPtr(phone)
	p.Address = stringPtr(address)
	return &p, nil
}

// Create inserts a new partner
func (r *PartnerRepository) Create(p *models.Partner) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = models.PartnerBoth
	}
	p.CreatedAt = time.Now().UTC()

	query := `INSERT INTO partners (id, name, type, email, phone, address, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, p.ID, p.Name, p.Type,
		nullString(p.Email), nullString(p.Phone), nullString(p.Address), p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create partner", zap.Error(err))
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}

// GetByID returns a partner by id, or nil when not found
func (r *PartnerRepository) GetByID(id string) (*models.Partner, error) {
	row := r.db.QueryRow(`SELECT `+partnerColumns+` FROM partners WHERE id = ?`, id)
	p, err := scanPartner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query partner: %w", err)
	}
	return p, nil
}

// List returns partners matching the filter. A partner of type "both"
// matches either customer or vendor filters.
func (r *PartnerRepository) List(filter PartnerFilter) ([]models.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners`
	var clauses []string
	var args []interface{}

	if filter.Search != "" {
		clauses = append(clauses, `name LIKE ?`)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Type != "" && filter.Type != "all" {
		clauses = append(clauses, `(type = ? OR type = 'both')`)
		args = append(args, filter.Type)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

// Update writes the full partner row, returning false when it does not exist
func (r *PartnerRepository) Update(p *models.Partner) (bool, error) {
	query := `UPDATE partners SET name = ?, type = ?, email = ?, phone = ?, address = ? WHERE id = ?`
	result, err := r.db.Exec(query, p.Name, p.Type,
		nullString(p.Email), nullString(p.Phone), nullString(p.Address), p.ID)
	if err != nil {
		r.logger.Error("Failed to update partner", zap.String("partner_id", p.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update partner: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a partner, returning false when it does not exist
func (r *PartnerRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM partners WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete partner", zap.String("partner_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete partner: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
