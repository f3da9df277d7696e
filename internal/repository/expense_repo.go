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

// ExpenseRepository handles expense database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// ExpenseFilter narrows expense listings. Search matches name and description.
type ExpenseFilter struct {
	Search    string
	ProjectID string
}

const expenseColumns = `id, name, project_id, period_start, period_end, image_url, description, created_at`

func scanExpense(scanner interface{ Scan(...interface{}) error }) (*models.Expense, error) {
	var e models.Expense
	var projectID, periodStart, periodEnd, imageURL, description sql.NullString
	err := scanner.Scan(&e.ID, &e.Name, &projectID, &periodStart, &periodEnd, &imageURL, &description, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.ProjectID = stringPtr(projectID)
	e.PeriodStart = stringPtr(periodStart)
	e.PeriodEnd = stringPtr(periodEnd)
	e.ImageURL = stringPtr(imageURL)
	e.Description = stringPtr(description)
	return &e, nil
}

// Create inserts a new expense
func (r *ExpenseRepository) Create(e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()

	query := `INSERT INTO expenses (id, name, project_id, period_start, period_end, image_url, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, e.ID, e.Name, nullString(e.ProjectID), nullString(e.PeriodStart),
		nullString(e.PeriodEnd), nullString(e.ImageURL), nullString(e.Description), e.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID returns an expense by id, or nil when not found
func (r *ExpenseRepository) GetByID(id string) (*models.Expense, error) {
	row := r.db.QueryRow(`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return e, nil
}

// List returns expenses matching the filter, newest first
func (r *ExpenseRepository) List(filter ExpenseFilter) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses`
	var clauses []string
	var args []interface{}

	if filter.Search != "" {
		clauses = append(clauses, `(name LIKE ? OR description LIKE ?)`)
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.ProjectID != "" && filter.ProjectID != "all" {
		clauses = append(clauses, `project_id = ?`)
		args = append(args, filter.ProjectID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// Update writes the full expense row, returning false when it does not exist
func (r *ExpenseRepository) Update(e *models.Expense) (bool, error) {
	query := `UPDATE expenses SET name = ?, project_id = ?, period_start = ?, period_end = ?,
		image_url = ?, description = ? WHERE id = ?`
	result, err := r.db.Exec(query, e.Name, nullString(e.ProjectID), nullString(e.PeriodStart),
		nullString(e.PeriodEnd), nullString(e.ImageURL), nullString(e.Description), e.ID)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.String("expense_id", e.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes an expense, returning false when it does not exist
func (r *ExpenseRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.String("expense_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
