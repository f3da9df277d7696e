package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// TimesheetRepository handles timesheet database operations
type TimesheetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTimesheetRepository creates a new timesheet repository
func NewTimesheetRepository(db *sql.DB, logger *zap.Logger) *TimesheetRepository {
	return &TimesheetRepository{
		db:     db,
		logger: logger,
	}
}

const timesheetColumns = `id, task_id, employee_id, description, time_logged, billable, created_at`

func scanTimesheet(scanner interface{ Scan(...interface{}) error }) (*models.Timesheet, error) {
	var ts models.Timesheet
	var description sql.NullString
	var createdAt sql.NullTime
	err := scanner.Scan(&ts.ID, &ts.TaskID, &ts.EmployeeID, &description,
		&ts.TimeLogged, &ts.Billable, &createdAt)
	if err != nil {
		return nil, err
	}
	ts.Description = stringPtr(description)
	ts.CreatedAt = timePtr(createdAt)
	return &ts, nil
}

// Create inserts a new timesheet entry, stamping its creation time
func (r *TimesheetRepository) Create(ts *models.Timesheet) error {
	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}
	if ts.CreatedAt == nil {
		now := time.Now().UTC()
		ts.CreatedAt = &now
	}

	query := `
		INSERT INTO timesheets (id, task_id, employee_id, description, time_logged, billable, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		ts.ID, ts.TaskID, ts.EmployeeID, nullString(ts.Description),
		ts.TimeLogged, ts.Billable, nullTime(ts.CreatedAt),
	)
	if err != nil {
		r.logger.Error("Failed to create timesheet", zap.Error(err))
		return fmt.Errorf("failed to create timesheet: %w", err)
	}
	return nil
}

// GetByID returns a timesheet by id, or nil when not found
func (r *TimesheetRepository) GetByID(id string) (*models.Timesheet, error) {
	row := r.db.QueryRow(`SELECT `+timesheetColumns+` FROM timesheets WHERE id = ?`, id)
	ts, err := scanTimesheet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheet: %w", err)
	}
	return ts, nil
}

// List returns all timesheets
func (r *TimesheetRepository) List() ([]models.Timesheet, error) {
	return r.list(`SELECT ` + timesheetColumns + ` FROM timesheets ORDER BY created_at DESC`)
}

// ListByTask returns the timesheets logged against a task
func (r *TimesheetRepository) ListByTask(taskID string) ([]models.Timesheet, error) {
	return r.list(`SELECT `+timesheetColumns+` FROM timesheets WHERE task_id = ? ORDER BY created_at DESC`, taskID)
}

func (r *TimesheetRepository) list(query string, args ...interface{}) ([]models.Timesheet, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	var timesheets []models.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		timesheets = append(timesheets, *ts)
	}
	return timesheets, rows.Err()
}

// Update writes the full timesheet row, returning false when it does not exist
func (r *TimesheetRepository) Update(ts *models.Timesheet) (bool, error) {
	query := `
		UPDATE timesheets SET task_id = ?, employee_id = ?, description = ?,
			time_logged = ?, billable = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		ts.TaskID, ts.EmployeeID, nullString(ts.Description),
		ts.TimeLogged, ts.Billable, ts.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update timesheet", zap.String("timesheet_id", ts.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update timesheet: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a timesheet entry, returning false when it does not exist
func (r *TimesheetRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM timesheets WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete timesheet", zap.String("timesheet_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete timesheet: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
