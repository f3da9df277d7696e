package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// TaskRepository handles task database operations
type TaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

const taskColumns = `id, name, description, project_id, assignee_id, status, is_billable,
	total_hours, deadline, image_url, tags, last_modified_by, last_modified_on`

func scanTask(scanner interface{ Scan(...interface{}) error }) (*models.Task, error) {
	var t models.Task
	var description, projectID, assigneeID, imageURL, tags, lastModifiedBy sql.NullString
	var deadline sql.NullTime
	err := scanner.Scan(&t.ID, &t.Name, &description, &projectID, &assigneeID, &t.Status,
		&t.IsBillable, &t.TotalHours, &deadline, &imageURL, &tags, &lastModifiedBy,
		&t.LastModifiedOn)
	if err != nil {
		return nil, err
	}
	t.Description = stringPtr(description)
	t.ProjectID = stringPtr(projectID)
	t.AssigneeID = stringPtr(assigneeID)
	t.Deadline = timePtr(deadline)
	t.ImageURL = stringPtr(imageURL)
	t.Tags = stringPtr(tags)
	t.LastModifiedBy = stringPtr(lastModifiedBy)
	return &t, nil
}

// Create inserts a new task with its defaults applied
func (r *TaskRepository) Create(t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskPlanned
	}
	t.LastModifiedOn = time.Now().UTC()

	query := `
		INSERT INTO tasks (
			id, name, description, project_id, assignee_id, status, is_billable,
			total_hours, deadline, image_url, tags, last_modified_by, last_modified_on
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		t.ID, t.Name, nullString(t.Description), nullString(t.ProjectID),
		nullString(t.AssigneeID), t.Status, t.IsBillable, t.TotalHours,
		nullTime(t.Deadline), nullString(t.ImageURL), nullString(t.Tags),
		nullString(t.LastModifiedBy), t.LastModifiedOn,
	)
	if err != nil {
		r.logger.Error("Failed to create task", zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID returns a task by id, or nil when not found
func (r *TaskRepository) GetByID(id string) (*models.Task, error) {
	row := r.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return t, nil
}

// List returns all tasks
func (r *TaskRepository) List() ([]models.Task, error) {
	return r.list(`SELECT ` + taskColumns + ` FROM tasks ORDER BY last_modified_on DESC`)
}

// ListByAssignee returns tasks assigned to a given user
func (r *TaskRepository) ListByAssignee(assigneeID string) ([]models.Task, error) {
	return r.list(`SELECT `+taskColumns+` FROM tasks WHERE assignee_id = ? ORDER BY last_modified_on DESC`, assigneeID)
}

func (r *TaskRepository) list(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update writes the full task row, refreshing the modification stamp.
// Returns false when the task does not exist.
func (r *TaskRepository) Update(t *models.Task) (bool, error) {
	t.LastModifiedOn = time.Now().UTC()

	query := `
		UPDATE tasks SET
			name = ?, description = ?, project_id = ?, assignee_id = ?, status = ?,
			is_billable = ?, total_hours = ?, deadline = ?, image_url = ?, tags = ?,
			last_modified_by = ?, last_modified_on = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		t.Name, nullString(t.Description), nullString(t.ProjectID),
		nullString(t.AssigneeID), t.Status, t.IsBillable, t.TotalHours,
		nullTime(t.Deadline), nullString(t.ImageURL), nullString(t.Tags),
		nullString(t.LastModifiedBy), t.LastModifiedOn, t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task", zap.String("task_id", t.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a task, returning false when it does not exist
func (r *TaskRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.String("task_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
