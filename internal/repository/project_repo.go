package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `id, name, description, manager, deadline, status, budget,
	budget_spent, cost, revenue, total_tasks, completed_tasks, progress, tags`

func scanProject(scanner interface{ Scan(...interface{}) error }) (*models.Project, error) {
	var p models.Project
	var description, tags sql.NullString
	var deadline sql.NullTime
	err := scanner.Scan(&p.ID, &p.Name, &description, &p.Manager, &deadline, &p.Status,
		&p.Budget, &p.BudgetSpent, &p.Cost, &p.Revenue, &p.TotalTasks, &p.CompletedTasks,
		&p.Progress, &tags)
	if err != nil {
		return nil, err
	}
	p.Description = stringPtr(description)
	p.Deadline = timePtr(deadline)
	p.Tags = stringPtr(tags)
	return &p, nil
}

// Create inserts a new project. A Completed status forces progress to 100.
func (r *ProjectRepository) Create(p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.ProjectPlanned
	}
	if p.Status == models.ProjectCompleted {
		p.Progress = 100
	}

	query := `
		INSERT INTO projects (
			id, name, description, manager, deadline, status, budget, budget_spent,
			cost, revenue, total_tasks, completed_tasks, progress, tags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		p.ID, p.Name, nullString(p.Description), p.Manager, nullTime(p.Deadline),
		p.Status, p.Budget, p.BudgetSpent, p.Cost, p.Revenue,
		p.TotalTasks, p.CompletedTasks, p.Progress, nullString(p.Tags),
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID returns a project by id, or nil when not found
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return p, nil
}

// List returns all projects
func (r *ProjectRepository) List() ([]models.Project, error) {
	rows, err := r.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Update writes the full project row. A Completed status forces progress to
// 100. Returns false when the project does not exist.
func (r *ProjectRepository) Update(p *models.Project) (bool, error) {
	if p.Status == models.ProjectCompleted {
		p.Progress = 100
	}

	query := `
		UPDATE projects SET
			name = ?, description = ?, manager = ?, deadline = ?, status = ?,
			budget = ?, budget_spent = ?, cost = ?, revenue = ?,
			total_tasks = ?, completed_tasks = ?, progress = ?, tags = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		p.Name, nullString(p.Description), p.Manager, nullTime(p.Deadline), p.Status,
		p.Budget, p.BudgetSpent, p.Cost, p.Revenue,
		p.TotalTasks, p.CompletedTasks, p.Progress, nullString(p.Tags), p.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.String("project_id", p.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update project: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Delete removes a project, returning false when it does not exist
func (r *ProjectRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.String("project_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
