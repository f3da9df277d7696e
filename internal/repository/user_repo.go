package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user, assigning an ID when none is set
func (r *UserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `INSERT INTO users (id, name, email, password, role) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.Exec(query, user.ID, user.Name, user.Email, user.Password, user.Role); err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by id, or nil when not found
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne(`SELECT id, name, email, password, role FROM users WHERE id = ?`, id)
}

// GetByEmail returns a user by email, or nil when not found
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`SELECT id, name, email, password, role FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// List returns all users
func (r *UserRepository) List() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT id, name, email, password, role FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Count returns the number of user accounts
func (r *UserRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdateRole changes a user's role, returning the updated user or nil when
// the user does not exist
func (r *UserRepository) UpdateRole(id string, role models.Role) (*models.User, error) {
	result, err := r.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		r.logger.Error("Failed to update user role", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}
