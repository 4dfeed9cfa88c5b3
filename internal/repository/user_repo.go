// Package repository implements the database access layer for the gate-pass
// application. This file handles user account management, authentication
// queries, and user CRUD operations.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mr-alpha10/sail-gate-pass/internal/database"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// UserRepository handles user-related database operations.
// Manages user accounts, authentication, role assignments, and user lifecycle.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, email, name, phone, role, department, password_hash, email_verified, created_at`

// scanUser scans one user row into a models.User.
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Phone, &user.Role,
		&user.Department, &user.PasswordHash, &user.EmailVerified, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
// Used for authentication during the login process. Email comparison is
// exact; callers must lowercase the address first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - email: User's email address (unique identifier)
//
// Returns:
//   - *models.User: User object including password hash
//   - error: wraps ErrNotFound if the email doesn't exist, database error otherwise
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(database.DB.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// FindByID retrieves a user by their unique ID.
// Used for session validation and authorization checks.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(database.DB.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Create inserts a new user into the database.
// The caller supplies the uuid ID; the password must be pre-hashed with
// bcrypt before calling this method.
//
// Side Effects:
//   - Populates user.CreatedAt with the database-generated timestamp
//
// Database: Email must be unique (enforced by UNIQUE constraint on users table)
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, phone, role, department, password_hash, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return database.DB.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Phone, user.Role,
		user.Department, user.PasswordHash, user.EmailVerified,
	).Scan(&user.CreatedAt)
}

// MarkEmailVerified flags a user's email address as verified after a
// successful OTP check.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, email string) error {
	query := `UPDATE users SET email_verified = true WHERE email = $1`
	tag, err := database.DB.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return nil
}

// DeleteByEmail removes a user account by email address.
// Used to discard an unverified account when the address re-registers or
// when the verification email cannot be delivered.
func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`
	_, err := database.DB.Exec(ctx, query, email)
	return err
}

// ListAll retrieves all users in the system regardless of role.
// Results are ordered by creation date, newest first. The password hash is
// excluded from the projection.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, email, name, phone, role, department, email_verified, created_at
		FROM users ORDER BY created_at DESC`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Phone, &user.Role,
			&user.Department, &user.EmailVerified, &user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
