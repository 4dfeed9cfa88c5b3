// Package repository implements the database access layer for the gate-pass
// application. This file manages the destination department directory.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mr-alpha10/sail-gate-pass/internal/database"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// DepartmentRepository handles department directory operations.
// Departments are the destinations a visit request can target; visitors pick
// from this list when submitting.
type DepartmentRepository struct{}

// NewDepartmentRepository creates a new instance of DepartmentRepository.
func NewDepartmentRepository() *DepartmentRepository {
	return &DepartmentRepository{}
}

// List retrieves all departments ordered alphabetically by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	query := `SELECT id, name FROM departments ORDER BY name`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var dept models.Department
		if err := rows.Scan(&dept.ID, &dept.Name); err != nil {
			return nil, err
		}
		departments = append(departments, dept)
	}

	return departments, rows.Err()
}

// FindByName retrieves a department by its unique name.
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*models.Department, error) {
	query := `SELECT id, name FROM departments WHERE name = $1`

	var dept models.Department
	err := database.DB.QueryRow(ctx, query, name).Scan(&dept.ID, &dept.Name)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("department %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &dept, nil
}

// Create inserts a new department. The caller supplies the uuid ID.
// Duplicate names are rejected by the UNIQUE constraint.
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	query := `INSERT INTO departments (id, name) VALUES ($1, $2)`
	_, err := database.DB.Exec(ctx, query, dept.ID, dept.Name)
	return err
}
