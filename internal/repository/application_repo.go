// Package repository implements the database access layer for the gate-pass
// application. This file handles visit application storage and the
// status-guarded updates used by the lifecycle engine.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mr-alpha10/sail-gate-pass/internal/database"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// ApplicationRepository handles all database operations for visit
// applications: creation, lookups, role-scoped listings, and the two
// stage-decision updates.
//
// Transition updates carry the expected current status in their WHERE
// clause, so a decision never applies to a record that has already moved
// on. A zero-row update on an existing id means the record was in the
// wrong stage.
type ApplicationRepository struct{}

// NewApplicationRepository creates and returns a new ApplicationRepository instance.
func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{}
}

const applicationColumns = `id, user_id, user_name, user_email, user_phone, purpose, department,
		visit_date, visit_time, duration, vehicle_number, status,
		security_comments, department_comments, approved_by, qr_code,
		created_at, updated_at`

// scanApplication scans one application row into a models.Application.
func scanApplication(row pgx.Row) (*models.Application, error) {
	var app models.Application
	err := row.Scan(
		&app.ID, &app.UserID, &app.UserName, &app.UserEmail, &app.UserPhone,
		&app.Purpose, &app.Department, &app.VisitDate, &app.VisitTime,
		&app.Duration, &app.VehicleNumber, &app.Status,
		&app.SecurityComments, &app.DepartmentComments, &app.ApprovedBy,
		&app.QRCode, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// collectApplications drains a row set into a slice.
func collectApplications(rows pgx.Rows) ([]models.Application, error) {
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}

	return apps, rows.Err()
}

// Create inserts a new visit application in pending state.
// The caller supplies the uuid ID and the denormalized visitor fields
// captured at submission time.
//
// Side Effects:
//   - Sets app.CreatedAt and app.UpdatedAt from database timestamps
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (id, user_id, user_name, user_email, user_phone,
			purpose, department, visit_date, visit_time, duration, vehicle_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	return database.DB.QueryRow(ctx, query,
		app.ID, app.UserID, app.UserName, app.UserEmail, app.UserPhone,
		app.Purpose, app.Department, app.VisitDate, app.VisitTime,
		app.Duration, app.VehicleNumber, app.Status,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
}

// GetByID retrieves an application by its unique ID.
//
// Returns:
//   - *models.Application: the full record
//   - error: wraps ErrNotFound if the id doesn't exist, database error otherwise
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(database.DB.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ListAll retrieves every application, newest first.
// Used by the security view, which sees the whole collection.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at DESC`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return collectApplications(rows)
}

// ListByUser retrieves all applications owned by one visitor, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := database.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	return collectApplications(rows)
}

// ListByDepartment retrieves all applications targeting one department,
// newest first.
func (r *ApplicationRepository) ListByDepartment(ctx context.Context, department string) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE department = $1 ORDER BY created_at DESC`

	rows, err := database.DB.Query(ctx, query, department)
	if err != nil {
		return nil, err
	}

	return collectApplications(rows)
}

// ApplySecurityDecision transitions a pending application to forwarded or
// rejected, recording the security stage comments. The WHERE clause pins the
// current status to pending, so the update cannot touch a record that has
// already been triaged.
//
// Returns:
//   - *models.Application: the updated record
//   - error: wraps ErrNotFound when no pending row with this id exists
//     (missing or already past the security stage)
func (r *ApplicationRepository) ApplySecurityDecision(ctx context.Context, id, newStatus, comments string) (*models.Application, error) {
	query := `
		UPDATE applications
		SET status = $2, security_comments = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + applicationColumns

	app, err := scanApplication(database.DB.QueryRow(ctx, query, id, newStatus, comments))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("pending application %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return app, nil
}

// ApplyDepartmentDecision transitions a forwarded application to approved or
// rejected, recording the department stage comments, the deciding agent's
// name, and (on approval) the credential payload. The WHERE clause pins the
// current status to forwarded.
//
// qrCode must be empty unless newStatus is approved.
func (r *ApplicationRepository) ApplyDepartmentDecision(ctx context.Context, id, newStatus, comments, approvedBy, qrCode string) (*models.Application, error) {
	query := `
		UPDATE applications
		SET status = $2, department_comments = $3, approved_by = $4, qr_code = $5, updated_at = now()
		WHERE id = $1 AND status = 'forwarded'
		RETURNING ` + applicationColumns

	app, err := scanApplication(database.DB.QueryRow(ctx, query, id, newStatus, comments, approvedBy, qrCode))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("forwarded application %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return app, nil
}
