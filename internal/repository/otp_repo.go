// Package repository implements the database access layer for the gate-pass
// application. This file stores one-time passwords issued for email
// verification and password reset.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mr-alpha10/sail-gate-pass/internal/database"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// OTPRepository handles one-time password persistence.
// Every issued code is recorded; verification consumes the newest unconsumed
// code for the address, so re-sends invalidate nothing but always win.
type OTPRepository struct{}

// NewOTPRepository creates a new instance of OTPRepository.
func NewOTPRepository() *OTPRepository {
	return &OTPRepository{}
}

// Create records a newly issued OTP. The caller supplies the uuid ID,
// the code, and the expiry deadline.
//
// Side Effects:
//   - Sets otp.CreatedAt from the database timestamp
func (r *OTPRepository) Create(ctx context.Context, otp *models.OTPLog) error {
	query := `
		INSERT INTO otp_logs (id, email, otp, kind, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return database.DB.QueryRow(ctx, query,
		otp.ID, otp.Email, otp.OTP, otp.Kind, otp.ExpiresAt,
	).Scan(&otp.CreatedAt)
}

// FindLatest retrieves the newest unconsumed OTP for an address and kind.
func (r *OTPRepository) FindLatest(ctx context.Context, email, kind string) (*models.OTPLog, error) {
	query := `
		SELECT id, email, otp, kind, expires_at, consumed_at, created_at
		FROM otp_logs
		WHERE email = $1 AND kind = $2 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp models.OTPLog
	err := database.DB.QueryRow(ctx, query, email, kind).Scan(
		&otp.ID, &otp.Email, &otp.OTP, &otp.Kind,
		&otp.ExpiresAt, &otp.ConsumedAt, &otp.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("otp for %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &otp, nil
}

// MarkConsumed stamps an OTP as used so it cannot verify twice.
func (r *OTPRepository) MarkConsumed(ctx context.Context, id string) error {
	query := `UPDATE otp_logs SET consumed_at = now() WHERE id = $1 AND consumed_at IS NULL`
	tag, err := database.DB.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("otp %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteExpired removes OTPs past their expiry deadline. Run opportunistically;
// verification checks expiry independently, so this is purely housekeeping.
func (r *OTPRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM otp_logs WHERE expires_at < now()`
	_, err := database.DB.Exec(ctx, query)
	return err
}
