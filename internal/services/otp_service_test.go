// Package services_test provides unit tests for the business logic layer.
// OTP service tests verify code generation, issuance, and the verification
// rules: expiry, mismatch, single use, and the email-verified side effect.
package services_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-alpha10/sail-gate-pass/internal/mail"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

// newOTPService builds the service with a console-mode mailer; nothing is
// actually sent in tests.
func newOTPService() *services.OTPService {
	return services.NewOTPService(mail.NewMailer(), security.DefaultSecurityConfig())
}

// otpRow builds a mock otp_logs row for visitor@example.com.
func otpRow(code string, expiresAt time.Time) []interface{} {
	return []interface{}{
		"o-1", "visitor@example.com", code, "registration", expiresAt, nil, testTime,
	}
}

// TestOTPService_GenerateOTP verifies the code format: exactly the
// configured number of digits, leading zeros preserved.
func TestOTPService_GenerateOTP(t *testing.T) {
	svc := newOTPService()

	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := svc.GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code, "Codes are always six digits")
	}
}

// TestOTPService_Issue verifies that issuing stores the code with its expiry
// before any delivery attempt.
func TestOTPService_Issue(t *testing.T) {
	mock := withMockDB(t)

	mock.ExpectQuery("INSERT INTO otp_logs").
		WithArgs(pgxmock.AnyArg(), "visitor@example.com", pgxmock.AnyArg(),
			"registration", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testTime))

	svc := newOTPService()

	err := svc.Issue(context.Background(), "visitor@example.com", "Test Visitor", models.OTPKindRegistration)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestOTPService_Verify verifies the acceptance rules against the newest
// outstanding code.
//
// Test Cases:
//   - Matching live code: consumed, account marked verified
//   - Matching expired code: ErrOTPExpired, code not consumed
//   - Mismatched code: ErrOTPInvalid, code not consumed
//   - No outstanding code: ErrOTPInvalid
func TestOTPService_Verify(t *testing.T) {
	t.Run("valid code verifies the account", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM otp_logs").
			WithArgs("visitor@example.com", "registration").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "otp", "kind", "expires_at", "consumed_at", "created_at"}).
				AddRow(otpRow("123456", time.Now().Add(5*time.Minute))...))

		mock.ExpectExec("UPDATE otp_logs SET consumed_at").
			WithArgs("o-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		mock.ExpectExec("UPDATE users SET email_verified").
			WithArgs("visitor@example.com").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		svc := newOTPService()

		err := svc.Verify(context.Background(), "visitor@example.com", "123456", models.OTPKindRegistration)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired code", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM otp_logs").
			WithArgs("visitor@example.com", "registration").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "otp", "kind", "expires_at", "consumed_at", "created_at"}).
				AddRow(otpRow("123456", time.Now().Add(-time.Minute))...))

		svc := newOTPService()

		err := svc.Verify(context.Background(), "visitor@example.com", "123456", models.OTPKindRegistration)

		assert.ErrorIs(t, err, services.ErrOTPExpired)
		assert.NoError(t, mock.ExpectationsWereMet(), "Expired codes are not consumed")
	})

	t.Run("mismatched code", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM otp_logs").
			WithArgs("visitor@example.com", "registration").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "otp", "kind", "expires_at", "consumed_at", "created_at"}).
				AddRow(otpRow("123456", time.Now().Add(5*time.Minute))...))

		svc := newOTPService()

		err := svc.Verify(context.Background(), "visitor@example.com", "999999", models.OTPKindRegistration)

		assert.ErrorIs(t, err, services.ErrOTPInvalid)
		assert.NoError(t, mock.ExpectationsWereMet(), "Mismatched attempts leave the code outstanding")
	})

	t.Run("no outstanding code", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM otp_logs").
			WithArgs("visitor@example.com", "registration").
			WillReturnError(pgx.ErrNoRows)

		svc := newOTPService()

		err := svc.Verify(context.Background(), "visitor@example.com", "123456", models.OTPKindRegistration)

		assert.ErrorIs(t, err, services.ErrOTPInvalid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestOTPService_Resend verifies the resend guard: already-verified
// accounts cannot request a fresh registration code.
func TestOTPService_Resend_AlreadyVerified(t *testing.T) {
	mock := withMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("visitor@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userRow("hash", true)...))

	svc := newOTPService()

	err := svc.Resend(context.Background(), "visitor@example.com", models.OTPKindRegistration)

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}
