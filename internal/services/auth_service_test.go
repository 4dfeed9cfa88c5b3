// Package services_test provides unit tests for the business logic layer.
// Auth service tests verify credential checks, the unverified-email gate at
// login, and registration with its replace-stale-account rule.
package services_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

var userColumns = []string{"id", "email", "name", "phone", "role", "department", "password_hash", "email_verified", "created_at"}

// userRow builds a mock user row with the given hash and verification flag.
func userRow(hash string, verified bool) []interface{} {
	return []interface{}{
		"u-1", "visitor@example.com", "Test Visitor", "+91 9876543210",
		"visitor", "", hash, verified, testTime,
	}
}

// TestAuthService_Authenticate verifies the login credential check.
//
// Test Cases:
//   - Correct password on verified account: Returns the user
//   - Wrong password: Returns an error without revealing which check failed
//   - Correct password on unverified account: ErrEmailNotVerified
//   - Unknown address: Returns an error
func TestAuthService_Authenticate(t *testing.T) {
	// MinCost keeps the test fast; production uses the configured cost
	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name        string
		password    string
		mockSetup   func(pgxmock.PgxPoolIface)
		expectUser  bool
		expectError error // nil means any error acceptable when expectUser is false
	}{
		{
			name:     "valid credentials",
			password: "Password1",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
					WithArgs("visitor@example.com").
					WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userRow(string(hash), true)...))
			},
			expectUser: true,
		},
		{
			name:     "wrong password",
			password: "WrongPassword1",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
					WithArgs("visitor@example.com").
					WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userRow(string(hash), true)...))
			},
			expectUser: false,
		},
		{
			name:     "unverified email",
			password: "Password1",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
					WithArgs("visitor@example.com").
					WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userRow(string(hash), false)...))
			},
			expectUser:  false,
			expectError: services.ErrEmailNotVerified,
		},
		{
			name:     "unknown address",
			password: "Password1",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
					WithArgs("visitor@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			expectUser: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := withMockDB(t)
			tt.mockSetup(mock)

			svc := services.NewAuthService(security.DefaultSecurityConfig())

			user, err := svc.Authenticate(context.Background(), "Visitor@Example.com ", tt.password)

			if tt.expectUser {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "visitor@example.com", user.Email)
			} else {
				assert.Error(t, err)
				assert.Nil(t, user)
				if tt.expectError != nil {
					assert.ErrorIs(t, err, tt.expectError)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestAuthService_Register verifies account creation from the registration
// form: the address is lowercased, the password is stored as a bcrypt hash
// and the account starts unverified.
func TestAuthService_Register(t *testing.T) {
	mock := withMockDB(t)

	// No existing account on the address
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("new@example.com").
		WillReturnError(pgx.ErrNoRows)

	// ID and hash are generated app-side
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "new@example.com", "New Visitor", "+91 9876543220",
			"visitor", "", pgxmock.AnyArg(), false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testTime))

	svc := services.NewAuthService(security.DefaultSecurityConfig())

	user, err := svc.Register(context.Background(), models.RegisterForm{
		Name:            "New Visitor",
		Email:           "New@Example.com",
		Phone:           "+91 9876543220",
		Password:        "Password1",
		ConfirmPassword: "Password1",
		Role:            models.RoleVisitor,
	})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email, "Address is stored lowercased")
	assert.False(t, user.EmailVerified, "Accounts start unverified")
	assert.NotEqual(t, "Password1", user.PasswordHash, "Plaintext is never stored")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuthService_Register_Validation verifies form rejection without any
// store access.
func TestAuthService_Register_Validation(t *testing.T) {
	base := models.RegisterForm{
		Name:            "New Visitor",
		Email:           "new@example.com",
		Phone:           "+91 9876543220",
		Password:        "Password1",
		ConfirmPassword: "Password1",
		Role:            models.RoleVisitor,
	}

	tests := []struct {
		name   string
		mutate func(f *models.RegisterForm)
		field  string
	}{
		{"missing name", func(f *models.RegisterForm) { f.Name = "" }, "name"},
		{"bad email", func(f *models.RegisterForm) { f.Email = "not-an-address" }, "email"},
		{"password mismatch", func(f *models.RegisterForm) { f.ConfirmPassword = "Other1111" }, "password"},
		{"weak password", func(f *models.RegisterForm) { f.Password = "short"; f.ConfirmPassword = "short" }, "password"},
		{"unknown role", func(f *models.RegisterForm) { f.Role = "superuser" }, "role"},
		{"agent without department", func(f *models.RegisterForm) { f.Role = models.RoleDepartmentAgent }, "department"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := withMockDB(t) // No expectations: validation fails first

			form := base
			tt.mutate(&form)

			svc := services.NewAuthService(security.DefaultSecurityConfig())

			user, err := svc.Register(context.Background(), form)

			assert.Nil(t, user)
			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestAuthService_Register_ReplacesUnverified verifies that a stale
// unverified account on the same address is discarded and replaced, while a
// verified one blocks re-registration.
func TestAuthService_Register_ReplacesUnverified(t *testing.T) {
	t.Run("unverified account is replaced", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("visitor@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userRow("old-hash", false)...))

		mock.ExpectExec("DELETE FROM users WHERE email").
			WithArgs("visitor@example.com").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		mock.ExpectQuery("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), "visitor@example.com", "Test Visitor", "+91 9876543210",
				"visitor", "", pgxmock.AnyArg(), false).
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(testTime))

		svc := services.NewAuthService(security.DefaultSecurityConfig())

		user, err := svc.Register(context.Background(), models.RegisterForm{
			Name:            "Test Visitor",
			Email:           "visitor@example.com",
			Phone:           "+91 9876543210",
			Password:        "Password1",
			ConfirmPassword: "Password1",
			Role:            models.RoleVisitor,
		})

		require.NoError(t, err)
		assert.NotNil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("verified account blocks the address", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("visitor@example.com").
			WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userRow("old-hash", true)...))

		svc := services.NewAuthService(security.DefaultSecurityConfig())

		user, err := svc.Register(context.Background(), models.RegisterForm{
			Name:            "Test Visitor",
			Email:           "visitor@example.com",
			Phone:           "+91 9876543210",
			Password:        "Password1",
			ConfirmPassword: "Password1",
			Role:            models.RoleVisitor,
		})

		assert.Nil(t, user)
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email", verr.Field)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
