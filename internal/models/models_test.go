// Package models_test provides unit tests for data model structures.
// Tests validate model field assignments, data integrity, and struct behavior
// without requiring database connections or external dependencies.
package models_test

import (
	"testing"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// TestUserModel verifies User model structure and field assignments.
// Ensures the User struct correctly stores and retrieves basic account
// information. Business logic validation (email format, role restrictions)
// is tested in the service layer.
func TestUserModel(t *testing.T) {
	// Arrange - Create a User instance with test data
	user := models.User{
		Email:      "test@example.com",
		Name:       "Test User",
		Role:       models.RoleDepartmentAgent,
		Department: "IT",
	}

	// Assert - Verify email field is correctly assigned
	// Email is the primary identifier for authentication
	if user.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", user.Email)
	}

	// Additional validation for other critical fields
	if user.Name != "Test User" {
		t.Errorf("Expected name 'Test User', got %s", user.Name)
	}

	// Verify role field assignment
	// Role determines authorization and access control
	if user.Role != "department_agent" {
		t.Errorf("Expected role 'department_agent', got %s", user.Role)
	}

	// Department agents carry their department on the account
	if user.Department != "IT" {
		t.Errorf("Expected department 'IT', got %s", user.Department)
	}

	t.Logf("User model structure validated successfully")
}

// TestRoleConstants pins the role constant values stored in the database.
// These strings appear in the users.role CHECK constraint and in sessions,
// so a change here is a schema migration, not a refactor.
func TestRoleConstants(t *testing.T) {
	if models.RoleVisitor != "visitor" {
		t.Errorf("Expected RoleVisitor 'visitor', got %s", models.RoleVisitor)
	}
	if models.RoleSecurity != "security" {
		t.Errorf("Expected RoleSecurity 'security', got %s", models.RoleSecurity)
	}
	if models.RoleDepartmentAgent != "department_agent" {
		t.Errorf("Expected RoleDepartmentAgent 'department_agent', got %s", models.RoleDepartmentAgent)
	}
}

// TestStatusConstants pins the application status values stored in the
// applications.status column and its CHECK constraint.
func TestStatusConstants(t *testing.T) {
	statuses := map[string]string{
		models.StatusPending:   "pending",
		models.StatusForwarded: "forwarded",
		models.StatusApproved:  "approved",
		models.StatusRejected:  "rejected",
	}
	for got, want := range statuses {
		if got != want {
			t.Errorf("Expected status constant %q, got %q", want, got)
		}
	}
}

// TestApplicationModel verifies Application field assignment, including the
// denormalized visitor snapshot captured at submission time.
func TestApplicationModel(t *testing.T) {
	app := models.Application{
		ID:         "a-1",
		UserID:     "u-1",
		UserName:   "Test Visitor",
		UserEmail:  "visitor@example.com",
		Purpose:    "Equipment inspection",
		Department: "IT",
		Status:     models.StatusPending,
	}

	if app.Status != "pending" {
		t.Errorf("Expected status 'pending', got %s", app.Status)
	}
	if app.UserName != "Test Visitor" {
		t.Errorf("Expected snapshot name 'Test Visitor', got %s", app.UserName)
	}
	// A pending application carries no credential
	if app.QRCode != "" {
		t.Errorf("Expected empty QRCode on pending application, got %s", app.QRCode)
	}
}

// TestOTPLogModel verifies OTPLog field assignment and the unconsumed state.
func TestOTPLogModel(t *testing.T) {
	log := models.OTPLog{
		Email: "visitor@example.com",
		OTP:   "123456",
		Kind:  models.OTPKindRegistration,
	}

	if log.Kind != "registration" {
		t.Errorf("Expected kind 'registration', got %s", log.Kind)
	}
	if models.OTPKindPasswordReset != "password_reset" {
		t.Errorf("Expected OTPKindPasswordReset 'password_reset', got %s", models.OTPKindPasswordReset)
	}
	// A freshly issued code has no consumption timestamp
	if log.ConsumedAt != nil {
		t.Errorf("Expected nil ConsumedAt on new OTP, got %v", log.ConsumedAt)
	}
}
