// Package security provides input validation functionality.
package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// ValidationService provides centralized input validation functions.
// All validation methods return descriptive errors that are safe to show to users.
type ValidationService struct {
	config *SecurityConfig
}

// NewValidationService creates a new validation service with security configuration.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{
		config: config,
	}
}

// ValidateEmail validates email address format according to RFC 5322.
// Returns error if email is invalid or too long.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > 255 {
		return fmt.Errorf("email must be less than 255 characters")
	}

	// Use Go's standard mail.ParseAddress for RFC 5322 compliance
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword validates password meets minimum security requirements.
// Requirements: At least 8 characters, contains uppercase, lowercase, and number.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}

	// Check for required character types
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidatePhone validates phone number format.
// Accepts digits, spaces, hyphens and an optional leading plus.
func (v *ValidationService) ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}

	matched := regexp.MustCompile(`^\+?[0-9][0-9\s\-]{6,19}$`).MatchString(phone)
	if !matched {
		return fmt.Errorf("invalid phone number format")
	}

	return nil
}

// ValidateUserRole validates user role is one of the allowed values.
func (v *ValidationService) ValidateUserRole(role string) error {
	if role == "" {
		return fmt.Errorf("role is required")
	}

	allowedRoles := map[string]bool{
		models.RoleVisitor:         true,
		models.RoleSecurity:        true,
		models.RoleDepartmentAgent: true,
	}

	if !allowedRoles[role] {
		return fmt.Errorf("invalid role (must be 'visitor', 'security' or 'department_agent')")
	}

	return nil
}

// ValidateDepartmentName validates department name length and format.
func (v *ValidationService) ValidateDepartmentName(name string) error {
	if name == "" {
		return fmt.Errorf("department name is required")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("department name cannot be empty")
	}

	if utf8.RuneCountInString(name) > v.config.MaxDepartmentLength {
		return fmt.Errorf("department name must be %d characters or less", v.config.MaxDepartmentLength)
	}

	// Only allow alphanumeric, spaces, hyphens, underscores, ampersands
	matched := regexp.MustCompile(`^[a-zA-Z0-9\s\-_&]+$`).MatchString(name)
	if !matched {
		return fmt.Errorf("department name can only contain letters, numbers, spaces, hyphens, underscores, and ampersands")
	}

	return nil
}

// ValidatePurpose validates the visit purpose text.
func (v *ValidationService) ValidatePurpose(purpose string) error {
	if strings.TrimSpace(purpose) == "" {
		return fmt.Errorf("purpose is required")
	}

	if utf8.RuneCountInString(purpose) > v.config.MaxPurposeLength {
		return fmt.Errorf("purpose must be %d characters or less", v.config.MaxPurposeLength)
	}

	return nil
}

// ValidateComment validates stage comment length. Empty comments are allowed.
func (v *ValidationService) ValidateComment(comment string) error {
	if utf8.RuneCountInString(comment) > v.config.MaxCommentLength {
		return fmt.Errorf("comment must be %d characters or less", v.config.MaxCommentLength)
	}

	return nil
}

// SanitizeString removes potentially dangerous characters from string input.
// Removes control characters and normalizes whitespace.
func (v *ValidationService) SanitizeString(input string) string {
	// Remove control characters (except newline and tab)
	input = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`).ReplaceAllString(input, "")

	// Normalize whitespace
	input = strings.TrimSpace(input)

	return input
}

// ValidateRequired checks if a required field is present and non-empty.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	return nil
}

// ValidateLength validates string length is within bounds.
func (v *ValidationService) ValidateLength(fieldName string, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}

	if length > max {
		return fmt.Errorf("%s must be %d characters or less", fieldName, max)
	}

	return nil
}
