// Package services provides the business logic layer for the gate-pass
// application. This file implements account registration and authentication
// using bcrypt for credential storage.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
)

// AuthService handles registration, authentication and password management.
// Provides a layer of abstraction between HTTP handlers and the repository.
//
// Security Notes:
//   - bcrypt with the configured cost for password hashing
//   - Constant-time password comparison prevents timing attacks
//   - Never stores or logs plaintext passwords
type AuthService struct {
	userRepo  *repository.UserRepository
	validator *security.ValidationService
	config    *security.SecurityConfig
}

// NewAuthService creates an AuthService with the given security configuration.
func NewAuthService(config *security.SecurityConfig) *AuthService {
	return &AuthService{
		userRepo:  repository.NewUserRepository(),
		validator: security.NewValidationService(config),
		config:    config,
	}
}

// Authenticate verifies user credentials and returns the user record on
// success. Email matching is case-insensitive (addresses are stored
// lowercased).
//
// Error Cases:
//   - Unknown email or wrong password: repository/bcrypt error; the two are
//     not distinguished for the caller to avoid revealing which users exist
//   - Known account with unverified email: ErrEmailNotVerified; the caller
//     should restart the OTP flow instead of creating a session
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	// Constant-time comparison against the stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password
// using the configured cost factor.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	return string(hash), err
}

// Register validates the registration form and creates an unverified
// account. The caller is responsible for dispatching the verification OTP
// afterwards and for deleting the account if the email cannot be delivered.
//
// Rules:
//   - all fields required; passwords must match and satisfy the policy
//   - role must be one of visitor, security, department_agent
//   - department is required for department_agent and cleared for other roles
//   - a verified account on the same address blocks re-registration; an
//     unverified one is discarded and replaced
func (s *AuthService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(form.Email))

	if err := s.validator.ValidateRequired("name", form.Name); err != nil {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, &ValidationError{Field: "email", Reason: err.Error()}
	}
	if err := s.validator.ValidatePhone(form.Phone); err != nil {
		return nil, &ValidationError{Field: "phone", Reason: err.Error()}
	}
	if err := s.validator.ValidateUserRole(form.Role); err != nil {
		return nil, &ValidationError{Field: "role", Reason: err.Error()}
	}
	if form.Password != form.ConfirmPassword {
		return nil, &ValidationError{Field: "password", Reason: "passwords do not match"}
	}
	if err := s.validator.ValidatePassword(form.Password); err != nil {
		return nil, &ValidationError{Field: "password", Reason: err.Error()}
	}

	department := ""
	if form.Role == models.RoleDepartmentAgent {
		if err := s.validator.ValidateDepartmentName(form.Department); err != nil {
			return nil, &ValidationError{Field: "department", Reason: err.Error()}
		}
		department = strings.TrimSpace(form.Department)
	}

	// A verified account blocks the address; an unverified one is replaced
	// so the visitor can retry a registration whose OTP never arrived.
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.EmailVerified {
			return nil, &ValidationError{Field: "email", Reason: "already registered"}
		}
		if err := s.userRepo.DeleteByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("replace unverified account: %w", err)
		}
	}

	hash, err := s.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          form.Name,
		Phone:         form.Phone,
		Role:          form.Role,
		Department:    department,
		PasswordHash:  hash,
		EmailVerified: false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, &UpdateError{Op: "create user", Err: err}
	}

	return user, nil
}

// DiscardUnverified deletes an account whose verification email could not be
// delivered, so the address can register again cleanly.
func (s *AuthService) DiscardUnverified(ctx context.Context, email string) error {
	return s.userRepo.DeleteByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
