package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/mr-alpha10/sail-gate-pass/internal/mail"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
)

// OTPService issues and verifies one-time codes sent over email. Codes are
// single-use, tied to a purpose (registration or password reset) and expire
// after the configured validity window.
type OTPService struct {
	otpRepo  *repository.OTPRepository
	userRepo *repository.UserRepository
	mailer   *mail.Mailer
	config   *security.SecurityConfig
}

// NewOTPService creates an OTPService backed by the shared database handle
// and the process mailer.
func NewOTPService(mailer *mail.Mailer, config *security.SecurityConfig) *OTPService {
	return &OTPService{
		otpRepo:  repository.NewOTPRepository(),
		userRepo: repository.NewUserRepository(),
		mailer:   mailer,
		config:   config,
	}
}

// GenerateOTP returns a cryptographically random numeric code of the
// configured length. Leading zeros are preserved.
func (s *OTPService) GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.config.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", s.config.OTPLength, n), nil
}

// Issue generates a fresh code for the address, records it and emails it.
// Any previous unconsumed code for the same address and kind is superseded
// because Verify always checks the most recent one.
func (s *OTPService) Issue(ctx context.Context, email, name, kind string) error {
	code, err := s.GenerateOTP()
	if err != nil {
		return err
	}

	entry := &models.OTPLog{
		ID:        uuid.NewString(),
		Email:     email,
		OTP:       code,
		Kind:      kind,
		ExpiresAt: time.Now().Add(s.config.OTPValidity),
	}
	if err := s.otpRepo.Create(ctx, entry); err != nil {
		return &UpdateError{Op: "store otp", Err: err}
	}

	if err := s.mailer.SendOTP(email, name, code, kind); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

// Verify checks the submitted code against the most recent unconsumed entry
// for the address and kind. On success the code is consumed; a registration
// code additionally marks the account's email as verified.
//
// Error Cases:
//   - no outstanding code, or code mismatch: ErrOTPInvalid
//   - outstanding code past its expiry: ErrOTPExpired
func (s *OTPService) Verify(ctx context.Context, email, code, kind string) error {
	entry, err := s.otpRepo.FindLatest(ctx, email, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPInvalid
		}
		return err
	}

	if time.Now().After(entry.ExpiresAt) {
		return ErrOTPExpired
	}
	if entry.OTP != code {
		return ErrOTPInvalid
	}

	if err := s.otpRepo.MarkConsumed(ctx, entry.ID); err != nil {
		return &UpdateError{Op: "consume otp", Err: err}
	}

	if kind == models.OTPKindRegistration {
		if err := s.userRepo.MarkEmailVerified(ctx, email); err != nil {
			return &UpdateError{Op: "verify email", Err: err}
		}
	}
	return nil
}

// Resend issues a replacement code for an address that has a pending
// verification. The account must exist and must not already be verified.
func (s *OTPService) Resend(ctx context.Context, email, kind string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if kind == models.OTPKindRegistration && user.EmailVerified {
		return &ValidationError{Field: "email", Reason: "already verified"}
	}
	return s.Issue(ctx, email, user.Name, kind)
}
