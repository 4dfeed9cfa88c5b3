// Package services provides the business logic layer for the gate-pass
// application. This file defines the error taxonomy surfaced by the
// application lifecycle engine and the account services.
//
// All errors surface synchronously to the immediate caller; nothing is
// swallowed and nothing triggers background compensation. The application
// record stays in its prior state whenever a call fails.
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by lifecycle and account operations.
// Test with errors.Is; operations wrap them with call context.
var (
	// ErrNotFound is returned when a transition references an application id
	// that does not exist.
	ErrNotFound = errors.New("application not found")

	// ErrInvalidState is returned when an application exists but is not in
	// the stage the requested transition starts from (e.g., approving a
	// record that was never forwarded, or re-deciding a terminal one).
	ErrInvalidState = errors.New("application is not in the required stage")

	// ErrForbidden is returned when the acting user's role or department
	// does not satisfy the transition's guard.
	ErrForbidden = errors.New("actor is not permitted to perform this action")

	// ErrEmailNotVerified is returned at login when the account exists but
	// the registration OTP was never confirmed.
	ErrEmailNotVerified = errors.New("email address not verified")

	// ErrOTPInvalid is returned when the supplied verification code does not
	// match the newest issued code.
	ErrOTPInvalid = errors.New("verification code is incorrect")

	// ErrOTPExpired is returned when the newest issued code is past its
	// validity deadline.
	ErrOTPExpired = errors.New("verification code has expired")
)

// ValidationError reports a missing or malformed required field.
// It is surfaced to the submitting actor; no state change occurs.
type ValidationError struct {
	Field  string // Which field failed
	Reason string // Human-readable reason, safe to display
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpdateError reports that a record-store write did not apply.
// The caller is expected to inform the human actor and allow retry as a
// fresh user-initiated action; the engine itself never auto-retries.
type UpdateError struct {
	Op  string // The operation that failed (e.g., "create application")
	Err error  // Underlying store error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
