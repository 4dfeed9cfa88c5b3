// Package security provides centralized security configuration and utilities
// for the gate-pass application.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
// These values are tuned based on OWASP ASVS and NIST guidelines.
type SecurityConfig struct {
	// Secure password storage
	BcryptCost int // Cost factor for bcrypt hashing (recommended: 12)

	// Secure session management
	SessionTimeout    time.Duration // Session inactivity timeout
	SessionCookieName string        // Name of session cookie
	SessionSecure     bool          // Require HTTPS for session cookies
	SessionHTTPOnly   bool          // Prevent JavaScript access to session cookies
	SessionSameSite   string        // CSRF protection via SameSite attribute

	// Brute force protection
	LoginRateLimit          int           // Max login attempts per minute per IP
	AccountLockoutThreshold int           // Failed attempts before account lockout
	AccountLockoutDuration  time.Duration // How long account stays locked

	// Input validation
	MaxPurposeLength    int // Maximum characters in visit purpose
	MaxCommentLength    int // Maximum characters in stage comments
	MaxDepartmentLength int // Maximum characters in department name
	QueryTimeout        time.Duration

	// Rate limiting (requests per time window)
	RateLimitSubmit   int // Application submission endpoint
	RateLimitDecision int // Forward/approve/reject endpoints
	RateLimitOTP      int // OTP issue/resend endpoints

	// One-time passwords
	OTPLength   int           // Digits in a generated OTP
	OTPValidity time.Duration // How long an OTP stays usable

	// Security monitoring
	AlertThresholdFailures int // Failed logins from one IP before alerting
}

// DefaultSecurityConfig returns security configuration with recommended defaults.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		// Bcrypt cost 12 = 2^12 iterations
		BcryptCost: 12,

		// Session configuration
		SessionTimeout:    8 * time.Hour,
		SessionCookieName: "gatepass_session",
		SessionSecure:     true,     // Requires HTTPS
		SessionHTTPOnly:   true,     // No JavaScript access
		SessionSameSite:   "Strict", // Strong CSRF protection

		// Brute force protection
		LoginRateLimit:          5,
		AccountLockoutThreshold: 10,
		AccountLockoutDuration:  30 * time.Minute,

		// Input validation limits
		MaxPurposeLength:    500,
		MaxCommentLength:    500,
		MaxDepartmentLength: 100,
		QueryTimeout:        30 * time.Second,

		// Rate limits
		RateLimitSubmit:   10, // per hour per visitor
		RateLimitDecision: 30, // per minute per reviewer
		RateLimitOTP:      3,  // per ten minutes per address

		// OTP policy matches the verification emails sent at registration
		OTPLength:   6,
		OTPValidity: 10 * time.Minute,

		// Security monitoring
		AlertThresholdFailures: 5,
	}
}
