// Package models defines the domain entities and data transfer objects for the
// SAIL gate-pass system. It includes database models mapped to PostgreSQL tables,
// form DTOs for user input, and view models for template rendering.
package models

import "time"

// ============================================================================
// Roles and Application Statuses
// ============================================================================

// User roles. A user holds exactly one role for the lifetime of the account.
const (
	RoleVisitor         = "visitor"          // Submits visit requests
	RoleSecurity        = "security"         // First-stage triage of pending requests
	RoleDepartmentAgent = "department_agent" // Final decision for one named department
)

// Application statuses. Lifecycle: pending -> forwarded -> approved/rejected,
// or pending -> rejected directly at the security stage.
const (
	StatusPending   = "pending"
	StatusForwarded = "forwarded"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a system account with role-based access control.
// Visitors submit requests, security actors triage them, and department
// agents decide forwarded requests for their own department.
//
// Database Table: users
// Security Note: PasswordHash should never be exposed in responses or logs
type User struct {
	ID            string    `db:"id"`             // Primary key (uuid)
	Email         string    `db:"email"`          // Unique, lowercased, used for login
	Name          string    `db:"name"`           // Display name
	Phone         string    `db:"phone"`          // Contact number
	Role          string    `db:"role"`           // visitor, security or department_agent
	Department    string    `db:"department"`     // Required for department_agent, empty otherwise
	PasswordHash  string    `db:"password_hash"`  // bcrypt hashed password
	EmailVerified bool      `db:"email_verified"` // OTP verification completed
	CreatedAt     time.Time `db:"created_at"`     // Account creation timestamp
}

// Application represents one visit request and its approval trail.
// The visitor's name/email/phone are denormalized copies captured at
// submission time; they do not track later account edits.
//
// Database Table: applications
// Invariant: QRCode is non-empty if and only if Status is approved.
type Application struct {
	ID                 string    `db:"id"`                  // Primary key (uuid)
	UserID             string    `db:"user_id"`             // Owning visitor's account id
	UserName           string    `db:"user_name"`           // Visitor name at submission
	UserEmail          string    `db:"user_email"`          // Visitor email at submission
	UserPhone          string    `db:"user_phone"`          // Visitor phone at submission
	Purpose            string    `db:"purpose"`             // Free-text reason for the visit
	Department         string    `db:"department"`          // Target department name
	VisitDate          string    `db:"visit_date"`          // Opaque string, not validated as a calendar value
	VisitTime          string    `db:"visit_time"`          // Opaque string
	Duration           string    `db:"duration"`            // Opaque string
	VehicleNumber      string    `db:"vehicle_number"`      // Optional vehicle identifier
	Status             string    `db:"status"`              // pending, forwarded, approved or rejected
	SecurityComments   string    `db:"security_comments"`   // Set by the security stage only
	DepartmentComments string    `db:"department_comments"` // Set by the department stage only
	ApprovedBy         string    `db:"approved_by"`         // Department agent who made the final decision
	QRCode             string    `db:"qr_code"`             // Serialized credential payload, approved only
	CreatedAt          time.Time `db:"created_at"`          // Submission timestamp
	UpdatedAt          time.Time `db:"updated_at"`          // Last transition timestamp
}

// Department represents an entry in the destination department directory.
//
// Database Table: departments
type Department struct {
	ID   string `db:"id"`   // Primary key (uuid)
	Name string `db:"name"` // Unique department name (e.g., "IT", "HR")
}

// OTPLog represents a one-time password issued for email verification or
// password reset. OTPs are six digits and expire ten minutes after issue.
//
// Database Table: otp_logs
type OTPLog struct {
	ID         string     `db:"id"`          // Primary key (uuid)
	Email      string     `db:"email"`       // Recipient address, lowercased
	OTP        string     `db:"otp"`         // Six-digit code
	Kind       string     `db:"kind"`        // "registration" or "password_reset"
	ExpiresAt  time.Time  `db:"expires_at"`  // Issue time + 10 minutes
	ConsumedAt *time.Time `db:"consumed_at"` // When the code was used (nil if unused)
	CreatedAt  time.Time  `db:"created_at"`  // Issue timestamp
}

// OTP kinds stored in otp_logs.kind.
const (
	OTPKindRegistration  = "registration"
	OTPKindPasswordReset = "password_reset"
)

// ============================================================================
// Data Transfer Objects (DTOs) - Form Input
// ============================================================================

// LoginForm represents user login credentials from the login form.
type LoginForm struct {
	Email    string // User's email address
	Password string // Plain-text password (hashed before storage)
}

// RegisterForm represents data from the registration form.
// Department is required only when Role is department_agent.
type RegisterForm struct {
	Name            string // Display name
	Email           string // Login email
	Phone           string // Contact number
	Role            string // Requested role
	Department      string // Department name (department_agent only)
	Password        string // Plain-text password
	ConfirmPassword string // Must match Password
}

// ApplicationForm represents a visit request submission.
// VehicleNumber is the only optional field.
type ApplicationForm struct {
	Purpose       string // Reason for the visit
	Department    string // Destination department name
	VisitDate     string // Requested date
	VisitTime     string // Requested time
	Duration      string // Expected duration
	VehicleNumber string // Optional vehicle identifier
}

// DecisionForm represents a security or department decision submission.
type DecisionForm struct {
	ApplicationID string // Application being decided
	Comments      string // Stage comments (empty allowed at the security stage)
}

// ============================================================================
// View Models - Template Rendering
// ============================================================================

// ApplicationView is an enriched application for template rendering.
// PassImage carries the QR image as a data URI for approved applications.
type ApplicationView struct {
	Application        // Embedded Application fields
	PassImage   string // base64 PNG data URI, empty unless approved
}

// SecurityQueues partitions the full application collection for the
// security dashboard. Security sees everything regardless of department.
type SecurityQueues struct {
	Pending   []Application // Actionable: awaiting triage
	Rejected  []Application // Rejected at the security stage
	Processed []Application // Forwarded or approved
}

// DepartmentQueues partitions one department's applications for the
// department dashboard. Applications still pending are invisible here.
type DepartmentQueues struct {
	Forwarded []Application // Actionable: awaiting the department decision
	Processed []Application // Approved or rejected
}
