// Package handlers implements HTTP request handlers for the gate-pass
// application. This file handles authentication operations including
// registration, email verification, login, logout and session management.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/mr-alpha10/sail-gate-pass/internal/mail"
	"github.com/mr-alpha10/sail-gate-pass/internal/middleware"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

// AuthHandler handles authentication-related HTTP requests.
// Manages registration with OTP email verification, login, logout and
// session lifecycle operations.
type AuthHandler struct {
	store          *session.Store
	authService    *services.AuthService
	otpService     *services.OTPService
	deptRepo       *repository.DepartmentRepository
	securityMW     *middleware.SecurityMiddleware
	securityLogger *security.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
//
// Parameters:
//   - store: Session store for managing user sessions
//   - config: Security configuration shared across the process
//   - mailer: Outbound mailer used for OTP delivery
//   - securityMW: Security middleware providing login rate limiting
//   - securityLogger: Logger for security events
//
// Returns:
//   - *AuthHandler: Initialized handler instance with all dependencies
func NewAuthHandler(store *session.Store, config *security.SecurityConfig, mailer *mail.Mailer, securityMW *middleware.SecurityMiddleware, securityLogger *security.Logger) *AuthHandler {
	return &AuthHandler{
		store:          store,
		authService:    services.NewAuthService(config),
		otpService:     services.NewOTPService(mailer, config),
		deptRepo:       repository.NewDepartmentRepository(),
		securityMW:     securityMW,
		securityLogger: securityLogger,
	}
}

// ShowLogin renders the login page for unauthenticated users.
//
// Template: web/templates/login.html with layouts/blank layout
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Login - SAIL Gate Pass",
	}, "layouts/blank")
}

// Login authenticates user credentials and creates a session.
// Validates email and password, creates session on success, and redirects
// based on user role.
//
// Form Data:
//   - email: User's email address for authentication
//   - password: User's password in plain text (compared against bcrypt hash)
//
// Side Effects:
//   - Creates session with user_id, user_email, user_name, user_role,
//     user_department on success
//   - Redirects to /visitor, /security or /department dashboard by role
//   - Records failures for rate limiting and account lockout
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	// Brute-force protection before touching the database
	if err := h.securityMW.LoginRateLimit(email, c.IP()); err != nil {
		return c.Render("login", fiber.Map{
			"Title": "Login - SAIL Gate Pass",
			"Error": err.Error(),
		}, "layouts/blank")
	}

	user, err := h.authService.Authenticate(c.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotVerified) {
			// Restart the verification flow instead of creating a session
			if resendErr := h.otpService.Resend(c.Context(), email, models.OTPKindRegistration); resendErr == nil {
				return c.Redirect("/verify-email?email=" + email)
			}
		}

		h.securityMW.RecordLoginFailure(email, c.IP())

		return c.Render("login", fiber.Map{
			"Title": "Login - SAIL Gate Pass",
			"Error": "Invalid email or password",
		}, "layouts/blank")
	}

	// Create session
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}

	sess.Set("user_id", user.ID)
	sess.Set("user_email", user.Email)
	sess.Set("user_name", user.Name)
	sess.Set("user_role", user.Role)
	sess.Set("user_department", user.Department)

	if err := sess.Save(); err != nil {
		return err
	}

	h.securityMW.RecordLoginSuccess(user.Email, c.IP(), user.ID)

	return c.Redirect(dashboardPath(user.Role))
}

// Logout destroys the user session and redirects to login page.
//
// Side Effects:
//   - Destroys session if exists
//   - Logs logout event
//   - Redirects to /login regardless of session state
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	// Get user info before destroying session for logging
	userID, _ := sess.Get("user_id").(string)
	userEmail, _ := sess.Get("user_email").(string)

	if h.securityLogger != nil && userID != "" {
		h.securityLogger.SecurityEvent(
			security.EventLogout,
			userID,
			userEmail,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{},
		)
	}

	if err := sess.Destroy(); err != nil {
		return err
	}

	return c.Redirect("/login")
}

// ShowRegister renders the registration page with the department list for
// the department agent role selector.
//
// Template: web/templates/register.html with layouts/blank layout
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	departments, err := h.deptRepo.List(c.Context())
	if err != nil {
		departments = nil
	}

	return c.Render("register", fiber.Map{
		"Title":       "Register - SAIL Gate Pass",
		"Departments": departments,
	}, "layouts/blank")
}

// Register creates an unverified account from the registration form and
// dispatches a verification OTP to the submitted address.
//
// Form Data:
//   - name, email, phone, password, confirm_password, role, department
//
// Side Effects:
//   - Creates an unverified user row; an existing unverified account on the
//     same address is replaced
//   - Sends a registration OTP; if sending fails the account is discarded so
//     the address can register again
//   - Redirects to /verify-email on success
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	form := models.RegisterForm{
		Name:            c.FormValue("name"),
		Email:           c.FormValue("email"),
		Phone:           c.FormValue("phone"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
		Role:            c.FormValue("role"),
		Department:      c.FormValue("department"),
	}

	user, err := h.authService.Register(c.Context(), form)
	if err != nil {
		var verr *services.ValidationError
		message := "Registration failed, please try again"
		if errors.As(err, &verr) {
			message = verr.Error()
		}

		departments, _ := h.deptRepo.List(c.Context())
		return c.Render("register", fiber.Map{
			"Title":       "Register - SAIL Gate Pass",
			"Error":       message,
			"Departments": departments,
			"Form":        form,
		}, "layouts/blank")
	}

	if err := h.otpService.Issue(c.Context(), user.Email, user.Name, models.OTPKindRegistration); err != nil {
		// Without a deliverable OTP the account can never be verified
		_ = h.authService.DiscardUnverified(c.Context(), user.Email)

		departments, _ := h.deptRepo.List(c.Context())
		return c.Render("register", fiber.Map{
			"Title":       "Register - SAIL Gate Pass",
			"Error":       "Could not send verification email, please try again",
			"Departments": departments,
			"Form":        form,
		}, "layouts/blank")
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			security.EventRegistration,
			user.ID,
			user.Email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"role": user.Role,
			},
		)
	}

	return c.Redirect("/verify-email?email=" + user.Email)
}

// ShowVerifyEmail renders the OTP entry page.
//
// Query Param: email (address awaiting verification)
// Template: web/templates/verify_email.html with layouts/blank layout
func (h *AuthHandler) ShowVerifyEmail(c *fiber.Ctx) error {
	return c.Render("verify_email", fiber.Map{
		"Title": "Verify Email - SAIL Gate Pass",
		"Email": c.Query("email"),
	}, "layouts/blank")
}

// VerifyEmail checks the submitted OTP and marks the account verified on
// success.
//
// Form Data:
//   - email: Address being verified
//   - otp: Six-digit code from the verification email
//
// Side Effects:
//   - Consumes the OTP and sets email_verified on the account
//   - Redirects to /login with a success flag
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	email := c.FormValue("email")
	code := c.FormValue("otp")

	err := h.otpService.Verify(c.Context(), email, code, models.OTPKindRegistration)
	if err != nil {
		message := "Verification failed, please try again"
		switch {
		case errors.Is(err, services.ErrOTPExpired):
			message = "OTP has expired, please request a new one"
		case errors.Is(err, services.ErrOTPInvalid):
			message = "Invalid OTP, please check and try again"
		}

		if h.securityLogger != nil {
			h.securityLogger.SecurityEvent(
				security.EventOTPFailure,
				"",
				email,
				c.IP(),
				c.Get("User-Agent"),
				map[string]interface{}{
					"kind": models.OTPKindRegistration,
				},
			)
		}

		return c.Render("verify_email", fiber.Map{
			"Title": "Verify Email - SAIL Gate Pass",
			"Email": email,
			"Error": message,
		}, "layouts/blank")
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			security.EventEmailVerified,
			"",
			email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{},
		)
	}

	return c.Redirect("/login?verified=1")
}

// ResendOTP issues a fresh registration code for an address with a pending
// verification. Rate limited at the route level.
//
// Form Data:
//   - email: Address awaiting verification
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	email := c.FormValue("email")

	if err := h.otpService.Resend(c.Context(), email, models.OTPKindRegistration); err != nil {
		return c.Render("verify_email", fiber.Map{
			"Title": "Verify Email - SAIL Gate Pass",
			"Email": email,
			"Error": "Could not resend OTP, please try again",
		}, "layouts/blank")
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			security.EventOTPIssued,
			"",
			email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"kind": models.OTPKindRegistration,
			},
		)
	}

	return c.Render("verify_email", fiber.Map{
		"Title":   "Verify Email - SAIL Gate Pass",
		"Email":   email,
		"Message": "A new OTP has been sent to your email",
	}, "layouts/blank")
}

// dashboardPath maps a role to its dashboard route.
func dashboardPath(role string) string {
	switch role {
	case models.RoleSecurity:
		return "/security/dashboard"
	case models.RoleDepartmentAgent:
		return "/department/dashboard"
	default:
		return "/visitor/dashboard"
	}
}
