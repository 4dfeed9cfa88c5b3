// Package handlers implements HTTP request handlers for the gate-pass
// application. This file contains security officer handlers for screening
// pending applications.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/mr-alpha10/sail-gate-pass/internal/middleware"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

// SecurityHandler handles all security officer HTTP requests.
// Security officers screen every pending application and either forward it
// to the target department or reject it outright.
type SecurityHandler struct {
	store          *session.Store
	appService     *services.ApplicationService
	viewService    *services.ViewService
	securityLogger *security.Logger
}

// NewSecurityHandler creates a new instance of SecurityHandler with
// initialized service dependencies.
func NewSecurityHandler(store *session.Store, securityLogger *security.Logger) *SecurityHandler {
	return &SecurityHandler{
		store:          store,
		appService:     services.NewApplicationService(),
		viewService:    services.NewViewService(),
		securityLogger: securityLogger,
	}
}

// Dashboard displays the security desk with three queues: pending
// applications awaiting screening, applications rejected at the security
// stage, and processed applications that moved on to a department.
//
// Template: security/dashboard.html with the three queue tables
func (h *SecurityHandler) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	queues, err := h.viewService.SecurityView(c.Context())
	if err != nil {
		return err
	}

	return c.Render("security/dashboard", fiber.Map{
		"Title":     "Security Desk - SAIL Gate Pass",
		"UserName":  user.Name,
		"UserRole":  user.Role,
		"Pending":   queues.Pending,
		"Rejected":  queues.Rejected,
		"Processed": queues.Processed,
		"Success":   c.Query("success"),
		"Error":     c.Query("error"),
	})
}

// Forward moves a pending application to the forwarded state so the target
// department can decide on it.
//
// URL Param: id (application ID)
// Form Data:
//   - comments: Optional screening notes recorded on the application
//
// Side Effects:
//   - Updates the application status atomically; a concurrent decision on
//     the same application leaves this request with an error flag
func (h *SecurityHandler) Forward(c *fiber.Ctx) error {
	return h.decide(c, "forward")
}

// Reject refuses a pending application at the security stage.
//
// URL Param: id (application ID)
// Form Data:
//   - comments: Optional reason recorded on the application
func (h *SecurityHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, "reject")
}

// decide runs a security-stage decision and translates service errors into
// dashboard redirect flags.
func (h *SecurityHandler) decide(c *fiber.Ctx, action string) error {
	user := middleware.CurrentUser(c)
	applicationID := c.Params("id")
	comments := c.FormValue("comments")

	var err error
	event := security.EventApplicationForward
	if action == "forward" {
		_, err = h.appService.Forward(c.Context(), user, applicationID, comments)
	} else {
		event = security.EventApplicationReject
		_, err = h.appService.RejectAtSecurity(c.Context(), user, applicationID, comments)
	}

	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Redirect("/security/dashboard?error=not_found")
		case errors.Is(err, services.ErrInvalidState):
			// The application was already decided, possibly by a concurrent
			// request; the dashboard shows its current state.
			return c.Redirect("/security/dashboard?error=already_decided")
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).SendString("Access denied")
		default:
			return c.Redirect("/security/dashboard?error=decision_failed")
		}
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			event,
			user.ID,
			user.Email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"application_id": applicationID,
				"stage":          "security",
			},
		)
	}

	return c.Redirect("/security/dashboard?success=" + action + "ed")
}
