// Package handlers implements HTTP request handlers for the gate-pass
// application. This file contains department agent handlers for deciding on
// forwarded applications.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/mr-alpha10/sail-gate-pass/internal/middleware"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

// DepartmentHandler handles all department agent HTTP requests.
// Agents see only applications forwarded to their own department and either
// approve them, which issues the gate-pass credential, or reject them.
type DepartmentHandler struct {
	store          *session.Store
	appService     *services.ApplicationService
	viewService    *services.ViewService
	securityLogger *security.Logger
}

// NewDepartmentHandler creates a new instance of DepartmentHandler with
// initialized service dependencies.
func NewDepartmentHandler(store *session.Store, securityLogger *security.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		store:          store,
		appService:     services.NewApplicationService(),
		viewService:    services.NewViewService(),
		securityLogger: securityLogger,
	}
}

// Dashboard displays the department desk with two queues: applications
// forwarded to this agent's department and awaiting a decision, and
// applications the department has already processed. Pending applications
// that security has not screened yet are never shown here.
//
// Template: department/dashboard.html with the two queue tables
func (h *DepartmentHandler) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	queues, err := h.viewService.DepartmentView(c.Context(), user.Department)
	if err != nil {
		return err
	}

	return c.Render("department/dashboard", fiber.Map{
		"Title":      "Department Desk - SAIL Gate Pass",
		"UserName":   user.Name,
		"UserRole":   user.Role,
		"Department": user.Department,
		"Forwarded":  queues.Forwarded,
		"Processed":  queues.Processed,
		"Success":    c.Query("success"),
		"Error":      c.Query("error"),
	})
}

// Approve accepts a forwarded application, issuing the gate-pass credential
// with the agent recorded as approver.
//
// URL Param: id (application ID)
// Form Data:
//   - comments: Optional decision notes recorded on the application
//
// Side Effects:
//   - Sets status approved and stores the credential payload
//   - Logs both the approval and the pass issuance
func (h *DepartmentHandler) Approve(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	applicationID := c.Params("id")
	comments := c.FormValue("comments")

	app, err := h.appService.Approve(c.Context(), user, applicationID, comments)
	if err != nil {
		return h.redirectError(c, err)
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			security.EventApplicationApprove,
			user.ID,
			user.Email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"application_id": app.ID,
				"department":     app.Department,
			},
		)
		h.securityLogger.SecurityEvent(
			security.EventPassIssued,
			user.ID,
			user.Email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"application_id": app.ID,
				"applicant":      app.UserEmail,
			},
		)
	}

	return c.Redirect("/department/dashboard?success=approved")
}

// Reject refuses a forwarded application at the department stage. No
// credential is issued.
//
// URL Param: id (application ID)
// Form Data:
//   - comments: Optional reason recorded on the application
func (h *DepartmentHandler) Reject(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	applicationID := c.Params("id")
	comments := c.FormValue("comments")

	app, err := h.appService.Reject(c.Context(), user, applicationID, comments)
	if err != nil {
		return h.redirectError(c, err)
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			security.EventApplicationReject,
			user.ID,
			user.Email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"application_id": app.ID,
				"department":     app.Department,
				"stage":          "department",
			},
		)
	}

	return c.Redirect("/department/dashboard?success=rejected")
}

// redirectError translates service errors into dashboard redirect flags.
func (h *DepartmentHandler) redirectError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Redirect("/department/dashboard?error=not_found")
	case errors.Is(err, services.ErrInvalidState):
		return c.Redirect("/department/dashboard?error=already_decided")
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).SendString("Access denied")
	default:
		return c.Redirect("/department/dashboard?error=decision_failed")
	}
}
