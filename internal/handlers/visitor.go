// Package handlers implements HTTP request handlers for the gate-pass
// application. This file contains visitor handlers for submitting
// applications and tracking their status.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/mr-alpha10/sail-gate-pass/internal/middleware"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/pass"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

// VisitorHandler handles all visitor-specific HTTP requests.
// Includes the dashboard, application submission and gate-pass display.
type VisitorHandler struct {
	store          *session.Store
	appService     *services.ApplicationService
	viewService    *services.ViewService
	deptRepo       *repository.DepartmentRepository
	encoder        *pass.Encoder
	securityLogger *security.Logger
}

// NewVisitorHandler creates a new instance of VisitorHandler with
// initialized service dependencies.
func NewVisitorHandler(store *session.Store, securityLogger *security.Logger) *VisitorHandler {
	return &VisitorHandler{
		store:          store,
		appService:     services.NewApplicationService(),
		viewService:    services.NewViewService(),
		deptRepo:       repository.NewDepartmentRepository(),
		encoder:        pass.NewEncoder(0),
		securityLogger: securityLogger,
	}
}

// Dashboard displays the visitor dashboard with all their applications,
// newest first. Approved applications carry an inline QR image of the
// gate-pass credential.
//
// Template: visitor/dashboard.html with the application list and submit form
func (h *VisitorHandler) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	applications, err := h.viewService.VisitorApplications(c.Context(), user.ID)
	if err != nil {
		return err
	}

	// Attach a rendered pass image to each approved application
	views := make([]models.ApplicationView, 0, len(applications))
	for i := range applications {
		view := models.ApplicationView{Application: applications[i]}
		if applications[i].Status == models.StatusApproved && applications[i].QRCode != "" {
			if payload, err := pass.ParsePayload(applications[i].QRCode); err == nil {
				if uri, err := h.encoder.EncodeDataURI(payload); err == nil {
					view.PassImage = uri
				}
			}
		}
		views = append(views, view)
	}

	departments, err := h.deptRepo.List(c.Context())
	if err != nil {
		departments = nil
	}

	return c.Render("visitor/dashboard", fiber.Map{
		"Title":        "My Applications - SAIL Gate Pass",
		"UserName":     user.Name,
		"UserRole":     user.Role,
		"Applications": views,
		"Departments":  departments,
		"Success":      c.Query("success"),
		"Error":        c.Query("error"),
	})
}

// SubmitApplication handles the gate-pass application form submission.
// Creates a new application in pending state scoped to the authenticated
// visitor.
//
// Form Data:
//   - purpose, department, visit_date, visit_time, duration,
//     vehicle_number (optional)
//
// Side Effects:
//   - Inserts an application row with status pending
//   - Logs the submission event
//   - Redirects back to the dashboard with a success or error flag
func (h *VisitorHandler) SubmitApplication(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	form := models.ApplicationForm{
		Purpose:       c.FormValue("purpose"),
		Department:    c.FormValue("department"),
		VisitDate:     c.FormValue("visit_date"),
		VisitTime:     c.FormValue("visit_time"),
		Duration:      c.FormValue("duration"),
		VehicleNumber: c.FormValue("vehicle_number"),
	}

	app, err := h.appService.Submit(c.Context(), user, form)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Redirect("/visitor/dashboard?error=" + verr.Field)
		}
		return c.Redirect("/visitor/dashboard?error=submit_failed")
	}

	if h.securityLogger != nil {
		h.securityLogger.SecurityEvent(
			security.EventApplicationSubmit,
			user.ID,
			user.Email,
			c.IP(),
			c.Get("User-Agent"),
			map[string]interface{}{
				"application_id": app.ID,
				"department":     app.Department,
			},
		)
	}

	return c.Redirect("/visitor/dashboard?success=submitted")
}

// PassImage serves the gate-pass QR code for an approved application as a
// PNG. Only the owning visitor can fetch their pass image.
//
// URL Param: id (application ID)
func (h *VisitorHandler) PassImage(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	applicationID := c.Params("id")

	appRepo := repository.NewApplicationRepository()
	app, err := appRepo.GetByID(c.Context(), applicationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Application not found")
	}

	// Object-level authorization: the pass belongs to its applicant only
	if app.UserID != user.ID {
		if h.securityLogger != nil {
			h.securityLogger.SecurityEvent(
				security.EventUnauthorizedAccess,
				user.ID,
				user.Email,
				c.IP(),
				c.Get("User-Agent"),
				map[string]interface{}{
					"action":         "pass_image",
					"application_id": applicationID,
				},
			)
		}
		return c.Status(fiber.StatusForbidden).SendString("Access denied")
	}

	if app.Status != models.StatusApproved || app.QRCode == "" {
		return c.Status(fiber.StatusNotFound).SendString("No gate pass issued for this application")
	}

	payload, err := pass.ParsePayload(app.QRCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Stored pass is unreadable")
	}

	png, err := h.encoder.EncodePNG(payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to render pass")
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
