// Package services provides the business logic layer for the gate-pass
// application. This file implements the application lifecycle engine: the
// status state machine, its transition guards, and the side effects each
// transition produces.
//
// State machine:
//
//	submit  : (none)    -> pending    (visitor)
//	forward : pending   -> forwarded  (security)          sets security comments
//	reject  : pending   -> rejected   (security)          sets security comments
//	approve : forwarded -> approved   (department agent)  sets department comments,
//	                                                      approver name, credential
//	reject  : forwarded -> rejected   (department agent)  sets department comments,
//	                                                      approver name
//
// approved and rejected are terminal. Transitions are enforced twice: the
// engine checks the loaded record's status, and the repository pins the
// expected status in the UPDATE's WHERE clause, so a concurrent double
// decision loses with ErrInvalidState instead of silently overwriting.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/pass"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
)

// Transition identifies one lifecycle state change for authorization checks.
type Transition string

// Lifecycle transitions.
const (
	TransitionSubmit         Transition = "submit"
	TransitionForward        Transition = "forward"
	TransitionRejectSecurity Transition = "reject_security"
	TransitionApprove        Transition = "approve"
	TransitionRejectFinal    Transition = "reject_final"
)

// ApplicationService is the application lifecycle engine.
// All operations take the acting user explicitly; nothing is read from
// ambient state. Authorization is enforced here, not trusted to callers.
type ApplicationService struct {
	appRepo *repository.ApplicationRepository
}

// NewApplicationService creates the lifecycle engine with its repository.
func NewApplicationService() *ApplicationService {
	return &ApplicationService{
		appRepo: repository.NewApplicationRepository(),
	}
}

// Authorize checks whether actor may perform the given transition on app.
// app may be nil only for TransitionSubmit. Returns ErrForbidden on denial.
//
// Guards:
//   - submit: actor holds the visitor role
//   - forward / security reject: actor holds the security role; security may
//     act on any pending application regardless of department
//   - approve / final reject: actor is a department agent whose department
//     matches the application's target department
func (s *ApplicationService) Authorize(actor *models.User, app *models.Application, t Transition) error {
	if actor == nil {
		return ErrForbidden
	}

	switch t {
	case TransitionSubmit:
		if actor.Role != models.RoleVisitor {
			return ErrForbidden
		}
	case TransitionForward, TransitionRejectSecurity:
		if actor.Role != models.RoleSecurity {
			return ErrForbidden
		}
	case TransitionApprove, TransitionRejectFinal:
		if actor.Role != models.RoleDepartmentAgent {
			return ErrForbidden
		}
		if app == nil || actor.Department == "" || actor.Department != app.Department {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}

	return nil
}

// Submit creates a new visit application in pending state.
// The visitor's name, email and phone are denormalized onto the record at
// this instant and never track later account edits.
//
// Returns *ValidationError when a required field is missing, ErrForbidden
// when the actor is not a visitor, or *UpdateError when the store create
// fails. Exactly one store create is issued on success.
func (s *ApplicationService) Submit(ctx context.Context, visitor *models.User, form models.ApplicationForm) (*models.Application, error) {
	if err := s.Authorize(visitor, nil, TransitionSubmit); err != nil {
		return nil, err
	}

	required := []struct{ field, value string }{
		{"purpose", form.Purpose},
		{"department", form.Department},
		{"visit date", form.VisitDate},
		{"visit time", form.VisitTime},
		{"duration", form.Duration},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, &ValidationError{Field: f.field, Reason: "is required"}
		}
	}

	app := &models.Application{
		ID:            uuid.NewString(),
		UserID:        visitor.ID,
		UserName:      visitor.Name,
		UserEmail:     visitor.Email,
		UserPhone:     visitor.Phone,
		Purpose:       form.Purpose,
		Department:    form.Department,
		VisitDate:     form.VisitDate,
		VisitTime:     form.VisitTime,
		Duration:      form.Duration,
		VehicleNumber: form.VehicleNumber,
		Status:        models.StatusPending,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, &UpdateError{Op: "create application", Err: err}
	}

	return app, nil
}

// Forward transitions a pending application to forwarded, passing it to the
// target department for a decision. comments may be empty.
func (s *ApplicationService) Forward(ctx context.Context, actor *models.User, applicationID, comments string) (*models.Application, error) {
	return s.securityDecision(ctx, actor, applicationID, comments, TransitionForward, models.StatusForwarded)
}

// RejectAtSecurity transitions a pending application directly to rejected
// without involving the department.
func (s *ApplicationService) RejectAtSecurity(ctx context.Context, actor *models.User, applicationID, comments string) (*models.Application, error) {
	return s.securityDecision(ctx, actor, applicationID, comments, TransitionRejectSecurity, models.StatusRejected)
}

// securityDecision applies a security-stage transition. The application must
// exist and still be pending.
func (s *ApplicationService) securityDecision(ctx context.Context, actor *models.User, applicationID, comments string, t Transition, newStatus string) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.Authorize(actor, app, t); err != nil {
		return nil, err
	}

	if app.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	updated, err := s.appRepo.ApplySecurityDecision(ctx, applicationID, newStatus, comments)
	if err != nil {
		// The record existed moments ago; a vanished pending row means a
		// concurrent decision won the race.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidState
		}
		return nil, &UpdateError{Op: "update application", Err: err}
	}

	return updated, nil
}

// Approve transitions a forwarded application to approved and issues the
// gate-pass credential. The payload is built from the application's current
// fields plus the approver's name and the approval instant; validity runs
// 24 hours from approval. Approval is not idempotent: a repeat call fails
// with ErrInvalidState rather than re-issuing.
func (s *ApplicationService) Approve(ctx context.Context, actor *models.User, applicationID, comments string) (*models.Application, error) {
	app, err := s.loadForDepartmentDecision(ctx, actor, applicationID, TransitionApprove)
	if err != nil {
		return nil, err
	}

	payload := pass.BuildPayload(app, actor.Name, time.Now())
	qr, err := payload.Marshal()
	if err != nil {
		return nil, err
	}

	updated, err := s.appRepo.ApplyDepartmentDecision(ctx, applicationID, models.StatusApproved, comments, actor.Name, qr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidState
		}
		return nil, &UpdateError{Op: "update application", Err: err}
	}

	return updated, nil
}

// Reject transitions a forwarded application to rejected at the department
// stage, recording the deciding agent's name. No credential is issued.
func (s *ApplicationService) Reject(ctx context.Context, actor *models.User, applicationID, comments string) (*models.Application, error) {
	if _, err := s.loadForDepartmentDecision(ctx, actor, applicationID, TransitionRejectFinal); err != nil {
		return nil, err
	}

	updated, err := s.appRepo.ApplyDepartmentDecision(ctx, applicationID, models.StatusRejected, comments, actor.Name, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidState
		}
		return nil, &UpdateError{Op: "update application", Err: err}
	}

	return updated, nil
}

// loadForDepartmentDecision fetches the application and runs the shared
// department-stage guards: the record must exist, the actor must be the
// matching department's agent, and the status must be forwarded.
func (s *ApplicationService) loadForDepartmentDecision(ctx context.Context, actor *models.User, applicationID string, t Transition) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.Authorize(actor, app, t); err != nil {
		return nil, err
	}

	if app.Status != models.StatusForwarded {
		return nil, ErrInvalidState
	}

	return app, nil
}
