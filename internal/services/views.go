// Package services provides the business logic layer for the gate-pass
// application. This file implements the three role-scoped read projections
// over the application collection. Each view is a pure filter/group over the
// same records; nothing is cached and nothing is mutated.
package services

import (
	"context"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
)

// ViewService produces the role-scoped dashboard projections.
type ViewService struct {
	appRepo *repository.ApplicationRepository
}

// NewViewService creates a ViewService with its repository.
func NewViewService() *ViewService {
	return &ViewService{
		appRepo: repository.NewApplicationRepository(),
	}
}

// VisitorApplications returns every application owned by the given visitor,
// any status, newest first. Approved entries carry their credential payload
// for display.
func (s *ViewService) VisitorApplications(ctx context.Context, userID string) ([]models.Application, error) {
	return s.appRepo.ListByUser(ctx, userID)
}

// SecurityView partitions the full application collection for the security
// dashboard. Security sees everything; there is no department filter.
//
// Partitions:
//   - Pending: actionable, awaiting triage
//   - Rejected: rejected at the security stage, i.e. rejected with no
//     department comments (department rejections carry them)
//   - Processed: forwarded or approved
func (s *ViewService) SecurityView(ctx context.Context) (*models.SecurityQueues, error) {
	apps, err := s.appRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	queues := &models.SecurityQueues{}
	for _, app := range apps {
		switch {
		case app.Status == models.StatusPending:
			queues.Pending = append(queues.Pending, app)
		case app.Status == models.StatusRejected && app.DepartmentComments == "":
			queues.Rejected = append(queues.Rejected, app)
		case app.Status == models.StatusForwarded || app.Status == models.StatusApproved:
			queues.Processed = append(queues.Processed, app)
		}
	}

	return queues, nil
}

// DepartmentView partitions one department's applications for the department
// dashboard. Applications still pending (not yet forwarded by security) are
// invisible here.
//
// Partitions:
//   - Forwarded: actionable, awaiting the department decision
//   - Processed: approved or rejected
func (s *ViewService) DepartmentView(ctx context.Context, department string) (*models.DepartmentQueues, error) {
	apps, err := s.appRepo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	queues := &models.DepartmentQueues{}
	for _, app := range apps {
		switch app.Status {
		case models.StatusForwarded:
			queues.Forwarded = append(queues.Forwarded, app)
		case models.StatusApproved, models.StatusRejected:
			queues.Processed = append(queues.Processed, app)
		}
	}

	return queues, nil
}
