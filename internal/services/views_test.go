// Package services_test provides unit tests for the business logic layer.
// View service tests verify each role's dashboard projection: ownership
// scoping for visitors, the three-way security partition, and the
// department partition that hides unscreened applications.
package services_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/services"
)

// mixedRow builds a mock row with explicit id, department, status and
// department comments, which is the full set of fields the partitions key on.
func mixedRow(id, department, status, deptComments string) []interface{} {
	return []interface{}{
		id, "u-1", "Test Visitor", "visitor@example.com", "+91 9876543210",
		"Vendor meeting", department, "2026-09-01", "10:00", "2 hours", "", status,
		"", deptComments, "", "", testTime, testTime,
	}
}

// TestViewService_VisitorApplications verifies the ownership scope: the
// query is keyed on the visitor's id and returns whatever the store holds
// for them, any status.
func TestViewService_VisitorApplications(t *testing.T) {
	mock := withMockDB(t)

	rows := pgxmock.NewRows(applicationColumns).
		AddRow(mixedRow("a-2", "IT", "approved", "")...).
		AddRow(mixedRow("a-1", "HR", "rejected", "No host")...)

	mock.ExpectQuery("SELECT (.+) FROM applications WHERE user_id").
		WithArgs("u-1").
		WillReturnRows(rows)

	svc := services.NewViewService()

	apps, err := svc.VisitorApplications(context.Background(), "u-1")

	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "a-2", apps[0].ID, "Newest first per the store ordering")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestViewService_SecurityView verifies the three-way partition of the full
// collection. The rejected queue contains only security-stage rejections,
// distinguished by their empty department comments; department rejections
// fall out of all three queues.
func TestViewService_SecurityView(t *testing.T) {
	mock := withMockDB(t)

	rows := pgxmock.NewRows(applicationColumns).
		AddRow(mixedRow("a-1", "IT", "pending", "")...).
		AddRow(mixedRow("a-2", "HR", "forwarded", "")...).
		AddRow(mixedRow("a-3", "IT", "approved", "Cleared")...).
		AddRow(mixedRow("a-4", "IT", "rejected", "")...).         // rejected at security
		AddRow(mixedRow("a-5", "HR", "rejected", "No host")...) // rejected by department

	mock.ExpectQuery("SELECT (.+) FROM applications ORDER BY created_at").
		WillReturnRows(rows)

	svc := services.NewViewService()

	queues, err := svc.SecurityView(context.Background())

	require.NoError(t, err)

	require.Len(t, queues.Pending, 1)
	assert.Equal(t, "a-1", queues.Pending[0].ID)

	require.Len(t, queues.Rejected, 1, "Only the security-stage rejection appears")
	assert.Equal(t, "a-4", queues.Rejected[0].ID)

	require.Len(t, queues.Processed, 2, "Forwarded and approved count as processed")
	assert.Equal(t, "a-2", queues.Processed[0].ID)
	assert.Equal(t, "a-3", queues.Processed[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestViewService_DepartmentView verifies the department partition: the
// query is scoped to one department, forwarded applications are actionable,
// decided ones are history, and pending ones never appear.
func TestViewService_DepartmentView(t *testing.T) {
	mock := withMockDB(t)

	rows := pgxmock.NewRows(applicationColumns).
		AddRow(mixedRow("a-1", "IT", "pending", "")...). // invisible: not yet screened
		AddRow(mixedRow("a-2", "IT", "forwarded", "")...).
		AddRow(mixedRow("a-3", "IT", "approved", "Cleared")...).
		AddRow(mixedRow("a-4", "IT", "rejected", "No host")...)

	mock.ExpectQuery("SELECT (.+) FROM applications WHERE department").
		WithArgs("IT").
		WillReturnRows(rows)

	svc := services.NewViewService()

	queues, err := svc.DepartmentView(context.Background(), "IT")

	require.NoError(t, err)

	require.Len(t, queues.Forwarded, 1, "Only forwarded applications are actionable")
	assert.Equal(t, "a-2", queues.Forwarded[0].ID)

	require.Len(t, queues.Processed, 2, "Approved and rejected are history")

	// Pending applications are invisible to the department
	for _, app := range append(queues.Forwarded, queues.Processed...) {
		assert.NotEqual(t, models.StatusPending, app.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
