package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	"agroplan.io/agroplan/internal/notification"
	"agroplan.io/agroplan/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

type recordingNotifier struct {
	got []notification.Review
	err error
}

func (r *recordingNotifier) OnReviewed(_ context.Context, rev notification.Review) error {
	r.got = append(r.got, rev)
	return r.err
}

func TestApprovalNotificationWorker(t *testing.T) {
	n := &recordingNotifier{}
	w := NewApprovalNotificationWorker(n)

	job := &river.Job[ApprovalNotificationArgs]{
		JobRow: &rivertype.JobRow{ID: 1},
		Args: ApprovalNotificationArgs{
			FarmerID: 2, EntityType: notification.EntityLand, EntityID: 9,
			Status: domain.ApprovalRejected, Remark: "survey number missing",
		},
	}
	require.NoError(t, w.Work(context.Background(), job))
	require.Equal(t, []notification.Review{{
		FarmerID: 2, EntityType: notification.EntityLand, EntityID: 9,
		Status: domain.ApprovalRejected, Remark: "survey number missing",
	}}, n.got)

	n.err = errors.New("insert failed")
	require.Error(t, w.Work(context.Background(), job))

	var nilWorker *ApprovalNotificationWorker
	require.Error(t, nilWorker.Work(context.Background(), job))
}

func TestApprovalNotificationArgs(t *testing.T) {
	require.Equal(t, "approval_notification", ApprovalNotificationArgs{}.Kind())
	require.Equal(t, 5, ApprovalNotificationArgs{}.InsertOpts().MaxAttempts)
}

type fakeOverruns struct {
	rows []domain.AllocationOverrun
	err  error
}

func (f fakeOverruns) ListAllocationOverruns(context.Context) ([]domain.AllocationOverrun, error) {
	return f.rows, f.err
}

type auditRecorder struct {
	events []domain.AuditEvent
}

func (a *auditRecorder) InsertAuditLog(_ context.Context, e domain.AuditEvent) error {
	a.events = append(a.events, e)
	return nil
}

func TestAllocationAuditWorker(t *testing.T) {
	rec := &auditRecorder{}
	w := NewAllocationAuditWorker(fakeOverruns{rows: []domain.AllocationOverrun{
		{LandID: 4, FarmerID: 1, LandArea: 5, PlannedAcres: 6, Excess: 1},
		{LandID: 8, FarmerID: 2, LandArea: 1, PlannedAcres: 3, Excess: 2},
	}}, audit.NewLogger(rec))

	require.NoError(t, w.Work(context.Background(), nil))
	require.Len(t, rec.events, 2)
	require.Equal(t, domain.EventAllocationOverrun, rec.events[0].Type)
	require.Equal(t, "4", rec.events[0].ResourceID)
	require.Nil(t, rec.events[0].ActorAccountID)

	w = NewAllocationAuditWorker(fakeOverruns{err: errors.New("timeout")}, nil)
	require.Error(t, w.Work(context.Background(), nil))

	require.Error(t, (&AllocationAuditWorker{}).Work(context.Background(), nil))
}
