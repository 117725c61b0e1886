package modules

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"agroplan.io/agroplan/internal/api/handlers"
	"agroplan.io/agroplan/internal/jobs"
	"agroplan.io/agroplan/internal/notification"
)

// NotificationModule owns the inbox workers: decision delivery and
// retention cleanup.
type NotificationModule struct {
	infra    *Infrastructure
	triggers *notification.Triggers
}

// NewNotificationModule creates the notification module.
func NewNotificationModule(infra *Infrastructure) *NotificationModule {
	return &NotificationModule{
		infra:    infra,
		triggers: notification.NewTriggers(notification.NewInboxSender(infra.Queries)),
	}
}

func (m *NotificationModule) Name() string { return "notification" }

func (m *NotificationModule) ContributeServerDeps(_ *handlers.ServerDeps) {}

func (m *NotificationModule) RegisterWorkers(workers *river.Workers) {
	river.AddWorker(workers, jobs.NewApprovalNotificationWorker(m.triggers))
	river.AddWorker(workers, jobs.NewNotificationCleanupWorker(m.infra.Queries, m.infra.Config.Audit.NotificationRetention))
}

// PeriodicJobs runs the retention cleanup daily and once on startup.
func (m *NotificationModule) PeriodicJobs() []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.NotificationCleanupArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}

func (m *NotificationModule) Shutdown(context.Context) error { return nil }
