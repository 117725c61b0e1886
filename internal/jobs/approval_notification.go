package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/notification"
)

// ApprovalNotificationArgs tells a farmer about a review decision. It is
// inserted in the decision's transaction, so it exists iff the decision
// committed.
type ApprovalNotificationArgs struct {
	FarmerID   int64                 `json:"farmer_id"`
	EntityType string                `json:"entity_type"`
	EntityID   int64                 `json:"entity_id"`
	Status     domain.ApprovalStatus `json:"status"`
	Remark     string                `json:"remark,omitempty"`
}

// Kind returns the job kind identifier.
func (ApprovalNotificationArgs) Kind() string { return "approval_notification" }

// InsertOpts retries delivery a few times on the default queue.
func (ApprovalNotificationArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 5,
	}
}

// ReviewNotifier is satisfied by *notification.Triggers.
type ReviewNotifier interface {
	OnReviewed(ctx context.Context, r notification.Review) error
}

// ApprovalNotificationWorker writes the inbox entry for a decision.
type ApprovalNotificationWorker struct {
	river.WorkerDefaults[ApprovalNotificationArgs]
	notifier ReviewNotifier
}

// NewApprovalNotificationWorker creates the worker.
func NewApprovalNotificationWorker(notifier ReviewNotifier) *ApprovalNotificationWorker {
	return &ApprovalNotificationWorker{notifier: notifier}
}

// Work delivers the notification.
func (w *ApprovalNotificationWorker) Work(ctx context.Context, job *river.Job[ApprovalNotificationArgs]) error {
	if w == nil || w.notifier == nil {
		return fmt.Errorf("approval notification worker is not initialized")
	}
	a := job.Args
	return w.notifier.OnReviewed(ctx, notification.Review{
		FarmerID:   a.FarmerID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Status:     a.Status,
		Remark:     a.Remark,
	})
}
