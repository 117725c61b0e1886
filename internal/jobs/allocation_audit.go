package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	"agroplan.io/agroplan/internal/pkg/logger"
)

// DefaultAllocationAuditInterval is used when no interval is configured.
const DefaultAllocationAuditInterval = 24 * time.Hour

// AllocationAuditArgs is a periodic job that looks for lands whose crop plans
// claim more acres than the land has. Capacity is enforced when a plan is
// written, but shrinking a land afterwards can still leave it overcommitted.
type AllocationAuditArgs struct{}

// Kind returns the job kind identifier.
func (AllocationAuditArgs) Kind() string { return "allocation_audit" }

// InsertOpts keeps a single audit per hour window.
func (AllocationAuditArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: time.Hour,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// OverrunLister is satisfied by *repository.Queries.
type OverrunLister interface {
	ListAllocationOverruns(ctx context.Context) ([]domain.AllocationOverrun, error)
}

// AllocationAuditWorker records every overcommitted land in the audit log.
type AllocationAuditWorker struct {
	river.WorkerDefaults[AllocationAuditArgs]
	store       OverrunLister
	auditLogger *audit.Logger
}

// NewAllocationAuditWorker creates the worker.
func NewAllocationAuditWorker(store OverrunLister, auditLogger *audit.Logger) *AllocationAuditWorker {
	return &AllocationAuditWorker{store: store, auditLogger: auditLogger}
}

// Work lists overruns and audits each one.
func (w *AllocationAuditWorker) Work(ctx context.Context, _ *river.Job[AllocationAuditArgs]) error {
	if w == nil || w.store == nil {
		return fmt.Errorf("allocation audit worker is not initialized")
	}

	overruns, err := w.store.ListAllocationOverruns(ctx)
	if err != nil {
		return fmt.Errorf("list allocation overruns: %w", err)
	}

	for _, o := range overruns {
		logger.Warn("Land allocation exceeds area",
			zap.Int64("land_id", o.LandID),
			zap.Int64("farmer_id", o.FarmerID),
			zap.Float64("land_area", o.LandArea),
			zap.Float64("planned_acres", o.PlannedAcres),
		)
		logAudit(ctx, w.auditLogger, domain.EventAllocationOverrun, o.LandID, o)
	}

	logger.Info("allocation audit completed", zap.Int("overruns", len(overruns)))
	return nil
}
