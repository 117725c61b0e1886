package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"agroplan.io/agroplan/internal/api/handlers"
	"agroplan.io/agroplan/internal/usecase"
)

// ReviewModule wires administrator review. Decisions enqueue notification
// jobs transactionally, so the module needs the River client.
type ReviewModule struct {
	reviews *usecase.ReviewUseCase
}

// NewReviewModule creates the review module after the River client is initialized.
func NewReviewModule(infra *Infrastructure) (*ReviewModule, error) {
	if infra == nil || infra.Pool == nil || infra.RiverClient == nil {
		return nil, fmt.Errorf("review module requires pgx pool and river client")
	}
	return &ReviewModule{
		reviews: usecase.NewReviewUseCase(infra.Pool, infra.RiverClient, infra.AuditLogger, infra.Pools),
	}, nil
}

func (m *ReviewModule) Name() string { return "review" }

func (m *ReviewModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Reviews = m.reviews
}

func (m *ReviewModule) RegisterWorkers(_ *river.Workers) {}

func (m *ReviewModule) Shutdown(context.Context) error { return nil }
