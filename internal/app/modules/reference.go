package modules

import (
	"context"

	"github.com/riverqueue/river"

	"agroplan.io/agroplan/internal/api/handlers"
	"agroplan.io/agroplan/internal/jobs"
	"agroplan.io/agroplan/internal/usecase"
)

// ReferenceModule wires the yield reference data: estimates, config
// maintenance and the periodic allocation audit.
type ReferenceModule struct {
	infra        *Infrastructure
	yieldConfigs *usecase.YieldConfigUseCase
	estimates    *usecase.EstimateUseCase
}

// NewReferenceModule creates the reference module.
func NewReferenceModule(infra *Infrastructure) *ReferenceModule {
	cfg := infra.Config.Yield
	return &ReferenceModule{
		infra:        infra,
		yieldConfigs: usecase.NewYieldConfigUseCase(infra.Pool, infra.AuditLogger, infra.Pools),
		estimates:    usecase.NewEstimateUseCase(infra.Estimator, cfg.DefaultDistrict, cfg.DefaultState),
	}
}

func (m *ReferenceModule) Name() string { return "reference" }

func (m *ReferenceModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.YieldConfigs = m.yieldConfigs
	deps.Estimates = m.estimates
}

func (m *ReferenceModule) RegisterWorkers(workers *river.Workers) {
	river.AddWorker(workers, jobs.NewAllocationAuditWorker(m.infra.Queries, m.infra.AuditLogger))
}

// PeriodicJobs schedules the allocation audit.
func (m *ReferenceModule) PeriodicJobs() []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(m.infra.Config.Audit.AllocationAuditInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.AllocationAuditArgs{}, nil
			},
			nil,
		),
	}
}

func (m *ReferenceModule) Shutdown(context.Context) error { return nil }
