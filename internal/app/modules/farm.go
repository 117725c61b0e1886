package modules

import (
	"context"

	"github.com/riverqueue/river"

	"agroplan.io/agroplan/internal/api/handlers"
	"agroplan.io/agroplan/internal/usecase"
)

// FarmModule wires the farmer-facing use cases: profile, lands, crop plans,
// the inbox and crop recommendations.
type FarmModule struct {
	farmers         *usecase.FarmerUseCase
	recommendations *usecase.RecommendationUseCase
}

// NewFarmModule creates the farm module.
func NewFarmModule(infra *Infrastructure) *FarmModule {
	return &FarmModule{
		farmers:         usecase.NewFarmerUseCase(infra.Pool, infra.Estimator, infra.AuditLogger, infra.Pools),
		recommendations: usecase.NewRecommendationUseCase(infra.Pool, infra.Config.Yield.RecommendationBenchmarkAcres),
	}
}

func (m *FarmModule) Name() string { return "farm" }

func (m *FarmModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Farmers = m.farmers
	deps.Recommendations = m.recommendations
}

func (m *FarmModule) RegisterWorkers(_ *river.Workers) {}

func (m *FarmModule) Shutdown(context.Context) error { return nil }
