package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/service"
)

// RecommendationUseCase tells farmers which crops are already widely planned.
type RecommendationUseCase struct {
	queries        *repository.Queries
	benchmarkAcres float64
}

// NewRecommendationUseCase creates the use case. A non-positive
// benchmarkAcres means service.DefaultBenchmarkAcres.
func NewRecommendationUseCase(db repository.DBTX, benchmarkAcres float64) *RecommendationUseCase {
	return &RecommendationUseCase{queries: repository.New(db), benchmarkAcres: benchmarkAcres}
}

// Recommend classifies every planned crop against the benchmark. The caller
// needs a farmer profile.
func (u *RecommendationUseCase) Recommend(ctx context.Context, actor domain.Actor) (domain.CropRecommendation, error) {
	if _, err := farmerForActor(ctx, u.queries, actor); err != nil {
		return domain.CropRecommendation{}, err
	}
	totals, err := u.queries.SumAcresByCrop(ctx)
	if err != nil {
		return domain.CropRecommendation{}, fmt.Errorf("sum acres by crop: %w", err)
	}
	rec := service.RecommendCrops(totals, u.benchmarkAcres)
	logger.WithContext(ctx).Debug("Crop recommendation computed",
		zap.Int("good", len(rec.GoodCrops)),
		zap.Int("risky", len(rec.RiskyCrops)),
	)
	return rec, nil
}
