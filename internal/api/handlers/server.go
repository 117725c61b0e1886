// Package handlers implements the AgroPlan HTTP API.
//
// Handlers bind and convert requests, call a use case and render the result.
// Errors go through c.Error and are rendered by middleware.ErrorHandler.
// Routes are registered by the app package.
package handlers

import (
	"context"
	"io"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/usecase"
	"agroplan.io/agroplan/internal/yield"
)

// FarmerService is the farmer-facing use case surface.
type FarmerService interface {
	RegisterProfile(ctx context.Context, actor domain.Actor, in domain.FarmerProfile) (domain.Farmer, error)
	GetProfile(ctx context.Context, actor domain.Actor) (domain.Farmer, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, patch domain.FarmerProfile) (domain.Farmer, error)
	ListNotifications(ctx context.Context, actor domain.Actor, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, actor domain.Actor, id int64) error

	ListLands(ctx context.Context, actor domain.Actor, onlyApproved bool) ([]domain.Land, error)
	GetLand(ctx context.Context, actor domain.Actor, landID int64) (domain.Land, error)
	CreateLand(ctx context.Context, actor domain.Actor, in domain.LandPatch) (domain.Land, error)
	UpdateLand(ctx context.Context, actor domain.Actor, landID int64, patch domain.LandPatch) (domain.Land, error)
	DeleteLand(ctx context.Context, actor domain.Actor, landID int64) error

	ListCropPlans(ctx context.Context, actor domain.Actor) ([]domain.CropPlan, error)
	GetCropPlan(ctx context.Context, actor domain.Actor, planID int64) (domain.CropPlan, error)
	CreateCropPlan(ctx context.Context, actor domain.Actor, in domain.CropPlanInput) (domain.CropPlan, error)
	UpdateCropPlan(ctx context.Context, actor domain.Actor, planID int64, patch domain.CropPlanPatch) (domain.CropPlan, error)
	DeleteCropPlan(ctx context.Context, actor domain.Actor, planID int64) error
}

// ReviewService is the administrator review surface.
type ReviewService interface {
	ListLands(ctx context.Context, filter domain.StatusFilter) ([]domain.LandReview, error)
	ListCropPlans(ctx context.Context, filter domain.StatusFilter) ([]domain.CropPlanReview, error)
	ListFarmers(ctx context.Context, filter domain.StatusFilter) ([]domain.Farmer, error)
	ListOverruns(ctx context.Context) ([]domain.AllocationOverrun, error)
	DecideLand(ctx context.Context, actor domain.Actor, landID int64, d domain.Decision) (usecase.ReviewOutcome, error)
	DecideCropPlan(ctx context.Context, actor domain.Actor, planID int64, d domain.Decision) (usecase.ReviewOutcome, error)
}

// YieldConfigService maintains the yield reference data.
type YieldConfigService interface {
	List(ctx context.Context, filter repository.YieldConfigFilter) ([]domain.CropYieldConfig, error)
	Create(ctx context.Context, actor domain.Actor, c domain.CropYieldConfig) (domain.CropYieldConfig, error)
	Update(ctx context.Context, actor domain.Actor, id int64, patch domain.YieldConfigPatch) (domain.CropYieldConfig, error)
	Import(ctx context.Context, actor domain.Actor, r io.Reader) (usecase.ImportSummary, error)
	Export(ctx context.Context) ([]byte, error)
}

// EstimateService answers public yield estimates.
type EstimateService interface {
	Estimate(ctx context.Context, req yield.Request) (yield.Estimate, error)
}

// RecommendationService classifies crops by the area already planned.
type RecommendationService interface {
	Recommend(ctx context.Context, actor domain.Actor) (domain.CropRecommendation, error)
}

// Pinger reports database reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ FarmerService      = (*usecase.FarmerUseCase)(nil)
	_ ReviewService      = (*usecase.ReviewUseCase)(nil)
	_ YieldConfigService = (*usecase.YieldConfigUseCase)(nil)
	_ EstimateService    = (*usecase.EstimateUseCase)(nil)

	_ RecommendationService = (*usecase.RecommendationUseCase)(nil)
)

// Server holds the use cases behind every endpoint.
type Server struct {
	db           Pinger
	farmers      FarmerService
	reviews      ReviewService
	yieldConfigs YieldConfigService
	estimates    EstimateService

	recommendations RecommendationService

	maxUploadBytes int64
}

// ServerDeps holds all dependencies for creating a Server. Wiring is manual.
type ServerDeps struct {
	DB           Pinger
	Farmers      FarmerService
	Reviews      ReviewService
	YieldConfigs YieldConfigService
	Estimates    EstimateService

	Recommendations RecommendationService

	// MaxUploadBytes caps spreadsheet uploads. Zero means 10 MiB.
	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 10 << 20

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Server{
		db:             deps.DB,
		farmers:        deps.Farmers,
		reviews:        deps.Reviews,
		yieldConfigs:   deps.YieldConfigs,
		estimates:      deps.Estimates,
		maxUploadBytes: maxUpload,

		recommendations: deps.Recommendations,
	}
}
