package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/pkg/worker"
	"agroplan.io/agroplan/internal/provider"
	"agroplan.io/agroplan/internal/yield"
)

func init() {
	_ = logger.Init("error", "json")
}

func ptr[T any](v T) *T { return &v }

func TestValidateLand(t *testing.T) {
	tests := []struct {
		name    string
		land    domain.Land
		wantErr bool
	}{
		{name: "zero area", land: domain.Land{LandArea: 0}},
		{name: "coordinates in range", land: domain.Land{LandArea: 2.5, Latitude: ptr(12.97), Longitude: ptr(77.59)}},
		{name: "negative area", land: domain.Land{LandArea: -1}, wantErr: true},
		{name: "nan area", land: domain.Land{LandArea: math.NaN()}, wantErr: true},
		{name: "latitude out of range", land: domain.Land{Latitude: ptr(91.0)}, wantErr: true},
		{name: "longitude out of range", land: domain.Land{Longitude: ptr(-181.0)}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateLand(tc.land)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		})
	}
}

func TestEstimateUseCase_Estimate(t *testing.T) {
	u := NewEstimateUseCase(yield.NewEstimator(nil, nil, nil), "Kolar", "Karnataka")
	ctx := context.Background()

	t.Run("static fallback with defaults", func(t *testing.T) {
		got, err := u.Estimate(ctx, yield.Request{
			Crop: " Ragi ", Acres: 2, SoilType: "Red", Season: "Kharif (Monsoon)", IrrigationType: "Rainfed",
		})
		require.NoError(t, err)
		require.Equal(t, "Ragi", got.Crop)
		require.Equal(t, "Kolar", got.District)
		require.Equal(t, "Karnataka", got.State)
		require.Equal(t, 4.76, got.YieldPerAcre)
		require.Equal(t, 9.5, got.ExpectedYield)
		require.Equal(t, yield.SourceFallback, got.Source)
	})

	t.Run("explicit location kept", func(t *testing.T) {
		got, err := u.Estimate(ctx, yield.Request{Crop: "Paddy", Acres: 1, District: "Mandya", State: "KA"})
		require.NoError(t, err)
		require.Equal(t, "Mandya", got.District)
		require.Equal(t, "KA", got.State)
	})

	for _, req := range []yield.Request{
		{Crop: "", Acres: 1},
		{Crop: "Ragi", Acres: 0},
		{Crop: "Ragi", Acres: -2},
		{Crop: "Ragi", Acres: math.Inf(1)},
	} {
		_, err := u.Estimate(ctx, req)
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), "request %+v", req)
	}
}

func TestFarmerUseCase_FillEstimates(t *testing.T) {
	pools, err := worker.NewPools(context.Background(), worker.DefaultPoolConfig())
	require.NoError(t, err)
	defer pools.Shutdown()

	for _, tc := range []struct {
		name  string
		pools *worker.Pools
	}{
		{name: "inline", pools: nil},
		{name: "estimate pool", pools: pools},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mock := provider.NewMockYieldProvider(provider.YieldQuote{YieldPerAcre: 6.123, Source: "mock"})
			u := NewFarmerUseCase(nil, yield.NewEstimator(nil, nil, mock), nil, tc.pools)

			lines := []domain.AllocationLine{
				{CropName: "Tur", Acres: ptr(1.0), ExpectedYieldPerAcre: ptr(2.0)},
				{CropName: "Ragi", Acres: ptr(2.0)},
				{CropName: "Maize", Acres: nil},
				{CropName: "  ", Acres: ptr(1.0)},
				{CropName: "Beans", Acres: ptr(0.0)},
				{CropName: "Onion", Acres: ptr(0.5)},
			}
			land := domain.Land{District: "Kolar", State: "Karnataka", SoilType: "Red", IrrigationType: "Drip"}
			plan := domain.CropPlan{Season: "Rabi (Winter)", IrrigationType: "Canal"}

			require.NoError(t, u.fillEstimates(context.Background(), land, plan, lines))

			require.Equal(t, 2.0, *lines[0].ExpectedYieldPerAcre)
			require.Equal(t, 6.12, *lines[1].ExpectedYieldPerAcre)
			require.Nil(t, lines[2].ExpectedYieldPerAcre)
			require.Nil(t, lines[3].ExpectedYieldPerAcre)
			require.Nil(t, lines[4].ExpectedYieldPerAcre)
			require.Equal(t, 6.12, *lines[5].ExpectedYieldPerAcre)

			calls := mock.Calls()
			require.Len(t, calls, 2)
			for _, q := range calls {
				require.Equal(t, "Red", q.SoilType)
				require.Equal(t, "Canal", q.IrrigationType)
				require.Equal(t, "Rabi (Winter)", q.Season)
				require.Equal(t, "Kolar", q.District)
			}
		})
	}
}

func TestReviewUseCase_ValidateDecision(t *testing.T) {
	admin := domain.Actor{AccountID: 1, Role: domain.RoleAdmin}

	uninitialized := &ReviewUseCase{}
	require.Error(t, uninitialized.validateDecision(admin, domain.Decision{Status: domain.ApprovalApproved}))

	u := NewReviewUseCase(&nopDB{}, &recordingJobs{}, nil, nil)
	require.NoError(t, u.validateDecision(admin, domain.Decision{Status: domain.ApprovalRejected}))

	err := u.validateDecision(domain.Actor{AccountID: 2, Role: domain.RoleFarmer}, domain.Decision{Status: domain.ApprovalApproved})
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	err = u.validateDecision(admin, domain.Decision{Status: "maybe"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	// a remark on its own keeps the stored status
	require.NoError(t, u.validateDecision(admin, domain.Decision{Remark: ptr("check boundary")}))
}

func TestValidateYieldConfig(t *testing.T) {
	require.NoError(t, validateYieldConfig(domain.CropYieldConfig{CropName: "Ragi"}))
	err := validateYieldConfig(domain.CropYieldConfig{CropName: "", YieldQuintalsPerAcre: -1})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Len(t, appErr.FieldErrors, 2)
}

func TestFirstNonBlank(t *testing.T) {
	require.Equal(t, "Red", firstNonBlank(" ", "", "Red", "Black"))
	require.Equal(t, "", firstNonBlank("", "  "))
}
