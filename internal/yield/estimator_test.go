package yield

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/provider"
)

func init() {
	_ = logger.Init("error", "json")
}

type fakeLookup struct {
	match domain.YieldConfigMatch
	found bool
	err   error
	calls int
}

func (f *fakeLookup) Lookup(_ context.Context, _, _, _, _ string) (domain.YieldConfigMatch, bool, error) {
	f.calls++
	return f.match, f.found, f.err
}

func ragiRequest() Request {
	return Request{
		Crop:           "Ragi",
		Acres:          2,
		SoilType:       "Red",
		Season:         "Kharif (Monsoon)",
		IrrigationType: "Rainfed",
		District:       "Kolar",
		State:          "Karnataka",
	}
}

func TestEstimator_StaticFallback(t *testing.T) {
	est := NewEstimator(nil, nil, nil).Estimate(context.Background(), ragiRequest())

	require.Equal(t, 4.76, est.YieldPerAcre)
	require.Equal(t, 9.5, est.ExpectedYield)
	require.Equal(t, SourceFallback, est.Source)
	require.Equal(t, Unit, est.Unit)
	require.Equal(t, "Kolar", est.District)
	require.Equal(t, 2.0, est.Acres)
}

func TestEstimator_TierPrecedence(t *testing.T) {
	dbRow := domain.YieldConfigMatch{
		Config: domain.CropYieldConfig{ID: 7, CropName: "Ragi", YieldQuintalsPerAcre: 6.5, IsActive: true},
		Tier:   2,
	}

	tests := []struct {
		name       string
		provider   provider.YieldProvider
		lookup     *fakeLookup
		wantSource string
		wantYield  float64
		wantTotal  float64
	}{
		{
			name:       "external wins over db and static",
			provider:   provider.NewMockYieldProvider(provider.YieldQuote{YieldPerAcre: 7.123, Source: "agri-api"}),
			lookup:     &fakeLookup{match: dbRow, found: true},
			wantSource: "agri-api",
			wantYield:  7.12,
			wantTotal:  14.2,
		},
		{
			name:       "db used when provider fails",
			provider:   failingProvider(),
			lookup:     &fakeLookup{match: dbRow, found: true},
			wantSource: SourceDBConfig,
			wantYield:  6.5,
			wantTotal:  13,
		},
		{
			name:       "db used when provider disabled",
			lookup:     &fakeLookup{match: dbRow, found: true},
			wantSource: SourceDBConfig,
			wantYield:  6.5,
			wantTotal:  13,
		},
		{
			name:       "static when db misses",
			provider:   failingProvider(),
			lookup:     &fakeLookup{},
			wantSource: SourceFallback,
			wantYield:  4.76,
			wantTotal:  9.5,
		},
		{
			name:       "static when db errors",
			lookup:     &fakeLookup{err: errors.New("connection refused")},
			wantSource: SourceFallback,
			wantYield:  4.76,
			wantTotal:  9.5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEstimator(DefaultTable(), tc.lookup, tc.provider)
			est := e.Estimate(context.Background(), ragiRequest())

			require.Equal(t, tc.wantSource, est.Source)
			require.Equal(t, tc.wantYield, est.YieldPerAcre)
			require.Equal(t, tc.wantTotal, est.ExpectedYield)
		})
	}
}

func TestEstimator_ExternalHitSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{found: true}
	p := provider.NewMockYieldProvider(provider.YieldQuote{YieldPerAcre: 3, Source: "x"})

	NewEstimator(nil, lookup, p).Estimate(context.Background(), ragiRequest())
	require.Zero(t, lookup.calls)
	require.Len(t, p.Calls(), 1)
	require.Equal(t, "Kolar", p.Calls()[0].District)
}

func TestEstimator_ExpectedYieldUsesUnroundedRate(t *testing.T) {
	p := provider.NewMockYieldProvider(provider.YieldQuote{YieldPerAcre: 1.004, Source: "x"})
	req := ragiRequest()
	req.Acres = 100

	est := NewEstimator(nil, nil, p).Estimate(context.Background(), req)
	require.Equal(t, 1.0, est.YieldPerAcre)
	require.Equal(t, 100.4, est.ExpectedYield)
}

func TestEstimator_YieldPerAcre(t *testing.T) {
	v, src := NewEstimator(nil, nil, nil).YieldPerAcre(context.Background(), ragiRequest())
	require.Equal(t, 4.76, v)
	require.Equal(t, SourceFallback, src)
}

func failingProvider() *provider.MockYieldProvider {
	p := provider.NewMockYieldProvider(provider.YieldQuote{})
	p.FailWith(errors.New("timeout"))
	return p
}
