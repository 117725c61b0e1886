package yield

import (
	"context"
	"math"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/provider"
)

// Provenance tags for the non-external tiers.
const (
	SourceDBConfig = "db_crop_yield_config"
	SourceFallback = "local_fallback_table"
	Unit           = "quintals"
)

// ConfigLookup finds an administrator-maintained yield row by decreasing
// specificity.
type ConfigLookup interface {
	Lookup(ctx context.Context, crop, soil, season, irrigation string) (domain.YieldConfigMatch, bool, error)
}

// Request is one estimate query. Crop must be non-empty and Acres positive;
// callers validate that.
type Request struct {
	Crop           string
	Acres          float64
	SoilType       string
	Season         string
	IrrigationType string
	District       string
	State          string
}

// Estimate is the resolved figure plus the tier that produced it.
type Estimate struct {
	Crop          string  `json:"crop"`
	District      string  `json:"district"`
	State         string  `json:"state"`
	Acres         float64 `json:"acres"`
	YieldPerAcre  float64 `json:"yield_per_acre"`
	ExpectedYield float64 `json:"expected_yield"`
	Unit          string  `json:"unit"`
	Source        string  `json:"source"`
}

// Estimator resolves yields from provider, then configs, then the static
// table.
type Estimator struct {
	table    *Table
	configs  ConfigLookup
	provider provider.YieldProvider
}

// NewEstimator wires an Estimator. A nil provider disables the external tier
// and a nil configs disables the repository tier. A nil table uses the
// built-in one.
func NewEstimator(table *Table, configs ConfigLookup, p provider.YieldProvider) *Estimator {
	if table == nil {
		table = DefaultTable()
	}
	return &Estimator{table: table, configs: configs, provider: p}
}

// Table returns the static model in use.
func (e *Estimator) Table() *Table {
	return e.table
}

// Estimate never fails: upstream errors are logged and the next tier is tried.
func (e *Estimator) Estimate(ctx context.Context, req Request) Estimate {
	perAcre, source := e.resolve(ctx, req)
	return Estimate{
		Crop:          req.Crop,
		District:      req.District,
		State:         req.State,
		Acres:         req.Acres,
		YieldPerAcre:  round(perAcre, 2),
		ExpectedYield: round(perAcre*req.Acres, 1),
		Unit:          Unit,
		Source:        source,
	}
}

// YieldPerAcre is Estimate without the acreage arithmetic.
func (e *Estimator) YieldPerAcre(ctx context.Context, req Request) (float64, string) {
	v, src := e.resolve(ctx, req)
	return round(v, 2), src
}

func (e *Estimator) resolve(ctx context.Context, req Request) (float64, string) {
	log := logger.WithContext(ctx).With(zap.String("crop", req.Crop))

	if e.provider != nil {
		quote, err := e.provider.QuoteYield(ctx, provider.YieldQuery{
			Crop:           req.Crop,
			District:       req.District,
			State:          req.State,
			SoilType:       req.SoilType,
			Season:         req.Season,
			IrrigationType: req.IrrigationType,
		})
		if err == nil {
			return quote.YieldPerAcre, quote.Source
		}
		log.Warn("External yield provider failed, falling back", zap.Error(err))
	}

	if e.configs != nil {
		match, ok, err := e.configs.Lookup(ctx, req.Crop, req.SoilType, req.Season, req.IrrigationType)
		switch {
		case err != nil:
			log.Warn("Yield config lookup failed, falling back", zap.Error(err))
		case ok:
			log.Debug("Yield config matched",
				zap.Int64("config_id", match.Config.ID),
				zap.Int("tier", match.Tier),
			)
			return match.Config.YieldQuintalsPerAcre, SourceDBConfig
		}
	}

	return e.table.YieldPerAcre(req.Crop, req.SoilType, req.Season, req.IrrigationType), SourceFallback
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
