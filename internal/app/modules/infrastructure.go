package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/config"
	"agroplan.io/agroplan/internal/governance/audit"
	"agroplan.io/agroplan/internal/infrastructure"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/pkg/worker"
	"agroplan.io/agroplan/internal/provider"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/yield"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config      *config.Config
	DB          *infrastructure.DatabaseClients
	Pools       *worker.Pools
	Pool        *pgxpool.Pool
	Queries     *repository.Queries
	RiverClient *river.Client[pgx.Tx]
	AuditLogger *audit.Logger
	Estimator   *yield.Estimator
}

// NewInfrastructure initializes DB, pools and the yield estimator.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize:  cfg.Worker.GeneralPoolSize,
		EstimatePoolSize: cfg.Worker.EstimatePoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	estimator, err := newEstimator(cfg.Yield, db.Pool)
	if err != nil {
		pools.Shutdown()
		db.Close()
		return nil, err
	}

	queries := repository.New(db.Pool)
	return &Infrastructure{
		Config:      cfg,
		DB:          db,
		Pools:       pools,
		Pool:        db.Pool,
		Queries:     queries,
		AuditLogger: audit.NewLogger(queries),
		Estimator:   estimator,
	}, nil
}

// newEstimator chains the external provider (when configured), the yield
// config table and the static model.
func newEstimator(cfg config.YieldConfig, db repository.DBTX) (*yield.Estimator, error) {
	table, err := yield.LoadTable(cfg.TablePath)
	if err != nil {
		return nil, fmt.Errorf("load yield table: %w", err)
	}

	var external provider.YieldProvider
	if cfg.ProviderURL != "" {
		external = provider.NewHTTPYieldProvider(cfg.ProviderURL, cfg.ProviderTimeout)
		logger.Info("External yield provider enabled",
			zap.String("url", cfg.ProviderURL),
			zap.Duration("timeout", cfg.ProviderTimeout),
		)
	}
	return yield.NewEstimator(table, repository.NewYieldConfigRepository(db), external), nil
}

// InitRiver initializes the River client on top of a prepared worker registry.
func (i *Infrastructure) InitRiver(workers *river.Workers, periodic []*river.PeriodicJob) error {
	if i == nil || i.DB == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	i.RiverClient = i.DB.RiverClient
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
