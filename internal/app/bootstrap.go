// Package app is the composition root. Bootstrap only orchestrates; wiring
// lives in the modules package.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"agroplan.io/agroplan/internal/api/handlers"
	"agroplan.io/agroplan/internal/app/modules"
	"agroplan.io/agroplan/internal/config"
	"agroplan.io/agroplan/internal/infrastructure"
	"agroplan.io/agroplan/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	baseModules := []modules.Module{
		modules.NewFarmModule(infra),
		modules.NewReferenceModule(infra),
		modules.NewNotificationModule(infra),
	}

	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, mod := range baseModules {
		mod.RegisterWorkers(workers)
		if pc, ok := mod.(modules.PeriodicJobContributor); ok {
			periodic = append(periodic, pc.PeriodicJobs()...)
		}
	}
	if err := infra.InitRiver(workers, periodic); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	// Review decisions enqueue jobs inside their transaction, so this module
	// is built once River exists.
	reviewModule, err := modules.NewReviewModule(infra)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init review module: %w", err)
	}

	allModules := append(baseModules, reviewModule)
	server := handlers.NewServer(modules.NewServerDeps(infra, allModules))

	return &Application{
		Config:  cfg,
		Router:  newRouter(cfg, server, modules.NewJWTConfig(cfg)),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Modules: allModules,
	}, nil
}
