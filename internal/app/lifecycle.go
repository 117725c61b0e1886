package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/pkg/logger"
)

const defaultStopTimeout = 30 * time.Second

// Start begins consuming River jobs. Periodic jobs marked RunOnStart are
// enqueued here.
func (a *Application) Start(ctx context.Context) error {
	if a.DB == nil || a.DB.RiverClient == nil {
		return nil
	}
	if err := a.DB.RiverClient.Start(ctx); err != nil {
		return fmt.Errorf("start river client: %w", err)
	}
	logger.Info("River client started", zap.Int("modules", len(a.Modules)))
	return nil
}

// Shutdown stops River, then the modules, then the pools and the database.
// River gets up to the server shutdown timeout to finish running jobs.
func (a *Application) Shutdown() {
	timeout := defaultStopTimeout
	if a.Config != nil && a.Config.Server.ShutdownTimeout > 0 {
		timeout = a.Config.Server.ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Stop(ctx); err != nil {
			logger.Error("River client did not stop cleanly", zap.Error(err))
		} else {
			logger.Info("River client stopped")
		}
	}

	for _, mod := range a.Modules {
		if mod == nil {
			continue
		}
		if err := mod.Shutdown(ctx); err != nil {
			logger.Warn("Module shutdown failed",
				zap.String("module", mod.Name()),
				zap.Error(err),
			)
		}
	}

	if a.Pools != nil {
		a.Pools.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
