package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/config"
	"agroplan.io/agroplan/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestBootstrap_FailsWithoutDatabase(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     65432,
			User:     "agroplan",
			Password: "agroplan",
			Database: "agroplan",
			SSLMode:  "disable",
			MaxConns: 2,
			MinConns: 0,
		},
		Worker: config.WorkerConfig{GeneralPoolSize: 4, EstimatePoolSize: 2},
		Yield:  config.YieldConfig{ProviderTimeout: time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application, err := Bootstrap(ctx, cfg)
	require.Error(t, err)
	require.Nil(t, application)
}

func TestApplication_StartWithoutRiverIsNoop(t *testing.T) {
	application := &Application{Config: &config.Config{}}
	require.NoError(t, application.Start(context.Background()))
}

func TestApplication_ShutdownEmpty(t *testing.T) {
	require.NotPanics(t, func() { (&Application{}).Shutdown() })
	require.NotPanics(t, func() {
		(&Application{Config: &config.Config{Server: config.ServerConfig{ShutdownTimeout: time.Second}}}).Shutdown()
	})
}
