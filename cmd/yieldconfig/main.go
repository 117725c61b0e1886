// Package main imports and exports crop yield configs as .xlsx workbooks,
// using the same rules as the admin HTTP endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/config"
	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	"agroplan.io/agroplan/internal/infrastructure"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/usecase"
)

const usage = `usage:
  yieldconfig -admin-phone PHONE import FILE.xlsx
  yieldconfig export FILE.xlsx`

func main() {
	adminPhone := flag.String("admin-phone", os.Getenv("YIELDCONFIG_ADMIN_PHONE"), "admin account the import is attributed to")
	flag.Parse()

	if err := run(*adminPhone, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "yieldconfig: %v\n", err)
		os.Exit(1)
	}
}

func run(adminPhone string, args []string) error {
	cmd, path, err := parseArgs(args)
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	queries := repository.New(db.Pool)
	// Without pools audit entries are written inline, before the process exits.
	configs := usecase.NewYieldConfigUseCase(db.Pool, audit.NewLogger(queries), nil)

	switch cmd {
	case "export":
		data, err := configs.Export(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("Exported yield configs", zap.String("path", path), zap.Int("bytes", len(data)))
		return nil
	default:
		actor, err := resolveAdmin(ctx, queries, adminPhone)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		summary, err := configs.Import(ctx, actor, f)
		if err != nil {
			return err
		}
		logger.Info("Imported yield configs",
			zap.Int("created", summary.Created),
			zap.Int("updated", summary.Updated),
			zap.Int("failed", summary.Failed),
		)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
}

func parseArgs(args []string) (cmd, path string, err error) {
	if len(args) != 2 {
		return "", "", errors.New(usage)
	}
	cmd, path = strings.ToLower(args[0]), args[1]
	if cmd != "import" && cmd != "export" {
		return "", "", fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return "", "", fmt.Errorf("%s: expected an .xlsx file", path)
	}
	return cmd, path, nil
}

type accountFinder interface {
	GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error)
}

func resolveAdmin(ctx context.Context, accounts accountFinder, phone string) (domain.Actor, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.Actor{}, errors.New("import requires -admin-phone")
	}
	acct, err := accounts.GetAccountByPhone(ctx, phone)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("find admin %s: %w", phone, err)
	}
	if acct.Role != domain.RoleAdmin {
		return domain.Actor{}, fmt.Errorf("account %s is not an admin", phone)
	}
	return domain.Actor{AccountID: acct.ID, Role: acct.Role}, nil
}
