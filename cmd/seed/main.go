// Package main seeds the administrator account.
//
// Accounts are normally provisioned by the identity service that issues
// tokens. This command exists for local setups: it upserts an admin account
// and can print a signed token for it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"agroplan.io/agroplan/internal/api/middleware"
	"agroplan.io/agroplan/internal/app/modules"
	"agroplan.io/agroplan/internal/config"
	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/infrastructure"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/repository"
)

type options struct {
	phone      string
	name       string
	password   string
	printToken bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.phone, "phone", os.Getenv("SEED_ADMIN_PHONE"), "admin phone number")
	flag.StringVar(&opts.name, "name", "Administrator", "admin display name")
	flag.StringVar(&opts.password, "password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password")
	flag.BoolVar(&opts.printToken, "print-token", false, "print a signed token for the admin")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	account, err := buildAdminAccount(opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	// Schema and River migrations are expected to have run; this command only
	// performs idempotent data bootstrap.
	saved, err := repository.New(db.Pool).UpsertAccount(ctx, account)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	logger.Info("Seeded admin account",
		zap.Int64("account_id", saved.ID),
		zap.String("phone", saved.Phone),
	)

	if opts.printToken {
		token, expiresAt, err := middleware.GenerateToken(modules.NewJWTConfig(cfg), saved.ID, saved.Role)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		logger.Info("Issued admin token", zap.Time("expires_at", expiresAt))
		fmt.Println(token)
	}
	return nil
}

// buildAdminAccount validates opts and hashes the password.
func buildAdminAccount(opts options) (domain.Account, error) {
	phone := strings.TrimSpace(opts.phone)
	if phone == "" {
		return domain.Account{}, errors.New("admin phone is required (-phone or SEED_ADMIN_PHONE)")
	}
	if len(opts.password) < 8 {
		return domain.Account{}, errors.New("admin password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash admin password: %w", err)
	}
	name := strings.TrimSpace(opts.name)
	if name == "" {
		name = "Administrator"
	}
	return domain.Account{
		Phone:        phone,
		Name:         name,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
	}, nil
}
