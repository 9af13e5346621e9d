package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/devbackend"
	"github.com/servicemarket/admin-console/internal/infrastructure/config"
	"github.com/servicemarket/admin-console/internal/infrastructure/db/mongo"
	"github.com/servicemarket/admin-console/pkg/logger"
)

const demoPassword = "password123"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "devbackend: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "devbackend"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openAccounts(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := devbackend.NewService(repo, devbackend.ServiceConfig{
		JWTSecret: cfg.Dev.JWTSecret,
		TokenTTL:  cfg.Dev.TokenTTL,
	}, log)
	seedDemoAccounts(ctx, svc, log)

	e := devbackend.NewRouter(svc, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Dev.Port).Str("user_store", cfg.Dev.UserStore).Msg("dev auth backend listening")
		if err := e.Start(":" + cfg.Dev.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openAccounts(ctx context.Context, cfg *config.Config) (devbackend.AccountRepository, func(), error) {
	if cfg.Dev.UserStore != "mongo" {
		return devbackend.NewMemoryAccounts(), func() {}, nil
	}

	db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Storage.MongoURI, Database: cfg.Storage.MongoDatabase})
	if err != nil {
		return nil, nil, err
	}
	repo := mongo.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, nil, err
	}
	return repo, func() { _ = db.Client().Disconnect(context.Background()) }, nil
}

// seedDemoAccounts creates one verified account per role. Existing accounts
// are left alone.
func seedDemoAccounts(ctx context.Context, svc *devbackend.Service, log zerolog.Logger) {
	demo := []devbackend.RegisterInput{
		{Name: "Platform Admin", Email: "admin@example.com", Role: domain.RoleSuperadmin},
		{Name: "Acme Supplies", Email: "company@example.com", Role: domain.RoleCompany},
		{Name: "Downtown Salon", Email: "salon@example.com", Role: domain.RoleSalon},
		{Name: "Jamie Worker", Email: "worker@example.com", Role: domain.RoleWorker},
	}
	for _, in := range demo {
		in.Password = demoPassword
		if _, err := svc.Seed(ctx, in); err != nil && !errors.Is(err, devbackend.ErrAccountExists) {
			log.Warn().Err(err).Str("email", in.Email).Msg("seed demo account")
			continue
		}
		log.Info().Str("email", in.Email).Str("role", string(in.Role)).Msg("demo account available")
	}
}
