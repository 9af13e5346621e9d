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

	"github.com/servicemarket/admin-console/internal/api"
	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/service"
	"github.com/servicemarket/admin-console/internal/infrastructure/backend"
	"github.com/servicemarket/admin-console/internal/infrastructure/config"
	"github.com/servicemarket/admin-console/internal/infrastructure/queue"
	"github.com/servicemarket/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "console",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("session storage ready")

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		Retries: cfg.Backend.Retries,
	}, log)

	store := service.NewSessionStore(client, storage, service.SessionOptions{
		LogoutOnRefreshFailure: cfg.Session.LogoutOnRefreshFailure,
		DeviceToken:            cfg.Session.DeviceToken,
	}, log)

	relay := queue.NewRelay(store, log, queue.MetricsHandler(), queue.AuditHandler(log))
	relay.Start(ctx)

	store.Rehydrate(ctx)

	nav := service.NewNavigator(domain.DefaultMenu(), storage, log)
	nav.Load(ctx)

	e := api.NewRouter(api.Dependencies{
		Store:      store,
		Navigation: nav,
		Gate:       service.NewAccessGate(cfg.Gate.EnforcePermissions),
		Screens:    domain.DefaultScreens(),
		Storage:    storage,
		Log:        log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	relay.Wait()
	return nil
}
