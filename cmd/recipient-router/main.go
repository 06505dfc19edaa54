package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/notifyhq/recipient-router/internal/config"
	"github.com/notifyhq/recipient-router/internal/ownership"
	"github.com/notifyhq/recipient-router/internal/recipients"
	"github.com/notifyhq/recipient-router/internal/repository/postgres"
	"github.com/notifyhq/recipient-router/internal/service"
	myhttp "github.com/notifyhq/recipient-router/internal/transport/http"
	"github.com/notifyhq/recipient-router/pkg/logger/sl"
	"github.com/notifyhq/recipient-router/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting recipient-router", slog.String("env", cfg.Env))

	errChan := make(chan error, 1)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer func() {
		if err := db.DB().Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	ownershipRepo := postgres.NewOwnershipRepository(db.DB(), log)
	teamRepo := postgres.NewTeamRepository(db.DB(), log)
	prefRepo := postgres.NewPreferenceRepository(db.DB(), log)

	expander := recipients.NewExpander(teamRepo, prefRepo)
	schemaCache := ownership.NewCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	notificationService := service.NewNotificationService(log, ownershipRepo, expander, schemaCache)

	srv := myhttp.NewServer(log, notificationService)
	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %w", err)
	}
}
