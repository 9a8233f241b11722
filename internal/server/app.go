// Package server initializes and runs the application: configuration,
// logging, database and migrations, the credential cipher, and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/clipforge/clipforge/internal/cryptox"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/server/clients/airtable"
	"github.com/clipforge/clipforge/internal/server/clients/openai"
	"github.com/clipforge/clipforge/internal/server/config"
	"github.com/clipforge/clipforge/internal/server/httpapi"
	"github.com/clipforge/clipforge/internal/server/repositories/repomanager"
	"github.com/clipforge/clipforge/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	if cfg.EncryptionPassphrase == "" {
		return nil, fmt.Errorf("credential cipher passphrase is not set (%s or %s)",
			config.EnvEncryptionKey, config.EnvEncryptionKeyFallback)
	}
	cipher, err := cryptox.New(cfg.EncryptionPassphrase)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	settingsService := services.NewSettingsService(db, rm, cipher, logger)
	relayService := services.NewRelayService(cfg, logger)
	clipService := services.NewClipService(settingsService, airtable.New(), openai.New(), logger)
	storageService := services.NewStorageService(db, rm, cfg)

	srv := httpapi.NewServer(cfg, logger, userService, settingsService, relayService, clipService, storageService)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
