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

	"github.com/Clark-Hu/cinema-pulse/internal/config"
	httpserver "github.com/Clark-Hu/cinema-pulse/internal/http"
	"github.com/Clark-Hu/cinema-pulse/internal/kvstore"
	"github.com/Clark-Hu/cinema-pulse/internal/logging"
	"github.com/Clark-Hu/cinema-pulse/internal/notify"
	"github.com/Clark-Hu/cinema-pulse/internal/persistence"
	"github.com/Clark-Hu/cinema-pulse/internal/repository"
	"github.com/Clark-Hu/cinema-pulse/internal/seed"
	"github.com/Clark-Hu/cinema-pulse/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Backend).Msg("open storage backend")
	}
	defer closeBackend()

	bus := notify.NewBus(logger)
	sink, err := newSink(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init notification sink")
	}
	if err := bus.Start(ctx, sink); err != nil {
		logger.Fatal().Err(err).Msg("start notification bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Warn().Err(err).Msg("close notification bus")
		}
	}()

	facade := persistence.New(backend, persistence.WithLogger(logger), persistence.WithNotifier(bus))

	if cfg.SeedDefaults {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		seeded, err := seed.Defaults(seedCtx, facade, logger)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("seed defaults")
		}
		logger.Info().Bool("seeded", seeded).Msg("default data checked")
	}

	server := httpserver.New(cfg, facade, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
}

// openBackend builds the storage backend selected by cfg.Backend and returns
// a function that releases it.
func openBackend(ctx context.Context, cfg config.Config, logger zerolog.Logger) (persistence.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendBadger:
		kv, err := kvstore.Open(kvstore.Options{
			Dir:      cfg.BadgerDir,
			InMemory: cfg.BadgerInMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {
			if err := kv.Close(); err != nil {
				logger.Warn().Err(err).Msg("close badger")
			}
		}, nil

	default:
		if cfg.DBMigrate {
			if err := store.Migrate(cfg.DBURL, logger); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}

		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		st, err := store.New(dbCtx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		return repository.New(st), st.Close, nil
	}
}

func newSink(cfg config.Config, logger zerolog.Logger) (notify.Sink, error) {
	if cfg.NotifyWebhookURL == "" {
		return notify.NewLogSink(logger), nil
	}
	return notify.NewWebhookClient(
		cfg.NotifyWebhookURL,
		cfg.NotifyWebhookAPIKey,
		time.Duration(cfg.NotifyTimeoutSecs)*time.Second,
		notify.WebhookOptions{},
		logger,
	)
}
