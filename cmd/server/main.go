package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/maxviazov/bongo-stats-service/internal/config"
	"github.com/maxviazov/bongo-stats-service/internal/debounce"
	"github.com/maxviazov/bongo-stats-service/internal/handler"
	"github.com/maxviazov/bongo-stats-service/internal/logger"
	"github.com/maxviazov/bongo-stats-service/internal/metrics"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/repository/postgres"
	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/migrations"
)

// pushFailedMessage is shown when a debounced match write fails.
const pushFailedMessage = "Failed to save match changes. Please try again."

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Postgres connection failed")
	}
	defer db.Close()

	if cfg.Postgres.AutoMigrate {
		if err := repository.Migrate(ctx, db.Pool(), migrations.FS, appLogger); err != nil {
			appLogger.Fatal().Err(err).Msg("❌ Migrations failed")
		}
	}

	recorder, metricsHandler, err := metrics.NewWithRegistry()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Metrics registry failed")
	}

	pool := db.Pool()
	repos := service.Repos{
		Players: postgres.NewPlayerRepository(pool),
		Matches: postgres.NewMatchRepository(pool),
		Ratings: postgres.NewRatingRepository(pool),
		MVPs:    postgres.NewMVPRepository(pool),
		Tx:      postgres.NewTxManager(pool),
	}

	clock := clockwork.NewRealClock()
	state := service.NewState(clock, cfg.Tracker.NoticeTTL)
	debouncer := debounce.New(repos.Matches, appLogger, debounce.Options{
		Window:      cfg.Tracker.DebounceWindow,
		PushTimeout: cfg.Tracker.PushTimeout,
		Clock:       clock,
		OnError: func(uuid.UUID, error) {
			state.ReportFailure(pushFailedMessage)
		},
		Recorder: recorder,
	})

	loader := service.NewLoader(state, repos, cfg.Tracker.DefaultRoster, debouncer, appLogger)
	if err := loader.Load(ctx); err != nil {
		// keep serving: clients see the load banner and can ask for a reload
		appLogger.Error().Err(err).Msg("initial load failed")
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), handler.RequestLogger(appLogger), handler.CORS(cfg.App.CORSOrigins))
	handler.Register(engine, handler.Deps{
		Pinger:  postgres.NewPinger(pool),
		State:   state,
		Metrics: metricsHandler,
		Players: service.NewPlayerService(state, repos.Players, recorder, appLogger),
		Matches: service.NewMatchService(state, repos.Matches, debouncer, recorder, service.MatchOptions{
			DefaultKickoff: cfg.Tracker.DefaultKickoff,
		}, appLogger),
		Session: service.NewSessionService(state, loader, debouncer, recorder, appLogger),
		Ratings: service.NewRatingService(state, repos.Ratings, recorder, appLogger),
		MVPs:    service.NewMVPService(state, repos.MVPs, recorder, appLogger),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Int("port", cfg.App.Port).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			appLogger.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("http shutdown failed")
	}
	// the last debounced snapshot must reach the database before the pool closes
	if err := debouncer.Close(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("final match flush failed")
	}
	appLogger.Info().Msg("👋 Service stopped")
}
