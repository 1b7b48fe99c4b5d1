// Package main is the entry point for the Kurosawa Movies API server.
// Kurosawa Movies is a token-authenticated movie catalog backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/kurosawa-movies/internal/auth"
	memorycache "github.com/prn-tf/kurosawa-movies/internal/cache/memory"
	rediscache "github.com/prn-tf/kurosawa-movies/internal/cache/redis"
	"github.com/prn-tf/kurosawa-movies/internal/config"
	"github.com/prn-tf/kurosawa-movies/internal/handler"
	"github.com/prn-tf/kurosawa-movies/internal/metrics"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
	"github.com/prn-tf/kurosawa-movies/internal/repository/postgres"
	"github.com/prn-tf/kurosawa-movies/internal/repository/sqlite"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("driver", cfg.Database.Driver).
		Msg("starting Kurosawa Movies server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	repos, closeRepos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	cache, closeCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	userService := service.NewUserService(repos.users, logger)
	authService := service.NewAuthService(repos.users, repos.tokens, logger)
	catalogService := service.NewCatalogService(repos.movies, cache, logger)
	queryService := service.NewMovieQueryService(repos.movies, cache, cfg.Pagination.PageSize, cfg.Cache.TTL, logger)

	routerConfig := handler.RouterConfig{
		UserHandler:    handler.NewUserHandler(userService, authService, logger),
		MovieHandler:   handler.NewMovieHandler(catalogService, queryService, logger),
		AuthMiddleware: auth.Middleware(authService),
		Logger:         logger,
	}
	if cfg.Metrics.Enabled {
		m := metrics.New()
		routerConfig.Middleware = append(routerConfig.Middleware, m.Middleware())
		routerConfig.MetricsHandler = m.Handler()
		routerConfig.MetricsPath = cfg.Metrics.Path
	}
	router := handler.NewRouter(routerConfig)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// repositories bundles the persistence interfaces regardless of driver.
type repositories struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	movies repository.MovieRepository
}

func buildRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.NewDB(ctx, sqliteConfig(cfg.Database), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite database: %w", err)
		}
		return &repositories{
			users:  sqlite.NewUserRepository(db),
			tokens: sqlite.NewTokenRepository(db),
			movies: sqlite.NewMovieRepository(db),
		}, func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres database: %w", err)
		}
		return &repositories{
			users:  postgres.NewUserRepository(db),
			tokens: postgres.NewTokenRepository(db),
			movies: postgres.NewMovieRepository(db),
		}, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func buildCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, func(), error) {
	if cfg.Redis.Enabled {
		cache, err := rediscache.NewCache(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return cache, func() { _ = cache.Close() }, nil
	}

	cache := memorycache.NewCache()
	return cache, cache.Stop, nil
}

func sqliteConfig(cfg config.DatabaseConfig) sqlite.Config {
	sc := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		sc.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		sc.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		sc.SynchronousMode = cfg.SynchronousMode
	}
	return sc
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := log.Logger
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(level)
}
