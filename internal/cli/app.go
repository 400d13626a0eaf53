package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finanzas-be/internal/cache"
	"finanzas-be/internal/config"
	"finanzas-be/internal/database"
	"finanzas-be/internal/jwt"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/repository"
	"finanzas-be/internal/router"
	"finanzas-be/internal/service"
	"finanzas-be/internal/session"
)

// app is everything a command needs, wired once
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	db     *sql.DB
	cache  cache.Cache

	users      service.UserService
	categories service.CategoryService
	movements  service.MovementService
	reports    service.ReportService
	auth       service.AuthService
}

// loadConfig reads the configuration. full additionally requires the
// settings only the API server uses.
func loadConfig(opts *rootOptions, full bool) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	if full {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration:\n%w", err)
		}
	} else if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts *rootOptions, full bool) (*app, error) {
	cfg, err := loadConfig(opts, full)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetDefault(logger)

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db, cache: openCache(ctx, cfg.RedisURL, logger)}
	a.wire()
	return a, nil
}

// openCache connects to Redis when configured. Without Redis, sessions and
// statistics live in process memory.
func openCache(ctx context.Context, redisURL string, logger *logging.Logger) cache.Cache {
	logger = logger.WithComponent(logging.ComponentCache)
	if strings.TrimSpace(redisURL) == "" {
		logger.Info("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryCache()
	}

	c, err := cache.NewRedisCache(ctx, redisURL, cache.DefaultNamespace)
	if err != nil {
		logger.Warn("failed to connect to Redis, continuing with in-memory cache", logging.FieldError, err)
		return cache.NewMemoryCache()
	}
	logger.Info("connected to Redis cache")
	return c
}

func (a *app) wire() {
	repos := repository.New(a.db)
	tx := repository.NewTxRunner(a.db)

	a.users = service.NewUserService(repos.Users, a.cfg.PasswordMinLength, a.logger)
	a.categories = service.NewCategoryService(repos.Categories, tx, a.logger)
	a.movements = service.NewMovementService(repos.Movements, repos.Categories, repos.Users, a.cache, a.cfg.StatsCacheTTL, a.logger)
	a.reports = service.NewReportService(a.movements)

	jwtService := jwt.NewJWTService(a.cfg.JWTSecret, a.cfg.TokenTTL())
	a.auth = service.NewAuthService(a.users, session.NewStore(a.cache), jwtService, a.logger)
}

func (a *app) services() router.Services {
	return router.Services{
		Auth:       a.auth,
		Users:      a.users,
		Categories: a.categories,
		Movements:  a.movements,
		Reports:    a.reports,
	}
}

// prepare migrates the schema and seeds the predefined categories
func (a *app) prepare(ctx context.Context) error {
	log := a.logger.WithComponent(logging.ComponentDatabase)
	if err := database.RunMigrations(ctx, a.db); err != nil {
		return err
	}
	log.InfoContext(ctx, "migrations applied", logging.FieldOperation, logging.OpMigrate)

	if _, err := a.categories.EnsureSeeded(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}

func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.db.Close())
}
