package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/gps-gamemodel/internal/config"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gamemodel"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/identity"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/gps-gamemodel/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/gps-gamemodel/internal/platform/cache"
	idgen "github.com/riskibarqy/gps-gamemodel/internal/platform/id"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/resilience"
	"github.com/riskibarqy/gps-gamemodel/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Container holds the services of one process, backed either by postgres
// or by in-memory repositories seeded with the demo roster.
type Container struct {
	Registry   *canonical.Registry
	Profiles   *usecase.ProfileService
	Reports    *usecase.ReportService
	GameModels *usecase.GameModelService
	MatchStats *usecase.MatchStatsService

	db *sqlx.DB
}

type repositories struct {
	profiles   gpsprofile.Repository
	reports    gpsreport.Repository
	matchStats matchstats.Repository
	models     gamemodel.Repository
	roster     roster.Repository
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	registry, err := canonical.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("load canonical registry: %w", err)
	}

	var (
		repos repositories
		db    *sqlx.DB
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err = OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repos = repositories{
			profiles:   postgres.NewGPSProfileRepository(db),
			reports:    postgres.NewGPSReportRepository(db),
			matchStats: postgres.NewMatchStatsRepository(db),
			models:     postgres.NewGameModelRepository(db),
			roster:     postgres.NewRosterRepository(db),
		}
	default:
		reportRepo := memory.NewGPSReportRepository()
		repos = repositories{
			profiles:   memory.NewGPSProfileRepository(),
			reports:    reportRepo,
			matchStats: memory.NewMatchStatsRepository(reportRepo),
			models:     memory.NewGameModelRepository(),
			roster:     memory.NewRosterRepository(memory.SeedRoster()),
		}
	}

	rosterRepo := repos.roster
	if cfg.RosterCacheEnabled {
		var breaker *resilience.CircuitBreaker
		if cfg.RosterCircuitEnabled {
			breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
				Name:             "roster",
				FailureThreshold: cfg.RosterCircuitFailureCount,
				OpenTimeout:      cfg.RosterCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.RosterCircuitHalfOpenMaxReq,
				OnStateChange: func(name string, from, to resilience.CircuitState) {
					logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
				},
			})
		}
		rosterRepo = cache.NewRosterRepository(
			repos.roster,
			basecache.NewStore[[]roster.Player](cfg.RosterCacheTTL),
			breaker,
		)
	}

	gameModels := usecase.NewGameModelService(
		repos.matchStats,
		repos.models,
		rosterRepo,
		gamemodel.NewAggregator(registry, cfg.GameModelWindow, cfg.MinutesFromGPS),
		usecase.GameModelConfig{Workers: cfg.RecomputeWorkers},
		logger,
	)
	ids := idgen.NewUUIDGenerator()

	logger.Info("services wired",
		"storage", cfg.StorageDriver,
		"registry_version", registry.Version(),
		"game_model_window", cfg.GameModelWindow,
		"recompute_workers", cfg.RecomputeWorkers,
		"roster_cache", cfg.RosterCacheEnabled,
	)

	return &Container{
		Registry: registry,
		Profiles: usecase.NewProfileService(repos.profiles, registry, ids, logger),
		Reports: usecase.NewReportService(
			repos.reports,
			repos.profiles,
			rosterRepo,
			registry,
			identity.NewResolver(cfg.IdentityFuzzyThreshold, cfg.IdentityTieEpsilon),
			gameModels,
			ids,
			logger,
		),
		GameModels: gameModels,
		MatchStats: usecase.NewMatchStatsService(repos.matchStats, gameModels, logger),
		db:         db,
	}, nil
}

// DB is nil for in-memory wiring.
func (c *Container) DB() *sqlx.DB {
	return c.db
}

func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// OpenDB opens an otelsql-instrumented postgres handle and pings it.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewHTTPServer(cfg config.Config, c *Container, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(c.Profiles, c.Reports, c.GameModels, c.MatchStats, c.Registry, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}, nil
}
