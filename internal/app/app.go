package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hoopsight/prospect-calendar/external/hoopdata"
	"github.com/hoopsight/prospect-calendar/external/intlbasket"
	"github.com/hoopsight/prospect-calendar/external/jobqueue"
	"github.com/hoopsight/prospect-calendar/external/livescore"
	"github.com/hoopsight/prospect-calendar/internal/config"
	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	cacherepo "github.com/hoopsight/prospect-calendar/internal/infrastructure/repository/cache"
	"github.com/hoopsight/prospect-calendar/internal/infrastructure/repository/memory"
	"github.com/hoopsight/prospect-calendar/internal/infrastructure/repository/postgres"
	"github.com/hoopsight/prospect-calendar/internal/interfaces/httpapi"
	"github.com/hoopsight/prospect-calendar/internal/platform/cache"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/resilience"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

type repositories struct {
	directory team.DirectoryRepository
	overrides team.OverrideRepository
	prospects prospect.Repository
}

// NewHTTPServer wires repositories, provider clients and services into a
// ready-to-run HTTP server. The returned cleanup closes the database pool.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		if cfg.AppEnv == config.EnvProd {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Warn("database unavailable, falling back to in-memory repositories",
			"db", dbNameFromURL(cfg.DBURL),
			"error", err,
		)
		db = nil
	}

	repos := buildRepositories(db, logger)

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.ScheduleCacheTTL)
		repos.directory = cacherepo.NewDirectoryRepository(repos.directory, store)
		repos.overrides = cacherepo.NewOverrideRepository(repos.overrides, store)
		repos.prospects = cacherepo.NewProspectRepository(repos.prospects, store)
	}

	providers := buildProviders(cfg, logger)
	enricher := usecase.NewEnricherService(buildLiveBoard(cfg, logger), logger)

	background, err := usecase.NewBackgroundRunner(cfg.BackgroundWorkers, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("background runner: %w", err)
	}

	resolverSvc := usecase.NewResolverService(repos.overrides, repos.directory, providers, logger)
	scheduleSvc := usecase.NewScheduleService(
		repos.prospects,
		resolverSvc,
		providers,
		store,
		enricher,
		background,
		usecase.ScheduleConfig{
			CacheTTL:        cfg.ScheduleCacheTTL,
			BatchSize:       cfg.ScheduleBatchSize,
			BatchDelay:      cfg.ScheduleBatchDelay,
			PipelineTimeout: cfg.SchedulePipelineTimeout,
		},
		logger,
	)
	syncSvc := usecase.NewDirectorySyncService(providers, repos.directory, logger)

	handler := httpapi.NewHandler(
		scheduleSvc,
		resolverSvc,
		syncSvc,
		repos.overrides,
		buildJobPublisher(cfg, logger),
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error {
		background.Close()
		if db != nil {
			return db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}

func openDatabase(cfg config.Config, logger *logging.Logger) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL is empty")
	}

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		logger.Warn("bootstrap seed failed", "error", err)
	}

	return db, nil
}

func buildRepositories(db *sqlx.DB, logger *logging.Logger) repositories {
	if db != nil {
		return repositories{
			directory: postgres.NewDirectoryRepository(db),
			overrides: postgres.NewOverrideRepository(db),
			prospects: postgres.NewProspectRepository(db),
		}
	}

	logger.Info("using seeded in-memory repositories")
	return repositories{
		directory: memory.NewDirectoryRepository(memory.SeedDirectory()),
		overrides: memory.NewOverrideRepository(memory.SeedOverrides()),
		prospects: memory.NewProspectRepository(memory.SeedProspects()),
	}
}

// buildProviders returns enabled schedule providers in priority order.
// hoopdata comes first so domestic college feeds win cross-provider merges.
func buildProviders(cfg config.Config, logger *logging.Logger) []usecase.ScheduleProvider {
	providers := make([]usecase.ScheduleProvider, 0, 2)

	if cfg.HoopDataEnabled {
		providers = append(providers, hoopdata.NewClient(hoopdata.ClientConfig{
			BaseURL:    cfg.HoopDataBaseURL,
			Token:      cfg.HoopDataToken,
			Timeout:    cfg.HoopDataTimeout,
			MaxRetries: cfg.HoopDataMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.HoopDataCircuitEnabled,
				FailureThreshold: cfg.HoopDataCircuitFailureCount,
				OpenTimeout:      cfg.HoopDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.HoopDataCircuitHalfOpenMaxReq,
			},
		}))
	}

	if cfg.IntlBasketEnabled {
		providers = append(providers, intlbasket.NewClient(intlbasket.ClientConfig{
			BaseURL:    cfg.IntlBasketBaseURL,
			Token:      cfg.IntlBasketToken,
			Timeout:    cfg.IntlBasketTimeout,
			MaxRetries: cfg.IntlBasketMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.IntlBasketCircuitEnabled,
				FailureThreshold: cfg.IntlBasketCircuitFailureCount,
				OpenTimeout:      cfg.IntlBasketCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.IntlBasketCircuitHalfOpenMaxReq,
			},
		}))
	}

	if len(providers) == 0 {
		logger.Warn("no schedule providers enabled, calendar requests will be rejected")
	}

	return providers
}

func buildLiveBoard(cfg config.Config, logger *logging.Logger) usecase.LiveBoardProvider {
	if !cfg.LiveScoreEnabled {
		return nil
	}

	return livescore.NewClient(livescore.ClientConfig{
		BaseURL: cfg.LiveScoreBaseURL,
		Token:   cfg.LiveScoreToken,
		Timeout: cfg.LiveScoreTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LiveScoreCircuitEnabled,
			FailureThreshold: cfg.LiveScoreCircuitFailureCount,
			OpenTimeout:      cfg.LiveScoreCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LiveScoreCircuitHalfOpenMaxReq,
		},
	})
}

func buildJobPublisher(cfg config.Config, logger *logging.Logger) httpapi.JobPublisher {
	if !cfg.QStashEnabled {
		return nil
	}

	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger)
}
