package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/apifusion/internal/aggregator"
	"github.com/Ayash-Bera/apifusion/internal/api/handlers"
	"github.com/Ayash-Bera/apifusion/internal/config"
	"github.com/Ayash-Bera/apifusion/internal/connectors"
	"github.com/Ayash-Bera/apifusion/internal/database"
	"github.com/Ayash-Bera/apifusion/internal/health"
	"github.com/Ayash-Bera/apifusion/internal/metrics"
	"github.com/Ayash-Bera/apifusion/internal/middleware"
	"github.com/Ayash-Bera/apifusion/internal/migration"
	"github.com/Ayash-Bera/apifusion/internal/mock"
	"github.com/Ayash-Bera/apifusion/internal/repository"
	"github.com/Ayash-Bera/apifusion/internal/services"
	"github.com/Ayash-Bera/apifusion/internal/status"
	"github.com/Ayash-Bera/apifusion/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	runMigrations  = flag.Bool("migrate", false, "Run database migrations before serving")
	migrationsPath = flag.String("migrations", "migrations", "Directory of .sql migration files")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.App.LogLevel, os.Stdout)
	utils.Logger = logger
	logger.WithFields(logrus.Fields{
		"app":  cfg.App.Name,
		"env":  cfg.App.Env,
		"mode": cfg.Search.Mode,
	}).Info("Starting API Fusion server")

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.App.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if *runMigrations {
		if err := migration.NewRunner(dbManager, logger).RunMigrations(*migrationsPath); err != nil {
			logger.WithError(err).Fatal("Database migrations failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	var cache *database.Cache
	if dbManager.Redis != nil {
		cache = database.NewCache(dbManager.Redis, logger)
	}
	repoManager := repository.NewRepositoryManager(dbManager.DB)

	backend, statuses := buildBackend(ctx, cfg, cache, m, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)
	go limiter.Run(ctx)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestMeta(repoManager.RequestLog, m, logger))

	handlers.SetupRoutes(router, handlers.Handlers{
		Search:  handlers.NewSearchHandler(services.NewSearchService(backend, cache, cfg.Search.CacheTTL, m, logger), logger),
		Sources: handlers.NewSourcesHandler(statuses, logger),
		Logs:    handlers.NewLogsHandler(repoManager.RequestLog, logger),
		System:  handlers.NewSystemHandler(health.ForManager(cfg.App.Name, cfg.App.Env, dbManager, logger), m.Handler()),
	}, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}

// buildBackend wires either the live connectors or the mock generator.
func buildBackend(ctx context.Context, cfg *config.Config, cache *database.Cache, m *metrics.Metrics, logger *logrus.Logger) (services.Searcher, services.StatusProvider) {
	if cfg.Search.Mode == config.ModeMock {
		gen := mock.NewGenerator(0)
		return gen, services.FetcherStatus{Fetcher: gen}
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	retry := connectors.DefaultRetryConfig()
	retry.MaxRetries = cfg.Search.Retries

	registry := connectors.NewLiveRegistry(connectors.Config{
		GitHubBaseURL:     cfg.GitHub.BaseURL,
		GitHubToken:       cfg.GitHub.Token,
		HackerNewsBaseURL: cfg.HackerNews.BaseURL,
		RSSFeeds:          cfg.RSS.Feeds,
		Retry:             retry,
		HTTPClient:        httpClient,
	}, logger)
	agg := aggregator.New(registry, aggregator.Config{
		Timeout: cfg.HTTP.Timeout,
		Breaker: aggregator.DefaultBreakerConfig(),
	}, m, logger)

	opts := status.Options{
		Probes:     status.ProbesFromConfig(cfg),
		TTL:        cfg.Sources.CacheTTL,
		Timeout:    cfg.HTTP.Timeout,
		HTTPClient: httpClient,
		Metrics:    m,
	}
	if cache != nil {
		opts.Mirror = cache
	}
	statusService := status.NewService(opts, logger)
	if cfg.Sources.ProbeInterval > 0 {
		go statusService.Run(ctx, cfg.Sources.ProbeInterval)
	}
	return agg, statusService
}
