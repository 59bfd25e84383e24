package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/gatherhub-io/gatherhub/internal/cache"
	"github.com/gatherhub-io/gatherhub/internal/config"
	"github.com/gatherhub-io/gatherhub/internal/handlers"
	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/messaging"
	gnats "github.com/gatherhub-io/gatherhub/internal/messaging/nats"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
	"github.com/gatherhub-io/gatherhub/internal/repository"
	"github.com/gatherhub-io/gatherhub/internal/scheduler"
	"github.com/gatherhub-io/gatherhub/internal/server"
	"github.com/gatherhub-io/gatherhub/internal/service"
	"github.com/gatherhub-io/gatherhub/internal/source"
	"github.com/gatherhub-io/gatherhub/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event feed service",
	Long: `Starts the HTTP API, the WebSocket feed, and the ingestion
scheduler. Sources are scraped on the configured interval and newly
discovered events are pushed to connected clients.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database migrations
	connString := cfg.Database.ConnString()
	logger.Info("running database migrations")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		return fmt.Errorf("initializing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	repo, err := repository.NewPostgresRepository(ctx, connString)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer repo.Close()

	// Feed cache (optional)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, serving without cache", "error", err)
			redisClient = nil
		}
	}
	feedCache := cache.NewFeedCache(redisClient, cfg.Cache.TTL)

	// WebSocket hub
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// Event distribution: through the bus when NATS is enabled, otherwise
	// straight to the local hub.
	var distributor pipeline.Distributor = hub
	var busClient messaging.Client
	if cfg.NATS.Enabled {
		natsCfg := gnats.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.MaxReconnects = cfg.NATS.MaxReconnects
		natsCfg.ReconnectWait = cfg.NATS.ReconnectWait

		busClient, err = gnats.NewClient(natsCfg)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer busClient.Close()

		distributor = pipeline.NewBusDistributor(busClient, logger)

		bridge := ws.NewSubscriber(busClient, hub)
		if err := bridge.Start(); err != nil {
			return fmt.Errorf("starting bus subscriber: %w", err)
		}
		defer bridge.Stop()
	}

	// Source adapters
	registry := source.NewRegistry()
	for _, src := range cfg.Sources {
		registry.Register(source.NewJSONFeedAdapter(src.Name, src.URL, nil))
	}
	if registry.Len() == 0 {
		logger.Warn("no sources configured, ingestion cycles will be empty")
	}
	sources := source.NewRunner(registry, cfg.Ingest.AdapterTimeout, logger)

	// Pipeline and scheduler
	runner := pipeline.NewRunner(sources, repo, feedCache, distributor, logger)
	sched := scheduler.NewScheduler(runner, cfg.Ingest.Interval, cfg.Ingest.RunOnStart, logger)
	go sched.Start(ctx)
	defer sched.Stop()

	// HTTP API
	eventSvc := service.NewEventService(repo, feedCache, logger)
	reminderSvc := service.NewReminderService(repo)
	handler := handlers.NewHandler(eventSvc, reminderSvc, runner, logger)
	router := server.NewRouter(handler, hub)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gatherhub listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
