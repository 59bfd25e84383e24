package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/gatherhub-io/gatherhub/internal/cache"
	"github.com/gatherhub-io/gatherhub/internal/config"
	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
	"github.com/gatherhub-io/gatherhub/internal/repository"
	"github.com/gatherhub-io/gatherhub/internal/source"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a single ingestion cycle and exit",
	Long: `Fetches every configured source once, stores the new events, and
refreshes the cached feed. Useful for cron-driven setups and debugging
source adapters.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	ctx := context.Background()

	repo, err := repository.NewPostgresRepository(ctx, cfg.Database.ConnString())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer repo.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}
	feedCache := cache.NewFeedCache(redisClient, cfg.Cache.TTL)

	registry := source.NewRegistry()
	for _, src := range cfg.Sources {
		registry.Register(source.NewJSONFeedAdapter(src.Name, src.URL, nil))
	}
	sources := source.NewRunner(registry, cfg.Ingest.AdapterTimeout, logger)

	runner := pipeline.NewRunner(sources, repo, feedCache, nil, logger)
	result, err := runner.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("ingestion cycle failed: %w", err)
	}

	fmt.Printf("fetched=%d failures=%d normalized=%d rejected=%d saved=%d skipped=%d new=%d duration=%s\n",
		result.Fetched, result.Failures, result.Normalized, result.Rejected,
		result.Saved, result.Skipped, result.New, result.Duration)
	return nil
}
