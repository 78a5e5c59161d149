package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/avoronov/pricedrop/internal/config"
	"github.com/avoronov/pricedrop/internal/fetch"
	"github.com/avoronov/pricedrop/internal/notify"
	"github.com/avoronov/pricedrop/internal/store"
	"github.com/avoronov/pricedrop/internal/watcher"
	"github.com/avoronov/pricedrop/pkg/logger"
)

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run exactly one watch cycle and exit",
		Long: "Runs a single price-check cycle over all tracked items, sending\n" +
			"notifications where prices dropped, then exits. Useful for cron-style\n" +
			"deployments and for verifying a configuration.",
		RunE: runTick,
	}
}

func runTick(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Watch.Interval)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	limiter := fetch.NewRateLimiter(
		cfg.Source.RateLimit.PerSecond,
		cfg.Source.RateLimit.Burst,
		cfg.Source.RateLimit.DailyLimit,
	)
	catalog := fetch.NewClient(
		cfg.Source.CatalogURL,
		cfg.Source.ProductURL,
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Source.Timeout}),
		fetch.WithRateLimiter(limiter),
	)

	var notifier notify.Notifier
	if cfg.VK.Enabled {
		notifier = notify.NewVKClient(cfg.VK.APIURL, cfg.VK.Token, cfg.VK.Version)
	} else {
		notifier = notify.NewNoOpNotifier(log)
	}

	w := watcher.New(st, catalog, notifier,
		watcher.WithLogger(log),
		watcher.WithItemTimeout(cfg.Watch.ItemTimeout),
		watcher.WithProductURL(catalog.ProductURL),
	)

	return w.RunTick(ctx)
}
