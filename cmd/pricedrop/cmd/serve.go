package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avoronov/pricedrop/internal/api"
	"github.com/avoronov/pricedrop/internal/api/handlers"
	"github.com/avoronov/pricedrop/internal/bot"
	"github.com/avoronov/pricedrop/internal/config"
	"github.com/avoronov/pricedrop/internal/fetch"
	"github.com/avoronov/pricedrop/internal/notify"
	"github.com/avoronov/pricedrop/internal/store"
	"github.com/avoronov/pricedrop/internal/watcher"
	"github.com/avoronov/pricedrop/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the watch scheduler, bot endpoint, and admin API",
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(startCtx, cfg.Database.DSN())
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
	var serverOpts []api.ServerOption

	if cfg.VK.Enabled {
		vk := notify.NewVKClient(cfg.VK.APIURL, cfg.VK.Token, cfg.VK.Version)
		notifier = vk

		b := bot.New(st, catalog, vk,
			bot.WithLogger(log),
			bot.WithPageSize(cfg.Bot.PageSize),
		)
		events := handlers.NewEventsHandler(b, cfg.VK.Confirmation, cfg.VK.Secret, log)
		serverOpts = append(serverOpts, api.WithEvents(events))
	} else {
		notifier = notify.NewNoOpNotifier(log)
		log.Warn("vk transport disabled, bot endpoint off, notifications discarded")
	}

	w := watcher.New(st, catalog, notifier,
		watcher.WithLogger(log),
		watcher.WithInterval(cfg.Watch.Interval),
		watcher.WithItemTimeout(cfg.Watch.ItemTimeout),
		watcher.WithProductURL(catalog.ProductURL),
	)
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watch scheduler: %w", err)
	}

	e := api.NewServer(st, log, serverOpts...)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := e.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := w.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping watch scheduler: %w", err)
	}

	log.Info("stopped")
	return nil
}
