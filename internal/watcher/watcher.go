// Package watcher runs the periodic price check cycle: snapshot the tracked
// items, re-fetch each price, notify subscribers on decreases, and persist
// the fresh price. Failures are contained per item and per subscriber so one
// bad product or recipient never stalls the rest of a cycle.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/avoronov/pricedrop/internal/fetch"
	"github.com/avoronov/pricedrop/internal/metrics"
	"github.com/avoronov/pricedrop/internal/notify"
	"github.com/avoronov/pricedrop/internal/store"
	domain "github.com/avoronov/pricedrop/pkg/types"
)

const (
	defaultInterval    = time.Hour
	defaultItemTimeout = 30 * time.Second
)

// Watcher schedules and runs watch cycles.
type Watcher struct {
	store       store.Store
	fetcher     fetch.Fetcher
	notifier    notify.Notifier
	log         *slog.Logger
	interval    time.Duration
	itemTimeout time.Duration
	productURL  func(itemID int64) string
	cron        *cron.Cron
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher's logger.
func WithLogger(log *slog.Logger) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// WithInterval sets the time between watch cycles.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithItemTimeout bounds the fetch-and-notify work for a single item.
func WithItemTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.itemTimeout = d
		}
	}
}

// WithProductURL supplies a product-page URL builder used in notification
// texts. Without it notifications carry no link.
func WithProductURL(fn func(itemID int64) string) Option {
	return func(w *Watcher) {
		w.productURL = fn
	}
}

// New creates a Watcher.
func New(st store.Store, fetcher fetch.Fetcher, notifier notify.Notifier, opts ...Option) *Watcher {
	w := &Watcher{
		store:       st,
		fetcher:     fetcher,
		notifier:    notifier,
		log:         slog.Default(),
		interval:    defaultInterval,
		itemTimeout: defaultItemTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// cronLogger adapts slog to the cron logger contract.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

// Start schedules watch cycles every interval. A cycle that overruns the
// interval causes the next one to be skipped rather than run concurrently.
func (w *Watcher) Start() error {
	w.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{log: w.log}),
	))

	_, err := w.cron.AddFunc("@every "+w.interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.interval)
		defer cancel()

		if err := w.RunTick(ctx); err != nil {
			w.log.Error("watch cycle failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling watch cycle: %w", err)
	}

	w.cron.Start()
	w.log.Info("watch scheduler started", "interval", w.interval)
	return nil
}

// Stop halts scheduling and waits for a running cycle to finish, bounded by
// ctx.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cron == nil {
		return nil
	}

	done := w.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunTick performs one complete watch cycle over a single snapshot of the
// tracked items. Per-item failures are logged and counted; only a failure to
// list the items aborts the cycle.
func (w *Watcher) RunTick(ctx context.Context) error {
	log := w.log.With("run", uuid.NewString())

	start := time.Now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(start).Seconds())
		metrics.TicksTotal.Inc()
	}()

	items, err := w.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}
	log.Info("watch cycle started", "items", len(items))

	var drops, failures int
	for i := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		dropped, err := w.processItem(ctx, &items[i], log)
		if err != nil {
			failures++
			continue
		}
		if dropped {
			drops++
		}
	}

	log.Info("watch cycle finished",
		"items", len(items),
		"drops", drops,
		"failures", failures,
		"elapsed", time.Since(start),
	)
	return nil
}

// processItem re-checks one item's price. It reports whether a price drop
// was detected. The previous price is retained whenever the fetch fails.
func (w *Watcher) processItem(ctx context.Context, item *domain.Item, log *slog.Logger) (bool, error) {
	itemCtx, cancel := context.WithTimeout(ctx, w.itemTimeout)
	defer cancel()

	metrics.ItemsChecked.Inc()

	info, err := w.fetcher.Fetch(itemCtx, item.ID)
	if err != nil {
		metrics.FetchFailuresTotal.Inc()
		log.Warn("price fetch failed", "item", item.ID, "error", err)
		return false, err
	}

	switch {
	case info.Price.LessThan(item.Price):
		w.notifySubscribers(itemCtx, item, info.Price, log)
		metrics.PriceDropsTotal.Inc()
		w.persistPrice(itemCtx, item, info.Price, log)
		return true, nil

	case info.Price.GreaterThan(item.Price):
		w.persistPrice(itemCtx, item, info.Price, log)
		return false, nil

	default:
		// unchanged, nothing to persist
		return false, nil
	}
}

// notifySubscribers delivers the drop message to every subscriber of the
// item. Individual delivery failures are logged and skipped.
func (w *Watcher) notifySubscribers(ctx context.Context, item *domain.Item, newPrice decimal.Decimal, log *slog.Logger) {
	subs, err := w.store.ListSubscribers(ctx, item.ID)
	if err != nil {
		log.Error("listing subscribers failed", "item", item.ID, "error", err)
		return
	}

	text := w.formatDropMessage(item, newPrice)
	for _, sub := range subs {
		if err := w.notifier.Send(ctx, sub.ID, text); err != nil {
			metrics.NotificationFailuresTotal.Inc()
			log.Warn("notification failed", "item", item.ID, "user", sub.ID, "error", err)
			continue
		}
		metrics.NotificationsSentTotal.Inc()
	}

	log.Info("price drop detected",
		"item", item.ID,
		"name", item.Name,
		"old_price", item.Price,
		"new_price", newPrice,
		"subscribers", len(subs),
	)
}

// persistPrice writes the fresh price unless the stored price changed since
// this cycle read it. A lost race is skipped; the next cycle re-reads.
func (w *Watcher) persistPrice(ctx context.Context, item *domain.Item, newPrice decimal.Decimal, log *slog.Logger) {
	ok, err := w.store.UpdateItemPrice(ctx, item.ID, item.Price, newPrice)
	if err != nil {
		log.Error("price update failed", "item", item.ID, "error", err)
		return
	}
	if !ok {
		metrics.StaleUpdatesTotal.Inc()
		log.Warn("price changed concurrently, update skipped", "item", item.ID)
	}
}

func (w *Watcher) formatDropMessage(item *domain.Item, newPrice decimal.Decimal) string {
	text := fmt.Sprintf("Price drop: %s\n%s -> %s",
		item.Name,
		item.Price.StringFixed(2),
		newPrice.StringFixed(2),
	)
	if w.productURL != nil {
		text += "\n" + w.productURL(item.ID)
	}
	return text
}
