// Package bot implements the interactive command surface: tracking items
// from product links, browsing the tracked list page by page, item detail
// views, and unsubscribing. It is transport-agnostic; replies go through the
// Messenger interface.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avoronov/pricedrop/internal/fetch"
	"github.com/avoronov/pricedrop/internal/metrics"
	"github.com/avoronov/pricedrop/internal/pager"
	"github.com/avoronov/pricedrop/internal/store"
)

// defaultPageSize is how many items one list page shows.
const defaultPageSize = 4

// Catalog is the slice of the fetch client the bot needs.
type Catalog interface {
	fetch.Fetcher
	DownloadImage(ctx context.Context, url string) ([]byte, error)
	ProductURL(itemID int64) string
}

// Message is an inbound text message from a user.
type Message struct {
	UserID int64
	PeerID int64
	Text   string
}

// Callback is an inbound callback button press.
type Callback struct {
	EventID   string
	UserID    int64
	PeerID    int64
	MessageID int64 // conversation message to edit in place
	Payload   []byte
}

// Bot dispatches inbound messages and callbacks to their handlers.
type Bot struct {
	store     store.Store
	catalog   Catalog
	messenger Messenger
	pageSize  int
	log       *slog.Logger
}

// BotOption configures a Bot.
type BotOption func(*Bot)

// WithLogger sets the bot's logger.
func WithLogger(log *slog.Logger) BotOption {
	return func(b *Bot) {
		b.log = log
	}
}

// WithPageSize overrides the list page size.
func WithPageSize(size int) BotOption {
	return func(b *Bot) {
		if size > 0 {
			b.pageSize = size
		}
	}
}

// New creates a Bot.
func New(st store.Store, catalog Catalog, messenger Messenger, opts ...BotOption) *Bot {
	b := &Bot{
		store:     st,
		catalog:   catalog,
		messenger: messenger,
		pageSize:  defaultPageSize,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleMessage processes an inbound text message. Product links start
// tracking the item; anything else gets the welcome reply.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) error {
	if _, created, err := b.store.GetOrCreateUser(ctx, msg.UserID); err != nil {
		return fmt.Errorf("ensuring user %d: %w", msg.UserID, err)
	} else if created {
		b.log.Info("new user registered", "user", msg.UserID)
	}

	if fetch.IsProductURL(msg.Text) {
		metrics.BotUpdatesTotal.WithLabelValues("track").Inc()
		return b.trackItem(ctx, msg)
	}

	metrics.BotUpdatesTotal.WithLabelValues("start").Inc()

	kb, err := startKeyboard().Marshal()
	if err != nil {
		return fmt.Errorf("rendering start keyboard: %w", err)
	}
	return b.messenger.SendMessage(ctx, msg.PeerID, msgWelcome, kb)
}

// trackItem resolves the product behind a link, stores it, and subscribes
// the sender. Tracking an already-tracked item is a no-op re-subscribe.
func (b *Bot) trackItem(ctx context.Context, msg Message) error {
	itemID, err := fetch.ParseItemID(msg.Text)
	if err != nil {
		return err
	}

	info, err := b.catalog.Fetch(ctx, itemID)
	if err != nil {
		return err
	}

	item, created, err := b.store.UpsertItem(ctx, info)
	if err != nil {
		return fmt.Errorf("storing item %d: %w", itemID, err)
	}
	if created {
		b.log.Info("item added", "item", item.ID, "name", item.Name, "price", item.Price)
	}

	if err := b.store.AddSubscriber(ctx, item.ID, msg.UserID); err != nil {
		return fmt.Errorf("subscribing user %d to item %d: %w", msg.UserID, item.ID, err)
	}

	kb, err := startKeyboard().Marshal()
	if err != nil {
		return fmt.Errorf("rendering start keyboard: %w", err)
	}
	return b.messenger.SendMessage(ctx, msg.PeerID, msgTracking(item.Name), kb)
}

// HandleCallback dispatches a callback button press. Any failure is reduced
// to a generic acknowledgment toward the user; the cause stays in the logs.
func (b *Bot) HandleCallback(ctx context.Context, cb Callback) error {
	cmd, err := ParseCommand(cb.Payload)
	if err == nil {
		metrics.BotUpdatesTotal.WithLabelValues(cmd.Kind.String()).Inc()

		switch cmd.Kind {
		case CmdList:
			err = b.renderList(ctx, cb, 1)
		case CmdPage:
			err = b.renderList(ctx, cb, cmd.Page)
		case CmdShowItem:
			err = b.showItem(ctx, cb, cmd)
		case CmdDeleteItem:
			err = b.deleteItem(ctx, cb, cmd)
		default:
			err = fmt.Errorf("no handler for command %v", cmd.Kind)
		}
	}

	if err != nil {
		metrics.BotErrorsTotal.Inc()
		b.log.Error("callback handling failed",
			"user", cb.UserID,
			"payload", string(cb.Payload),
			"error", err,
		)
		if ackErr := b.messenger.AnswerCallback(ctx, cb.EventID, cb.UserID, cb.PeerID, msgSomethingWrong); ackErr != nil {
			b.log.Error("callback acknowledgment failed", "user", cb.UserID, "error", ackErr)
		}
		return err
	}
	return nil
}

// renderList edits the conversation message into the requested page of the
// user's tracked items. The item count is taken once and drives both the
// page clamping and the slice bounds.
func (b *Bot) renderList(ctx context.Context, cb Callback, requested int) error {
	total, err := b.store.CountItemsForUser(ctx, cb.UserID)
	if err != nil {
		return fmt.Errorf("counting items for user %d: %w", cb.UserID, err)
	}

	if total == 0 {
		return b.messenger.EditMessage(ctx, cb.PeerID, cb.MessageID, msgEmptyList, nil, "")
	}

	page := pager.Resolve(total, requested, b.pageSize)

	items, err := b.store.ListItemsForUser(ctx, cb.UserID, page.Offset, page.Limit)
	if err != nil {
		return fmt.Errorf("listing items for user %d: %w", cb.UserID, err)
	}

	kb, err := listKeyboard(items, page).Marshal()
	if err != nil {
		return fmt.Errorf("rendering list keyboard: %w", err)
	}

	return b.messenger.EditMessage(ctx, cb.PeerID, cb.MessageID,
		msgListHeader(page.Number, page.LastPage), kb, "")
}

// showItem edits the conversation message into the item's detail view. A
// failed image upload degrades to a text-only view.
func (b *Bot) showItem(ctx context.Context, cb Callback, cmd Command) error {
	item, err := b.store.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return fmt.Errorf("loading item %d: %w", cmd.ItemID, err)
	}

	var attachment string
	if image, err := b.catalog.DownloadImage(ctx, item.ImageURL); err != nil {
		b.log.Warn("image download failed", "item", item.ID, "error", err)
	} else if attachment, err = b.messenger.UploadPhoto(ctx, cb.PeerID, image); err != nil {
		b.log.Warn("image upload failed", "item", item.ID, "error", err)
		attachment = ""
	}

	kb, err := detailKeyboard(item.ID, cmd.Page).Marshal()
	if err != nil {
		return fmt.Errorf("rendering detail keyboard: %w", err)
	}

	caption := msgItemDetail(item.Name, b.catalog.ProductURL(item.ID))
	return b.messenger.EditMessage(ctx, cb.PeerID, cb.MessageID, caption, kb, attachment)
}

// deleteItem unsubscribes the user and re-renders the page the delete came
// from. Removing the last tracked item lands on the empty-state text.
func (b *Bot) deleteItem(ctx context.Context, cb Callback, cmd Command) error {
	if err := b.store.RemoveSubscriber(ctx, cmd.ItemID, cb.UserID); err != nil {
		return fmt.Errorf("unsubscribing user %d from item %d: %w", cb.UserID, cmd.ItemID, err)
	}

	if err := b.renderList(ctx, cb, cmd.Page); err != nil {
		return err
	}

	if err := b.messenger.AnswerCallback(ctx, cb.EventID, cb.UserID, cb.PeerID, msgRemoved); err != nil {
		b.log.Warn("delete acknowledgment failed", "user", cb.UserID, "error", err)
	}
	return nil
}
