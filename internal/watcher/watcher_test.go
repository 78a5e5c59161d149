package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/pricedrop/internal/fetch"
	"github.com/avoronov/pricedrop/internal/notify"
	"github.com/avoronov/pricedrop/internal/store"
	"github.com/avoronov/pricedrop/pkg/logger"
	domain "github.com/avoronov/pricedrop/pkg/types"
)

type priceUpdate struct {
	itemID   int64
	oldPrice decimal.Decimal
	newPrice decimal.Decimal
}

// fakeStore covers the slice of Store the watcher touches.
type fakeStore struct {
	items    []domain.Item
	subs     map[int64][]domain.User
	updates  []priceUpdate
	staleFor map[int64]bool
	listErr  error
	subsErr  error
}

func newFakeStore(items ...domain.Item) *fakeStore {
	return &fakeStore{
		items:    items,
		subs:     make(map[int64][]domain.User),
		staleFor: make(map[int64]bool),
	}
}

func (f *fakeStore) ListItems(context.Context) ([]domain.Item, error) {
	return f.items, f.listErr
}

func (f *fakeStore) ListSubscribers(_ context.Context, itemID int64) ([]domain.User, error) {
	if f.subsErr != nil {
		return nil, f.subsErr
	}
	return f.subs[itemID], nil
}

func (f *fakeStore) UpdateItemPrice(_ context.Context, id int64, oldPrice, newPrice decimal.Decimal) (bool, error) {
	if f.staleFor[id] {
		return false, nil
	}
	f.updates = append(f.updates, priceUpdate{itemID: id, oldPrice: oldPrice, newPrice: newPrice})
	return true, nil
}

func (f *fakeStore) UpsertItem(context.Context, *domain.ProductInfo) (*domain.Item, bool, error) {
	return nil, false, nil
}
func (f *fakeStore) GetItem(context.Context, int64) (*domain.Item, error) { return nil, store.ErrNotFound }
func (f *fakeStore) DeleteItem(context.Context, int64) error             { return nil }
func (f *fakeStore) GetOrCreateUser(context.Context, int64) (*domain.User, bool, error) {
	return nil, false, nil
}
func (f *fakeStore) AddSubscriber(context.Context, int64, int64) error    { return nil }
func (f *fakeStore) RemoveSubscriber(context.Context, int64, int64) error { return nil }
func (f *fakeStore) ListItemsForUser(context.Context, int64, int, int) ([]domain.Item, error) {
	return nil, nil
}
func (f *fakeStore) CountItemsForUser(context.Context, int64) (int, error) { return 0, nil }
func (f *fakeStore) GetSystemState(context.Context) (*domain.SystemState, error) {
	return &domain.SystemState{}, nil
}
func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Ping(context.Context) error    { return nil }

type fakeFetcher struct {
	prices map[int64]decimal.Decimal
	errFor map[int64]error
}

func (f *fakeFetcher) Fetch(_ context.Context, itemID int64) (*domain.ProductInfo, error) {
	if err := f.errFor[itemID]; err != nil {
		return nil, &fetch.Error{ItemID: itemID, Err: err}
	}
	price, ok := f.prices[itemID]
	if !ok {
		return nil, &fetch.Error{ItemID: itemID, Err: errors.New("no such item")}
	}
	return &domain.ProductInfo{ID: itemID, Price: price}, nil
}

type sentNote struct {
	userID int64
	text   string
}

type fakeNotifier struct {
	sent    []sentNote
	failFor map[int64]bool
}

func (f *fakeNotifier) Send(_ context.Context, userID int64, text string) error {
	if f.failFor[userID] {
		return &notify.DeliverError{UserID: userID, Err: errors.New("blocked")}
	}
	f.sent = append(f.sent, sentNote{userID: userID, text: text})
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id int64, name, p string) domain.Item {
	return domain.Item{ID: id, Name: name, Price: price(p)}
}

func newTestWatcher(st *fakeStore, f *fakeFetcher, n *fakeNotifier, opts ...Option) *Watcher {
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return New(st, f, n, opts...)
}

func TestRunTick_PriceDropNotifiesAndPersists(t *testing.T) {
	t.Parallel()

	st := newFakeStore(item(101, "Kettle", "100.00"))
	st.subs[101] = []domain.User{{ID: 7}, {ID: 8}}
	f := &fakeFetcher{prices: map[int64]decimal.Decimal{101: price("80.00")}}
	n := &fakeNotifier{}

	w := newTestWatcher(st, f, n, WithProductURL(func(id int64) string {
		return "https://shop.example/101"
	}))
	require.NoError(t, w.RunTick(context.Background()))

	require.Len(t, n.sent, 2)
	assert.Equal(t, int64(7), n.sent[0].userID)
	assert.Equal(t, int64(8), n.sent[1].userID)
	assert.Contains(t, n.sent[0].text, "Kettle")
	assert.Contains(t, n.sent[0].text, "100.00")
	assert.Contains(t, n.sent[0].text, "80.00")
	assert.Contains(t, n.sent[0].text, "https://shop.example/101")

	require.Len(t, st.updates, 1)
	assert.Equal(t, int64(101), st.updates[0].itemID)
	assert.True(t, st.updates[0].oldPrice.Equal(price("100.00")))
	assert.True(t, st.updates[0].newPrice.Equal(price("80.00")))
}

func TestRunTick_PriceRiseUpdatesSilently(t *testing.T) {
	t.Parallel()

	st := newFakeStore(item(101, "Kettle", "100.00"))
	st.subs[101] = []domain.User{{ID: 7}}
	f := &fakeFetcher{prices: map[int64]decimal.Decimal{101: price("120.00")}}
	n := &fakeNotifier{}

	require.NoError(t, newTestWatcher(st, f, n).RunTick(context.Background()))

	assert.Empty(t, n.sent, "a rise must not notify")
	require.Len(t, st.updates, 1)
	assert.True(t, st.updates[0].newPrice.Equal(price("120.00")))
}

func TestRunTick_EqualPriceIsNoOp(t *testing.T) {
	t.Parallel()

	st := newFakeStore(item(101, "Kettle", "100.00"))
	st.subs[101] = []domain.User{{ID: 7}}
	f := &fakeFetcher{prices: map[int64]decimal.Decimal{101: price("100.0")}}
	n := &fakeNotifier{}

	require.NoError(t, newTestWatcher(st, f, n).RunTick(context.Background()))

	assert.Empty(t, n.sent, "a tie is not a drop")
	assert.Empty(t, st.updates)
}

func TestRunTick_FetchFailureSkipsItemOnly(t *testing.T) {
	t.Parallel()

	st := newFakeStore(
		item(101, "broken", "100.00"),
		item(102, "fine", "50.00"),
	)
	st.subs[102] = []domain.User{{ID: 7}}
	f := &fakeFetcher{
		prices: map[int64]decimal.Decimal{102: price("40.00")},
		errFor: map[int64]error{101: errors.New("catalog returned 502")},
	}
	n := &fakeNotifier{}

	require.NoError(t, newTestWatcher(st, f, n).RunTick(context.Background()))

	require.Len(t, n.sent, 1, "healthy item still processed")
	assert.Equal(t, int64(7), n.sent[0].userID)
	require.Len(t, st.updates, 1)
	assert.Equal(t, int64(102), st.updates[0].itemID, "failed item's price is retained")
}

func TestRunTick_NotifyFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	st := newFakeStore(item(101, "Kettle", "100.00"))
	st.subs[101] = []domain.User{{ID: 7}, {ID: 8}, {ID: 9}}
	f := &fakeFetcher{prices: map[int64]decimal.Decimal{101: price("80.00")}}
	n := &fakeNotifier{failFor: map[int64]bool{8: true}}

	require.NoError(t, newTestWatcher(st, f, n).RunTick(context.Background()))

	require.Len(t, n.sent, 2)
	assert.Equal(t, int64(7), n.sent[0].userID)
	assert.Equal(t, int64(9), n.sent[1].userID)
	require.Len(t, st.updates, 1, "price persists despite a failed delivery")
}

func TestRunTick_StaleUpdateSkipped(t *testing.T) {
	t.Parallel()

	st := newFakeStore(item(101, "Kettle", "100.00"))
	st.staleFor[101] = true
	f := &fakeFetcher{prices: map[int64]decimal.Decimal{101: price("80.00")}}
	n := &fakeNotifier{}

	require.NoError(t, newTestWatcher(st, f, n).RunTick(context.Background()))
	assert.Empty(t, st.updates)
}

func TestRunTick_ListFailureAborts(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.listErr = errors.New("connection refused")

	err := newTestWatcher(st, &fakeFetcher{}, &fakeNotifier{}).RunTick(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing items")
}

func TestRunTick_CanceledContext(t *testing.T) {
	t.Parallel()

	st := newFakeStore(item(101, "Kettle", "100.00"))
	f := &fakeFetcher{prices: map[int64]decimal.Decimal{101: price("80.00")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestWatcher(st, f, &fakeNotifier{}).RunTick(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	w := newTestWatcher(st, &fakeFetcher{}, &fakeNotifier{}, WithInterval(time.Hour))

	require.NoError(t, w.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
}

func TestStop_BeforeStart(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(newFakeStore(), &fakeFetcher{}, &fakeNotifier{})
	require.NoError(t, w.Stop(context.Background()))
}

// compile-time interface checks.
var (
	_ store.Store     = (*fakeStore)(nil)
	_ fetch.Fetcher   = (*fakeFetcher)(nil)
	_ notify.Notifier = (*fakeNotifier)(nil)
)
