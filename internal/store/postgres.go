package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// PostgresStore methods require live Postgres; covered by integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// UpsertItem inserts an item by its catalog product ID. An existing row is
// left untouched and returned with created=false.
func (s *PostgresStore) UpsertItem(
	ctx context.Context,
	info *domain.ProductInfo,
) (*domain.Item, bool, error) {
	args := pgx.NamedArgs{
		"id":        info.ID,
		"name":      info.Name,
		"image_url": info.ImageURL,
		"price":     info.Price,
	}

	item := &domain.Item{}
	err := scanItem(s.pool.QueryRow(ctx, queryInsertItem, args), item)
	if err == nil {
		return item, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("inserting item %d: %w", info.ID, err)
	}

	// Conflict: the item already exists, read it back.
	item, err = s.GetItem(ctx, info.ID)
	if err != nil {
		return nil, false, err
	}
	return item, false, nil
}

// GetItem retrieves an item by its catalog product ID.
func (s *PostgresStore) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item := &domain.Item{}
	if err := scanItem(s.pool.QueryRow(ctx, queryGetItem, id), item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return item, nil
}

// ListItems returns every tracked item ordered by product ID.
func (s *PostgresStore) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx, queryListItems)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// UpdateItemPrice conditionally updates the stored price. The WHERE clause
// on the old price makes the watcher's compare-and-set atomic; zero rows
// affected means a concurrent writer got there first.
func (s *PostgresStore) UpdateItemPrice(
	ctx context.Context,
	id int64,
	oldPrice, newPrice decimal.Decimal,
) (bool, error) {
	tag, err := s.pool.Exec(ctx, queryUpdateItemPrice, id, oldPrice, newPrice)
	if err != nil {
		return false, fmt.Errorf("updating price for item %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteItem removes an item; subscriptions go with it via ON DELETE CASCADE.
func (s *PostgresStore) DeleteItem(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, queryDeleteItem, id)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateUser returns the user with the given platform ID, creating it
// on first interaction.
func (s *PostgresStore) GetOrCreateUser(
	ctx context.Context,
	id int64,
) (*domain.User, bool, error) {
	user := &domain.User{}
	err := s.pool.QueryRow(ctx, queryInsertUser, id).Scan(&user.ID, &user.CreatedAt)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("inserting user %d: %w", id, err)
	}

	err = s.pool.QueryRow(ctx, queryGetUser, id).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("getting user %d: %w", id, err)
	}
	return user, false, nil
}

// AddSubscriber links a user to an item. Adding an existing subscription is
// a no-op, so a (user, item) pair appears at most once.
func (s *PostgresStore) AddSubscriber(ctx context.Context, itemID, userID int64) error {
	if _, err := s.pool.Exec(ctx, queryAddSubscriber, itemID, userID); err != nil {
		return fmt.Errorf("adding subscriber %d to item %d: %w", userID, itemID, err)
	}
	return nil
}

// RemoveSubscriber unlinks a user from an item.
func (s *PostgresStore) RemoveSubscriber(ctx context.Context, itemID, userID int64) error {
	if _, err := s.pool.Exec(ctx, queryRemoveSubscriber, itemID, userID); err != nil {
		return fmt.Errorf("removing subscriber %d from item %d: %w", userID, itemID, err)
	}
	return nil
}

// ListSubscribers returns every user subscribed to an item.
func (s *PostgresStore) ListSubscribers(ctx context.Context, itemID int64) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, queryListSubscribers, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListItemsForUser returns one page of a user's tracked items in
// subscription order.
func (s *PostgresStore) ListItemsForUser(
	ctx context.Context,
	userID int64,
	offset, limit int,
) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx, queryListItemsForUser, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("querying items for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// CountItemsForUser returns the user's current subscription count.
func (s *PostgresStore) CountItemsForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, queryCountItemsForUser, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting items for user %d: %w", userID, err)
	}
	return count, nil
}

// GetSystemState returns aggregate counts in a single round trip.
func (s *PostgresStore) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	st := &domain.SystemState{}
	err := s.pool.QueryRow(ctx, querySystemState).Scan(
		&st.ItemsTotal, &st.ItemsOrphaned, &st.UsersTotal, &st.SubscriptionsTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("querying system state: %w", err)
	}
	return st, nil
}

// scanItem scans one item row, mapping pgx.ErrNoRows to ErrNotFound.
func scanItem(row pgx.Row, item *domain.Item) error {
	err := row.Scan(
		&item.ID, &item.Name, &item.ImageURL, &item.Price,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func collectItems(rows pgx.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(
			&it.ID, &it.Name, &it.ImageURL, &it.Price,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
