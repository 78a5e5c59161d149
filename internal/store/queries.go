package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Item queries.
const (
	queryInsertItem = `
		INSERT INTO items (id, name, image_url, price, created_at, updated_at)
		VALUES (@id, @name, @image_url, @price, now(), now())
		ON CONFLICT (id) DO NOTHING
		RETURNING id, name, image_url, price, created_at, updated_at`

	queryGetItem = `
		SELECT id, name, image_url, price, created_at, updated_at
		FROM items
		WHERE id = $1`

	queryListItems = `
		SELECT id, name, image_url, price, created_at, updated_at
		FROM items
		ORDER BY id`

	queryUpdateItemPrice = `
		UPDATE items SET
			price = $3,
			updated_at = now()
		WHERE id = $1 AND price = $2`

	queryDeleteItem = `DELETE FROM items WHERE id = $1`
)

// User queries.
const (
	queryInsertUser = `
		INSERT INTO users (id, created_at)
		VALUES ($1, now())
		ON CONFLICT (id) DO NOTHING
		RETURNING id, created_at`

	queryGetUser = `
		SELECT id, created_at
		FROM users
		WHERE id = $1`
)

// Subscription queries.
const (
	queryAddSubscriber = `
		INSERT INTO subscriptions (item_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (item_id, user_id) DO NOTHING`

	queryRemoveSubscriber = `
		DELETE FROM subscriptions
		WHERE item_id = $1 AND user_id = $2`

	queryListSubscribers = `
		SELECT u.id, u.created_at
		FROM users u
		JOIN subscriptions s ON s.user_id = u.id
		WHERE s.item_id = $1
		ORDER BY u.id`

	queryListItemsForUser = `
		SELECT i.id, i.name, i.image_url, i.price, i.created_at, i.updated_at
		FROM items i
		JOIN subscriptions s ON s.item_id = i.id
		WHERE s.user_id = $1
		ORDER BY s.created_at, i.id
		OFFSET $2 LIMIT $3`

	queryCountItemsForUser = `
		SELECT COUNT(*)
		FROM subscriptions
		WHERE user_id = $1`
)

// Admin queries.
const (
	querySystemState = `
		SELECT
			(SELECT COUNT(*) FROM items)                            AS items_total,
			(SELECT COUNT(*) FROM items i
			 WHERE NOT EXISTS (
			 	SELECT 1 FROM subscriptions s WHERE s.item_id = i.id
			 ))                                                     AS items_orphaned,
			(SELECT COUNT(*) FROM users)                            AS users_total,
			(SELECT COUNT(*) FROM subscriptions)                    AS subscriptions_total`
)
