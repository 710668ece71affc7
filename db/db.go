package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	booking_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	party_size INT NOT NULL CHECK (party_size > 0),
	visit_date TEXT NOT NULL,
	visit_time TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'new',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS menu_items (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	price_cents BIGINT NOT NULL,
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	sort INT NOT NULL DEFAULT 0,
	image_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	order_type TEXT NOT NULL DEFAULT 'booking',
	status TEXT NOT NULL DEFAULT 'pending',
	amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
	currency TEXT NOT NULL DEFAULT 'usd',
	booking_id TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	visit_date TEXT NOT NULL DEFAULT '',
	visit_time TEXT NOT NULL DEFAULT '',
	party_size INT NOT NULL DEFAULT 0,
	checkout_session_id TEXT NOT NULL DEFAULT '',
	paid_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- at most one pending order per booking, enforced by the store so that
-- concurrent duplicate create requests collapse onto a single row
CREATE UNIQUE INDEX IF NOT EXISTS orders_one_pending_per_booking
	ON orders (booking_id)
	WHERE status = 'pending' AND booking_id <> '';

CREATE TABLE IF NOT EXISTS order_items (
	id BIGSERIAL PRIMARY KEY,
	order_id TEXT NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
	menu_item_id TEXT NOT NULL,
	item_name TEXT NOT NULL,
	unit_price_cents BIGINT NOT NULL,
	quantity INT NOT NULL CHECK (quantity > 0)
);

CREATE TABLE IF NOT EXISTS email_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	to_email TEXT NOT NULL,
	from_email TEXT NOT NULL,
	provider_message_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (event_type, subject_id)
);
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}
	return nil
}
