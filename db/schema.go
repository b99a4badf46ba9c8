package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func InitialiseEventsDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateEventTable(ctx, db); err != nil {
		return fmt.Errorf("creating event table: %w", err)
	}

	if err := CreateProcessedMessagesTable(ctx, db); err != nil {
		return fmt.Errorf("creating processed messages table: %w", err)
	}

	return nil
}

func InitialiseOrdersDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateOrderTable(ctx, db); err != nil {
		return fmt.Errorf("creating order table: %w", err)
	}

	if err := CreateTicketTable(ctx, db); err != nil {
		return fmt.Errorf("creating ticket table: %w", err)
	}

	return nil
}

func CreateEventTable(ctx context.Context, db *sqlx.DB) error {
	return execAll(ctx, db,
		`CREATE TABLE IF NOT EXISTS event (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			event_datetime TIMESTAMP WITH TIME ZONE NOT NULL,
			available_tickets INTEGER NOT NULL
				CONSTRAINT check_available_tickets_non_negative CHECK (available_tickets >= 0),
			ticket_price NUMERIC(10, 2) NOT NULL
				CONSTRAINT check_ticket_price_positive CHECK (ticket_price > 0),
			deleted_at TIMESTAMP WITH TIME ZONE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_event_datetime ON event (event_datetime);`,
	)
}

func CreateProcessedMessagesTable(ctx context.Context, db *sqlx.DB) error {
	return execAll(ctx, db,
		`CREATE TABLE IF NOT EXISTS processed_messages (
			message_key VARCHAR(255) PRIMARY KEY,
			processed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);`,
	)
}

func CreateOrderTable(ctx context.Context, db *sqlx.DB) error {
	return execAll(ctx, db,
		`CREATE TABLE IF NOT EXISTS "order" (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(24) NOT NULL,
			order_status VARCHAR(32) NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_user_id ON "order" USING hash (user_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_order_user_basket ON "order" (user_id)
			WHERE order_status IN ('CREATE', 'PAYMENT_PENDING');`,
	)
}

func CreateTicketTable(ctx context.Context, db *sqlx.DB) error {
	return execAll(ctx, db,
		`CREATE TABLE IF NOT EXISTS ticket (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL,
			order_id BIGINT NOT NULL REFERENCES "order" (id) ON DELETE CASCADE,
			price NUMERIC(10, 2) NOT NULL
				CONSTRAINT check_ticket_price_positive CHECK (price > 0),
			refunded BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ticket_event_id ON ticket USING hash (event_id);`,
		`CREATE INDEX IF NOT EXISTS idx_ticket_order_id ON ticket USING hash (order_id);`,
	)
}

func execAll(ctx context.Context, db *sqlx.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
