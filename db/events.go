package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ticketing/entity"
)

const eventColumns = `id, name, description, event_datetime, available_tickets, ticket_price, deleted_at`

type EventRepo struct {
	tx *sqlx.Tx
}

func NewEventRepo(tx *sqlx.Tx) EventRepo {
	return EventRepo{
		tx: tx,
	}
}

func (r EventRepo) Add(ctx context.Context, e entity.Event) (int64, error) {
	var id int64
	err := r.tx.QueryRowxContext(ctx, `INSERT INTO event
		(name, description, event_datetime, available_tickets, ticket_price, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		e.Name, e.Description, e.EventDatetime, e.AvailableTickets, e.TicketPrice, e.DeletedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("executing insert query: %w", err)
	}

	return id, nil
}

// Get locks the event row until the transaction ends.
func (r EventRepo) Get(ctx context.Context, eventID int64) (entity.Event, bool, error) {
	var e entity.Event
	err := r.tx.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM event WHERE id = $1 FOR UPDATE;`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, false, nil
	}
	if err != nil {
		return entity.Event{}, false, fmt.Errorf("querying db: %w", err)
	}

	return e, true, nil
}

func (r EventRepo) Update(ctx context.Context, e entity.Event) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE event SET
		name = $1,
		description = $2,
		event_datetime = $3,
		available_tickets = $4,
		ticket_price = $5,
		deleted_at = $6
		WHERE id = $7;`,
		e.Name, e.Description, e.EventDatetime, e.AvailableTickets, e.TicketPrice, e.DeletedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected exec result: %d rows affected", n)
	}

	return nil
}
