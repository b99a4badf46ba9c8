package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ticketing/message"
)

// PublisherFactory builds the publisher that stages events inside tx.
type PublisherFactory func(tx *sql.Tx) (message.Publisher, error)

type UnitOfWork struct {
	db        *sqlx.DB
	publisher PublisherFactory
}

// NewUnitOfWork returns a unit of work over db. With a nil publisher factory
// every event published inside a transaction is discarded.
func NewUnitOfWork(db *sqlx.DB, publisher PublisherFactory) UnitOfWork {
	return UnitOfWork{
		db:        db,
		publisher: publisher,
	}
}

func (u UnitOfWork) Begin(ctx context.Context) (message.Tx, error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	var publisher message.Publisher = message.NopPublisher{}
	if u.publisher != nil {
		publisher, err = u.publisher(tx.Tx)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating publisher: %w", err), tx.Rollback())
		}
	}

	return &unitOfWorkTx{
		tx:        tx,
		events:    NewEventRepo(tx),
		orders:    NewOrderRepo(tx),
		publisher: publisher,
	}, nil
}

type unitOfWorkTx struct {
	tx        *sqlx.Tx
	events    EventRepo
	orders    OrderRepo
	publisher message.Publisher
}

func (t *unitOfWorkTx) Events() message.EventRepository {
	return t.events
}

func (t *unitOfWorkTx) Orders() message.OrderRepository {
	return t.orders
}

func (t *unitOfWorkTx) Publisher() message.Publisher {
	return t.publisher
}

func (t *unitOfWorkTx) MarkProcessed(ctx context.Context, key string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO processed_messages (message_key)
		VALUES ($1)
		ON CONFLICT DO NOTHING;`, key)
	if err != nil {
		return false, fmt.Errorf("executing insert query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return n == 1, nil
}

func (t *unitOfWorkTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (t *unitOfWorkTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
