package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"ticketing/entity"
)

const DefaultItemsCount = 20

type EventFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	ItemsCount int
}

// EventViews answers read-only queries about events outside any unit of work.
type EventViews struct {
	db *sqlx.DB
}

func NewEventViews(db *sqlx.DB) EventViews {
	return EventViews{
		db: db,
	}
}

// Get returns the event unless it is missing or deleted.
func (v EventViews) Get(ctx context.Context, eventID int64) (entity.Event, bool, error) {
	var e entity.Event
	err := v.db.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM event
		WHERE id = $1 AND deleted_at IS NULL;`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, false, nil
	}
	if err != nil {
		return entity.Event{}, false, fmt.Errorf("querying db: %w", err)
	}

	return e, true, nil
}

// List returns a page of events that still have tickets for sale, soonest
// first. Pages start at 1.
func (v EventViews) List(ctx context.Context, f EventFilter) ([]entity.Event, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	itemsCount := f.ItemsCount
	if itemsCount < 1 {
		itemsCount = DefaultItemsCount
	}

	events := []entity.Event{}
	err := v.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM event
		WHERE deleted_at IS NULL
			AND available_tickets > 0
			AND ($1::timestamptz IS NULL OR event_datetime >= $1)
			AND ($2::timestamptz IS NULL OR event_datetime <= $2)
		ORDER BY event_datetime, id
		LIMIT $3 OFFSET $4;`,
		f.DateFrom, f.DateTo, itemsCount, (page-1)*itemsCount)
	if err != nil {
		return nil, fmt.Errorf("querying db: %w", err)
	}

	return events, nil
}
