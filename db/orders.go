package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ticketing/entity"
)

const orderColumns = `id, user_id, order_status`

type OrderRepo struct {
	tx *sqlx.Tx
}

func NewOrderRepo(tx *sqlx.Tx) OrderRepo {
	return OrderRepo{
		tx: tx,
	}
}

// Add inserts the order and its tickets. Adding a basket for a user that
// already has one is a no-op and returns id 0.
func (r OrderRepo) Add(ctx context.Context, o entity.Order) (int64, error) {
	var id int64
	err := r.tx.QueryRowxContext(ctx, `INSERT INTO "order"
		(user_id, order_status)
		VALUES ($1, $2)
		ON CONFLICT (user_id) WHERE order_status IN ('CREATE', 'PAYMENT_PENDING') DO NOTHING
		RETURNING id;`,
		o.UserID, o.Status,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("executing insert query: %w", err)
	}

	for _, t := range o.Tickets {
		if err := addTicket(ctx, r.tx, id, t); err != nil {
			return 0, err
		}
	}

	return id, nil
}

func (r OrderRepo) Get(ctx context.Context, orderID int64) (entity.Order, bool, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM "order" WHERE id = $1 FOR UPDATE;`, orderID)
}

func (r OrderRepo) GetUserBasket(ctx context.Context, userID entity.UserID) (entity.Order, bool, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM "order"
		WHERE user_id = $1 AND order_status = ANY($2)
		FOR UPDATE;`,
		userID, pq.StringArray(basketStatuses()))
}

// ListByEvent returns every order holding at least one ticket for the event,
// ordered by id so concurrent callers lock rows in the same order.
func (r OrderRepo) ListByEvent(ctx context.Context, eventID int64) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.tx.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM "order"
		WHERE id IN (SELECT order_id FROM ticket WHERE event_id = $1)
		ORDER BY id
		FOR UPDATE;`,
		eventID)
	if err != nil {
		return nil, fmt.Errorf("querying db: %w", err)
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	tickets, err := listTickets(ctx, r.tx, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Tickets = ticketsOrEmpty(tickets[orders[i].ID])
	}

	return orders, nil
}

// Update stores the order status and reconciles its tickets: tickets without
// an id are inserted, known ones updated, and the rest deleted.
func (r OrderRepo) Update(ctx context.Context, o entity.Order) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE "order" SET order_status = $1 WHERE id = $2;`, o.Status, o.ID)
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	keep := make([]int64, 0, len(o.Tickets))
	for _, t := range o.Tickets {
		if t.ID != 0 {
			keep = append(keep, t.ID)
		}
	}

	if err := deleteTicketsExcept(ctx, r.tx, o.ID, keep); err != nil {
		return err
	}

	for _, t := range o.Tickets {
		if t.ID == 0 {
			err = addTicket(ctx, r.tx, o.ID, t)
		} else {
			err = updateTicket(ctx, r.tx, o.ID, t)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the order; its tickets go with it.
func (r OrderRepo) Delete(ctx context.Context, o entity.Order) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM "order" WHERE id = $1;`, o.ID)
	if err != nil {
		return fmt.Errorf("executing delete query: %w", err)
	}

	return expectOneRow(res)
}

func (r OrderRepo) getOne(ctx context.Context, query string, args ...any) (entity.Order, bool, error) {
	var o entity.Order
	err := r.tx.GetContext(ctx, &o, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, false, nil
	}
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("querying db: %w", err)
	}

	tickets, err := listTickets(ctx, r.tx, []int64{o.ID})
	if err != nil {
		return entity.Order{}, false, err
	}
	o.Tickets = ticketsOrEmpty(tickets[o.ID])

	return o, true, nil
}

func basketStatuses() []string {
	statuses := make([]string, len(entity.BasketStatuses))
	for i, s := range entity.BasketStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func ticketsOrEmpty(tickets []entity.Ticket) []entity.Ticket {
	if tickets == nil {
		return []entity.Ticket{}
	}
	return tickets
}
