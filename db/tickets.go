package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ticketing/entity"
)

func addTicket(ctx context.Context, tx *sqlx.Tx, orderID int64, t entity.Ticket) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO ticket
		(event_id, order_id, price, refunded)
		VALUES ($1, $2, $3, $4);`,
		t.EventID, orderID, t.Price, t.Refunded)
	if err != nil {
		return fmt.Errorf("inserting ticket for event %d: %w", t.EventID, err)
	}

	return nil
}

func updateTicket(ctx context.Context, tx *sqlx.Tx, orderID int64, t entity.Ticket) error {
	res, err := tx.ExecContext(ctx, `UPDATE ticket SET
		price = $1,
		refunded = $2
		WHERE id = $3 AND order_id = $4;`,
		t.Price, t.Refunded, t.ID, orderID)
	if err != nil {
		return fmt.Errorf("updating ticket %d: %w", t.ID, err)
	}

	return expectOneRow(res)
}

// deleteTicketsExcept removes the order's tickets whose ids are not in keep.
func deleteTicketsExcept(ctx context.Context, tx *sqlx.Tx, orderID int64, keep []int64) error {
	if keep == nil {
		keep = []int64{}
	}

	_, err := tx.ExecContext(ctx, `DELETE FROM ticket WHERE order_id = $1 AND NOT (id = ANY($2));`,
		orderID, pq.Int64Array(keep))
	if err != nil {
		return fmt.Errorf("deleting tickets: %w", err)
	}

	return nil
}

// listTickets returns the tickets of the given orders keyed by order id, each
// in insertion order.
func listTickets(ctx context.Context, tx *sqlx.Tx, orderIDs []int64) (map[int64][]entity.Ticket, error) {
	tickets := make(map[int64][]entity.Ticket, len(orderIDs))
	if len(orderIDs) == 0 {
		return tickets, nil
	}

	rows, err := tx.QueryxContext(ctx, `SELECT id, event_id, order_id, price, refunded
		FROM ticket
		WHERE order_id = ANY($1)
		ORDER BY id;`,
		pq.Int64Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("querying db: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t entity.Ticket
		if err := rows.StructScan(&t); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		tickets[t.OrderID] = append(tickets[t.OrderID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return tickets, nil
}
