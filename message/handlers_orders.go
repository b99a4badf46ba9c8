package message

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"ticketing/command"
	"ticketing/entity"
	"ticketing/event"
)

// createBasket returns the user's basket, creating it on the first request.
func (b *Bus) createBasket(ctx context.Context, cmd command.CreateBasket) (entity.Order, error) {
	order, err := entity.NewOrder(cmd.UserID)
	if err != nil {
		return entity.Order{}, err
	}

	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return entity.Order{}, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	_, found, err := tx.Orders().GetUserBasket(ctx, order.UserID)
	if err != nil {
		return entity.Order{}, fmt.Errorf("getting user basket: %w", err)
	}

	if !found {
		if _, err := tx.Orders().Add(ctx, order); err != nil {
			return entity.Order{}, fmt.Errorf("adding basket: %w", err)
		}
	}

	basket, found, err := tx.Orders().GetUserBasket(ctx, order.UserID)
	if err != nil {
		return entity.Order{}, fmt.Errorf("getting user basket: %w", err)
	}
	if !found {
		return entity.Order{}, fmt.Errorf("basket for user %s missing after creation", order.UserID)
	}

	if err := tx.Commit(); err != nil {
		return entity.Order{}, fmt.Errorf("committing unit of work: %w", err)
	}

	return basket, nil
}

func (b *Bus) updateBasket(ctx context.Context, cmd command.UpdateBasket) (entity.Order, error) {
	userID, err := entity.ParseUserID(string(cmd.UserID))
	if err != nil {
		return entity.Order{}, err
	}

	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return entity.Order{}, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	basket, found, err := tx.Orders().GetUserBasket(ctx, userID)
	if err != nil {
		return entity.Order{}, fmt.Errorf("getting user basket: %w", err)
	}
	if !found {
		return entity.Order{}, OrderNotFoundError{UserID: userID}
	}

	if err := basket.UpdateTickets(cmd.Tickets); err != nil {
		return entity.Order{}, err
	}

	if err := tx.Orders().Update(ctx, basket); err != nil {
		return entity.Order{}, fmt.Errorf("updating basket: %w", err)
	}

	basketID := basket.ID
	basket, found, err = tx.Orders().Get(ctx, basketID)
	if err != nil {
		return entity.Order{}, fmt.Errorf("getting basket: %w", err)
	}
	if !found {
		return entity.Order{}, fmt.Errorf("basket %d missing after update", basketID)
	}

	if err := tx.Commit(); err != nil {
		return entity.Order{}, fmt.Errorf("committing unit of work: %w", err)
	}

	return basket, nil
}

func (b *Bus) deleteOrder(ctx context.Context, cmd command.DeleteOrder) error {
	userID, err := entity.ParseUserID(string(cmd.UserID))
	if err != nil {
		return err
	}

	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	order, found, err := tx.Orders().Get(ctx, cmd.OrderID)
	if err != nil {
		return fmt.Errorf("getting order: %w", err)
	}
	if !found {
		return OrderNotFoundError{OrderID: cmd.OrderID}
	}
	if !order.BelongsTo(userID) {
		return OrderNotBelongUserError{OrderID: order.ID, UserID: userID}
	}

	if err := tx.Orders().Delete(ctx, order); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}

	return nil
}

// refundDeletedEventTickets refunds every checked-out ticket for an event
// that was called off.
func (b *Bus) refundDeletedEventTickets(ctx context.Context, e event.Deleted) error {
	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	orders, err := tx.Orders().ListByEvent(ctx, e.EventID)
	if err != nil {
		return fmt.Errorf("listing orders by event: %w", err)
	}

	var refunded int
	for _, order := range orders {
		n := order.RefundTickets([]int64{e.EventID})
		if n == 0 {
			continue
		}

		if err := tx.Orders().Update(ctx, order); err != nil {
			return fmt.Errorf("updating order %d: %w", order.ID, err)
		}
		refunded += n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}

	log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":         e.EventID,
		"orders":           len(orders),
		"tickets_refunded": refunded,
	}).Info("Refunded tickets of deleted event")

	return nil
}
