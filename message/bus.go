package message

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"ticketing/command"
	"ticketing/event"
)

// Message is a command or an event. MessageName is the discriminator used on
// the wire and in logs.
type Message interface {
	MessageName() string
}

type Dispatcher interface {
	Handle(ctx context.Context, msg Message) (any, error)
}

// Bus routes every message to exactly one handler. It keeps no state between
// calls and never retries: whoever calls Handle owns concurrency and retries.
type Bus struct {
	uow UnitOfWork
	now func() time.Time
}

func NewBus(uow UnitOfWork, now func() time.Time) *Bus {
	if now == nil {
		now = time.Now
	}

	return &Bus{
		uow: uow,
		now: now,
	}
}

// Handle runs the handler registered for msg and returns its result. Errors
// come back unchanged. A message type without a handler is a programming
// error and panics.
func (b *Bus) Handle(ctx context.Context, msg Message) (any, error) {
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"message_name": msg.MessageName(),
		"message":      fmt.Sprintf("%+v", msg),
	})
	logger.Debug("Handling message")

	result, err := b.dispatch(ctx, msg)
	if err != nil {
		if isExpected(err) {
			logger.WithError(err).Info("Message rejected")
		} else {
			logger.WithError(err).Error("Message handling error")
		}
		return nil, err
	}

	logger.Debug("Message handled")

	return result, nil
}

func (b *Bus) dispatch(ctx context.Context, msg Message) (any, error) {
	switch m := msg.(type) {
	case command.CreateEvent:
		return b.createEvent(ctx, m)
	case command.UpdateEvent:
		return b.updateEvent(ctx, m)
	case command.DeleteEvent:
		return nil, b.deleteEvent(ctx, m)
	case event.TicketsSold:
		return b.ticketsSold(ctx, m)
	case command.CreateBasket:
		return b.createBasket(ctx, m)
	case command.UpdateBasket:
		return b.updateBasket(ctx, m)
	case command.DeleteOrder:
		return nil, b.deleteOrder(ctx, m)
	case event.Deleted:
		return nil, b.refundDeletedEventTickets(ctx, m)
	default:
		panic(fmt.Sprintf("no handler registered for message %s (%T)", msg.MessageName(), msg))
	}
}

func rollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(); err != nil {
		log.FromContext(ctx).WithError(err).Error("Failed to roll back unit of work")
	}
}
