package message

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"

	"ticketing/command"
	"ticketing/entity"
	"ticketing/event"
)

func (b *Bus) createEvent(ctx context.Context, cmd command.CreateEvent) (entity.Event, error) {
	e, err := entity.NewEvent(cmd.Params(), b.now())
	if err != nil {
		return entity.Event{}, err
	}

	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return entity.Event{}, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	e.ID, err = tx.Events().Add(ctx, e)
	if err != nil {
		return entity.Event{}, fmt.Errorf("adding event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entity.Event{}, fmt.Errorf("committing unit of work: %w", err)
	}

	return e, nil
}

func (b *Bus) updateEvent(ctx context.Context, cmd command.UpdateEvent) (entity.Event, error) {
	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return entity.Event{}, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	e, err := getLiveEvent(ctx, tx, cmd.EventID)
	if err != nil {
		return entity.Event{}, err
	}

	originalPrice := e.TicketPrice
	originalAvailableTickets := e.AvailableTickets

	if err := e.Update(cmd.Changes(), b.now()); err != nil {
		return entity.Event{}, err
	}

	if err := tx.Events().Update(ctx, e); err != nil {
		return entity.Event{}, fmt.Errorf("updating event: %w", err)
	}

	if !e.TicketPrice.Equal(originalPrice) {
		priceChanged := event.NewTicketPriceChanged(uuid.NewString(), e.ID, e.TicketPrice)
		if err := tx.Publisher().Publish(ctx, priceChanged); err != nil {
			return entity.Event{}, fmt.Errorf("publishing ticket price changed event: %w", err)
		}
	}

	if e.AvailableTickets < originalAvailableTickets {
		decreased := event.NewAvailableTicketsDecreased(uuid.NewString(), e.ID, e.AvailableTickets)
		if err := tx.Publisher().Publish(ctx, decreased); err != nil {
			return entity.Event{}, fmt.Errorf("publishing available tickets decreased event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return entity.Event{}, fmt.Errorf("committing unit of work: %w", err)
	}

	return e, nil
}

// deleteEvent only notifies about events that have not happened yet; nobody
// needs a refund for a past one.
func (b *Bus) deleteEvent(ctx context.Context, cmd command.DeleteEvent) error {
	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	e, err := getLiveEvent(ctx, tx, cmd.EventID)
	if err != nil {
		return err
	}

	now := b.now()
	if err := e.Delete(now); err != nil {
		return err
	}

	if err := tx.Events().Update(ctx, e); err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	if e.IsUpcoming(now) {
		if err := tx.Publisher().Publish(ctx, event.NewDeleted(uuid.NewString(), e.ID)); err != nil {
			return fmt.Errorf("publishing deleted event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}

	return nil
}

func (b *Bus) ticketsSold(ctx context.Context, e event.TicketsSold) (entity.Event, error) {
	tx, err := b.uow.Begin(ctx)
	if err != nil {
		return entity.Event{}, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer rollback(ctx, tx)

	if key := e.DeduplicationKey(); key != "" {
		first, err := tx.MarkProcessed(ctx, key)
		if err != nil {
			return entity.Event{}, fmt.Errorf("marking message as processed: %w", err)
		}
		if !first {
			log.FromContext(ctx).WithField("deduplication_key", key).Info("Skipping already processed tickets sold event")
			return getLiveEvent(ctx, tx, e.EventID)
		}
	}

	ev, err := getLiveEvent(ctx, tx, e.EventID)
	if err != nil {
		return entity.Event{}, err
	}

	if err := ev.SellTickets(e.TicketsCount); err != nil {
		return entity.Event{}, err
	}

	if err := tx.Events().Update(ctx, ev); err != nil {
		return entity.Event{}, fmt.Errorf("updating event: %w", err)
	}

	decreased := event.NewAvailableTicketsDecreased(uuid.NewString(), ev.ID, ev.AvailableTickets)
	if err := tx.Publisher().Publish(ctx, decreased); err != nil {
		return entity.Event{}, fmt.Errorf("publishing available tickets decreased event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entity.Event{}, fmt.Errorf("committing unit of work: %w", err)
	}

	return ev, nil
}

// getLiveEvent treats a soft-deleted event the same as a missing one.
func getLiveEvent(ctx context.Context, tx Tx, eventID int64) (entity.Event, error) {
	e, found, err := tx.Events().Get(ctx, eventID)
	if err != nil {
		return entity.Event{}, fmt.Errorf("getting event: %w", err)
	}
	if !found || e.IsDeleted() {
		return entity.Event{}, InvalidIDError{ID: eventID}
	}

	return e, nil
}
