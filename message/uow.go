package message

import (
	"context"

	"ticketing/entity"
)

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// NopPublisher accepts and discards events. It backs units of work that are
// not expected to emit anything.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, any) error {
	return nil
}

// Repositories return found == false for a missing aggregate; that is never
// an error. Rows they read stay locked until the unit of work ends.
type EventRepository interface {
	Add(ctx context.Context, e entity.Event) (int64, error)
	Get(ctx context.Context, eventID int64) (entity.Event, bool, error)
	Update(ctx context.Context, e entity.Event) error
}

type OrderRepository interface {
	Add(ctx context.Context, o entity.Order) (int64, error)
	Get(ctx context.Context, orderID int64) (entity.Order, bool, error)
	GetUserBasket(ctx context.Context, userID entity.UserID) (entity.Order, bool, error)
	ListByEvent(ctx context.Context, eventID int64) ([]entity.Order, error)
	Update(ctx context.Context, o entity.Order) error
	Delete(ctx context.Context, o entity.Order) error
}

// Tx is one open unit of work. Nothing it staged survives unless Commit
// succeeds; Rollback after Commit is a no-op.
type Tx interface {
	Events() EventRepository
	Orders() OrderRepository
	Publisher() Publisher
	// MarkProcessed records key and reports whether this is the first time
	// it was seen.
	MarkProcessed(ctx context.Context, key string) (bool, error)
	Commit() error
	Rollback() error
}

// UnitOfWork opens a new transaction on every Begin.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}
