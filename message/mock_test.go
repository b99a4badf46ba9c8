package message_test

import (
	"context"
	"errors"
	"sync"

	"ticketing/entity"
	"ticketing/message"
)

// MockUnitOfWork keeps aggregates in memory. Transactions are serialised and
// work on a copy of the state that replaces it on commit.
type MockUnitOfWork struct {
	txLock sync.Mutex

	lock       sync.Mutex
	state      mockState
	Published  []any
	PublishErr error
	CommitErr  error
}

type mockState struct {
	events    map[int64]entity.Event
	orders    map[int64]entity.Order
	processed map[string]bool
	lastID    int64
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		state: mockState{
			events:    map[int64]entity.Event{},
			orders:    map[int64]entity.Order{},
			processed: map[string]bool{},
		},
	}
}

func (u *MockUnitOfWork) Begin(context.Context) (message.Tx, error) {
	u.txLock.Lock()

	u.lock.Lock()
	defer u.lock.Unlock()

	return &mockTx{uow: u, state: u.state.clone()}, nil
}

func (u *MockUnitOfWork) Event(id int64) (entity.Event, bool) {
	u.lock.Lock()
	defer u.lock.Unlock()

	e, ok := u.state.events[id]
	return e, ok
}

func (u *MockUnitOfWork) Order(id int64) (entity.Order, bool) {
	u.lock.Lock()
	defer u.lock.Unlock()

	o, ok := u.state.orders[id]
	return o, ok
}

func (u *MockUnitOfWork) EventCount() int {
	u.lock.Lock()
	defer u.lock.Unlock()

	return len(u.state.events)
}

func (u *MockUnitOfWork) PublishedEvents() []any {
	u.lock.Lock()
	defer u.lock.Unlock()

	return append([]any(nil), u.Published...)
}

// SeedEvent stores e as if it had been committed and returns its id.
func (u *MockUnitOfWork) SeedEvent(e entity.Event) int64 {
	u.lock.Lock()
	defer u.lock.Unlock()

	u.state.lastID++
	e.ID = u.state.lastID
	u.state.events[e.ID] = e
	return e.ID
}

// SeedOrder stores o with ids for it and its tickets and returns its id.
func (u *MockUnitOfWork) SeedOrder(o entity.Order) int64 {
	u.lock.Lock()
	defer u.lock.Unlock()

	u.state.lastID++
	o.ID = u.state.lastID
	u.state.assignTicketIDs(&o)
	u.state.orders[o.ID] = o
	return o.ID
}

func (s mockState) clone() mockState {
	c := mockState{
		events:    make(map[int64]entity.Event, len(s.events)),
		orders:    make(map[int64]entity.Order, len(s.orders)),
		processed: make(map[string]bool, len(s.processed)),
		lastID:    s.lastID,
	}
	for id, e := range s.events {
		c.events[id] = e
	}
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	for k := range s.processed {
		c.processed[k] = true
	}
	return c
}

func (s *mockState) assignTicketIDs(o *entity.Order) {
	for i := range o.Tickets {
		if o.Tickets[i].ID == 0 {
			s.lastID++
			o.Tickets[i].ID = s.lastID
		}
		o.Tickets[i].OrderID = o.ID
	}
}

func cloneOrder(o entity.Order) entity.Order {
	o.Tickets = append([]entity.Ticket{}, o.Tickets...)
	return o
}

type mockTx struct {
	uow    *MockUnitOfWork
	state  mockState
	staged []any
	done   bool
}

func (t *mockTx) Events() message.EventRepository {
	return mockEventRepo{t}
}

func (t *mockTx) Orders() message.OrderRepository {
	return mockOrderRepo{t}
}

func (t *mockTx) Publisher() message.Publisher {
	return mockPublisher{t}
}

func (t *mockTx) MarkProcessed(_ context.Context, key string) (bool, error) {
	if t.state.processed[key] {
		return false, nil
	}
	t.state.processed[key] = true
	return true, nil
}

func (t *mockTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	defer t.finish()

	t.uow.lock.Lock()
	defer t.uow.lock.Unlock()

	if t.uow.CommitErr != nil {
		return t.uow.CommitErr
	}

	t.uow.state = t.state
	t.uow.Published = append(t.uow.Published, t.staged...)
	return nil
}

func (t *mockTx) Rollback() error {
	if !t.done {
		t.finish()
	}
	return nil
}

func (t *mockTx) finish() {
	t.done = true
	t.uow.txLock.Unlock()
}

type mockPublisher struct {
	tx *mockTx
}

func (p mockPublisher) Publish(_ context.Context, event any) error {
	p.tx.uow.lock.Lock()
	err := p.tx.uow.PublishErr
	p.tx.uow.lock.Unlock()
	if err != nil {
		return err
	}

	p.tx.staged = append(p.tx.staged, event)
	return nil
}

type mockEventRepo struct {
	tx *mockTx
}

func (r mockEventRepo) Add(_ context.Context, e entity.Event) (int64, error) {
	r.tx.state.lastID++
	e.ID = r.tx.state.lastID
	r.tx.state.events[e.ID] = e
	return e.ID, nil
}

func (r mockEventRepo) Get(_ context.Context, eventID int64) (entity.Event, bool, error) {
	e, ok := r.tx.state.events[eventID]
	return e, ok, nil
}

func (r mockEventRepo) Update(_ context.Context, e entity.Event) error {
	if _, ok := r.tx.state.events[e.ID]; !ok {
		return errors.New("event not found")
	}
	r.tx.state.events[e.ID] = e
	return nil
}

type mockOrderRepo struct {
	tx *mockTx
}

func (r mockOrderRepo) Add(ctx context.Context, o entity.Order) (int64, error) {
	if o.IsBasket() {
		if _, found, _ := r.GetUserBasket(ctx, o.UserID); found {
			return 0, nil
		}
	}

	r.tx.state.lastID++
	o.ID = r.tx.state.lastID
	o = cloneOrder(o)
	r.tx.state.assignTicketIDs(&o)
	r.tx.state.orders[o.ID] = o
	return o.ID, nil
}

func (r mockOrderRepo) Get(_ context.Context, orderID int64) (entity.Order, bool, error) {
	o, ok := r.tx.state.orders[orderID]
	return cloneOrder(o), ok, nil
}

func (r mockOrderRepo) GetUserBasket(_ context.Context, userID entity.UserID) (entity.Order, bool, error) {
	for _, o := range r.tx.state.orders {
		if o.UserID == userID && o.IsBasket() {
			return cloneOrder(o), true, nil
		}
	}
	return entity.Order{}, false, nil
}

func (r mockOrderRepo) ListByEvent(_ context.Context, eventID int64) ([]entity.Order, error) {
	var orders []entity.Order
	for _, o := range r.tx.state.orders {
		for _, t := range o.Tickets {
			if t.EventID == eventID {
				orders = append(orders, cloneOrder(o))
				break
			}
		}
	}
	return orders, nil
}

func (r mockOrderRepo) Update(_ context.Context, o entity.Order) error {
	if _, ok := r.tx.state.orders[o.ID]; !ok {
		return errors.New("order not found")
	}
	o = cloneOrder(o)
	r.tx.state.assignTicketIDs(&o)
	r.tx.state.orders[o.ID] = o
	return nil
}

func (r mockOrderRepo) Delete(_ context.Context, o entity.Order) error {
	if _, ok := r.tx.state.orders[o.ID]; !ok {
		return errors.New("order not found")
	}
	delete(r.tx.state.orders, o.ID)
	return nil
}
