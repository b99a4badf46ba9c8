package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID               int64           `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Description      string          `json:"description" db:"description"`
	EventDatetime    time.Time       `json:"event_datetime" db:"event_datetime"`
	AvailableTickets int             `json:"available_tickets" db:"available_tickets"`
	TicketPrice      decimal.Decimal `json:"ticket_price" db:"ticket_price"`
	DeletedAt        *time.Time      `json:"deleted_at" db:"deleted_at"`
}

type EventParams struct {
	Name             string
	Description      string
	EventDatetime    time.Time
	AvailableTickets int
	TicketPrice      decimal.Decimal
}

// EventUpdate holds the fields of an event to change. Nil fields are left as
// they are.
type EventUpdate struct {
	Name             *string
	Description      *string
	EventDatetime    *time.Time
	AvailableTickets *int
	TicketPrice      *decimal.Decimal
}

func (u EventUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.Description == nil &&
		u.EventDatetime == nil &&
		u.AvailableTickets == nil &&
		u.TicketPrice == nil
}

func NewEvent(p EventParams, now time.Time) (Event, error) {
	if err := validateEventDatetime(p.EventDatetime, now); err != nil {
		return Event{}, err
	}
	if err := validateAvailableTickets(p.AvailableTickets); err != nil {
		return Event{}, err
	}
	if err := validatePrice("ticket_price", p.TicketPrice); err != nil {
		return Event{}, err
	}

	return Event{
		Name:             p.Name,
		Description:      p.Description,
		EventDatetime:    p.EventDatetime.UTC(),
		AvailableTickets: p.AvailableTickets,
		TicketPrice:      p.TicketPrice,
	}, nil
}

func (e *Event) Update(u EventUpdate, now time.Time) error {
	if u.IsEmpty() {
		return ValidationError{Field: "update", Reason: "at least one field must be provided"}
	}

	if u.EventDatetime != nil {
		if err := validateEventDatetime(*u.EventDatetime, now); err != nil {
			return err
		}
	}
	if u.AvailableTickets != nil {
		if err := validateAvailableTickets(*u.AvailableTickets); err != nil {
			return err
		}
	}
	if u.TicketPrice != nil {
		if err := validatePrice("ticket_price", *u.TicketPrice); err != nil {
			return err
		}
	}

	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.EventDatetime != nil {
		e.EventDatetime = u.EventDatetime.UTC()
	}
	if u.AvailableTickets != nil {
		e.AvailableTickets = *u.AvailableTickets
	}
	if u.TicketPrice != nil {
		e.TicketPrice = *u.TicketPrice
	}

	return nil
}

// SellTickets never lets availability drop below zero; an oversell is
// rejected and the event is left unchanged.
func (e *Event) SellTickets(count int) error {
	if count <= 0 {
		return ValidationError{Field: "tickets_count", Reason: "must be greater than zero"}
	}
	if count > e.AvailableTickets {
		return NotEnoughTicketsError{
			TicketsAvailable: e.AvailableTickets,
			TicketsRequested: count,
		}
	}

	e.AvailableTickets -= count

	return nil
}

func (e *Event) Delete(at time.Time) error {
	if e.IsDeleted() {
		return ValidationError{Field: "deleted_at", Reason: "event is already deleted"}
	}

	deletedAt := at.UTC()
	e.DeletedAt = &deletedAt

	return nil
}

func (e Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// IsUpcoming reports whether the event has not started yet.
func (e Event) IsUpcoming(now time.Time) bool {
	return e.EventDatetime.After(now)
}

func validateEventDatetime(t time.Time, now time.Time) error {
	if !t.After(now) {
		return ValidationError{Field: "event_datetime", Reason: "must be in the future"}
	}
	return nil
}

func validateAvailableTickets(n int) error {
	if n < 0 {
		return ValidationError{Field: "available_tickets", Reason: "must not be negative"}
	}
	return nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	if !price.Equal(price.Truncate(2)) {
		return ValidationError{Field: field, Reason: "must have at most two decimal places"}
	}
	return nil
}
