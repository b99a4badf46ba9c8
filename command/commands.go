package command

import (
	"time"

	"github.com/shopspring/decimal"

	"ticketing/entity"
)

type CreateEvent struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	EventDatetime    time.Time       `json:"event_datetime"`
	AvailableTickets int             `json:"available_tickets"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
}

func (CreateEvent) MessageName() string {
	return "CreateEvent"
}

func (c CreateEvent) Params() entity.EventParams {
	return entity.EventParams{
		Name:             c.Name,
		Description:      c.Description,
		EventDatetime:    c.EventDatetime,
		AvailableTickets: c.AvailableTickets,
		TicketPrice:      c.TicketPrice,
	}
}

type UpdateEvent struct {
	EventID          int64            `json:"event_id"`
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	EventDatetime    *time.Time       `json:"event_datetime,omitempty"`
	AvailableTickets *int             `json:"available_tickets,omitempty"`
	TicketPrice      *decimal.Decimal `json:"ticket_price,omitempty"`
}

func (UpdateEvent) MessageName() string {
	return "UpdateEvent"
}

func (c UpdateEvent) Changes() entity.EventUpdate {
	return entity.EventUpdate{
		Name:             c.Name,
		Description:      c.Description,
		EventDatetime:    c.EventDatetime,
		AvailableTickets: c.AvailableTickets,
		TicketPrice:      c.TicketPrice,
	}
}

type DeleteEvent struct {
	EventID int64 `json:"event_id"`
}

func (DeleteEvent) MessageName() string {
	return "DeleteEvent"
}

type CreateBasket struct {
	UserID entity.UserID `json:"user_id"`
}

func (CreateBasket) MessageName() string {
	return "CreateBasket"
}

type UpdateBasket struct {
	UserID  entity.UserID          `json:"user_id"`
	Tickets []entity.TicketRequest `json:"tickets"`
}

func (UpdateBasket) MessageName() string {
	return "UpdateBasket"
}

type DeleteOrder struct {
	OrderID int64         `json:"order_id"`
	UserID  entity.UserID `json:"user_id"`
}

func (DeleteOrder) MessageName() string {
	return "DeleteOrder"
}
