package event

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/shopspring/decimal"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type TicketPriceChanged struct {
	Header   header          `json:"header"`
	EventID  int64           `json:"event_id"`
	NewPrice decimal.Decimal `json:"new_price"`
}

func NewTicketPriceChanged(idempotencyKey string, eventID int64, newPrice decimal.Decimal) TicketPriceChanged {
	return TicketPriceChanged{
		Header:   newHeader(idempotencyKey),
		EventID:  eventID,
		NewPrice: newPrice,
	}
}

func (TicketPriceChanged) MessageName() string {
	return "TicketPriceChanged"
}

type AvailableTicketsDecreased struct {
	Header           header `json:"header"`
	EventID          int64  `json:"event_id"`
	RemainingTickets int    `json:"remaining_tickets"`
}

func NewAvailableTicketsDecreased(idempotencyKey string, eventID int64, remainingTickets int) AvailableTicketsDecreased {
	return AvailableTicketsDecreased{
		Header:           newHeader(idempotencyKey),
		EventID:          eventID,
		RemainingTickets: remainingTickets,
	}
}

func (AvailableTicketsDecreased) MessageName() string {
	return "AvailableTicketsDecreased"
}

type TicketsSold struct {
	Header       header `json:"header"`
	EventID      int64  `json:"event_id"`
	TicketsCount int    `json:"tickets_count"`
}

func NewTicketsSold(idempotencyKey string, eventID int64, ticketsCount int) TicketsSold {
	return TicketsSold{
		Header:       newHeader(idempotencyKey),
		EventID:      eventID,
		TicketsCount: ticketsCount,
	}
}

func (TicketsSold) MessageName() string {
	return "TicketsSold"
}

// DeduplicationKey identifies a delivery of the event. Redeliveries of the
// same message share it; events without a header have none.
func (e TicketsSold) DeduplicationKey() string {
	if e.Header.IdempotencyKey != "" {
		return e.MessageName() + ":" + e.Header.IdempotencyKey
	}
	if e.Header.ID != "" {
		return e.MessageName() + ":" + e.Header.ID
	}
	return ""
}

type Deleted struct {
	Header  header `json:"header"`
	EventID int64  `json:"event_id"`
}

func NewDeleted(idempotencyKey string, eventID int64) Deleted {
	return Deleted{
		Header:  newHeader(idempotencyKey),
		EventID: eventID,
	}
}

func (Deleted) MessageName() string {
	return "Deleted"
}
