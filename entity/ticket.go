package entity

import "github.com/shopspring/decimal"

type Ticket struct {
	ID       int64           `json:"id" db:"id"`
	EventID  int64           `json:"event_id" db:"event_id"`
	OrderID  int64           `json:"order_id" db:"order_id"`
	Price    decimal.Decimal `json:"price" db:"price"`
	Refunded bool            `json:"refunded" db:"refunded"`
}

func (t *Ticket) Refund() {
	t.Refunded = true
}

// TicketRequest is one requested seat in a basket update.
type TicketRequest struct {
	EventID int64           `json:"event_id"`
	Price   decimal.Decimal `json:"price"`
}

func (r TicketRequest) Validate() error {
	if r.EventID <= 0 {
		return ValidationError{Field: "event_id", Reason: "must be a positive id"}
	}
	return validatePrice("price", r.Price)
}
