package entity

import "encoding/json"

// Prices leave the service with exactly two fraction digits, e.g. "42.50".

func (e Event) MarshalJSON() ([]byte, error) {
	type event Event
	return json.Marshal(struct {
		event
		TicketPrice string `json:"ticket_price"`
	}{
		event:       event(e),
		TicketPrice: e.TicketPrice.StringFixed(2),
	})
}

func (t Ticket) MarshalJSON() ([]byte, error) {
	type ticket Ticket
	return json.Marshal(struct {
		ticket
		Price string `json:"price"`
	}{
		ticket: ticket(t),
		Price:  t.Price.StringFixed(2),
	})
}
