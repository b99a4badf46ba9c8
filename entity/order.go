package entity

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreate         OrderStatus = "CREATE"
	OrderStatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderStatusDone           OrderStatus = "DONE"
)

// BasketStatuses are the statuses of an order the user can still change.
var BasketStatuses = []OrderStatus{OrderStatusCreate, OrderStatusPaymentPending}

var userIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// UserID identifies a user of the auth service: 24 hex digits.
type UserID string

func ParseUserID(s string) (UserID, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	if !userIDPattern.MatchString(id) {
		return "", ValidationError{Field: "user_id", Reason: "must be 24 hexadecimal digits"}
	}
	return UserID(id), nil
}

type Order struct {
	ID      int64       `json:"id" db:"id"`
	UserID  UserID      `json:"user_id" db:"user_id"`
	Status  OrderStatus `json:"order_status" db:"order_status"`
	Tickets []Ticket    `json:"tickets" db:"-"`
}

func NewOrder(userID UserID) (Order, error) {
	id, err := ParseUserID(string(userID))
	if err != nil {
		return Order{}, err
	}

	return Order{
		UserID:  id,
		Status:  OrderStatusCreate,
		Tickets: []Ticket{},
	}, nil
}

func (o Order) IsBasket() bool {
	return o.Status == OrderStatusCreate || o.Status == OrderStatusPaymentPending
}

func (o Order) BelongsTo(userID UserID) bool {
	return o.UserID == userID
}

// UpdateTickets reconciles the order's tickets with the requested ones per
// event: the first existing tickets of an event are kept (with their refund
// flag), surplus ones dropped, missing ones appended, and every ticket of
// the event takes the requested price. Events missing from the request lose
// all their tickets.
func (o *Order) UpdateTickets(requested []TicketRequest) error {
	for _, r := range requested {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	wanted := make(map[int64]int, len(requested))
	prices := make(map[int64]decimal.Decimal, len(requested))
	var eventIDs []int64
	for _, r := range requested {
		if _, ok := wanted[r.EventID]; !ok {
			eventIDs = append(eventIDs, r.EventID)
		}
		wanted[r.EventID]++
		prices[r.EventID] = r.Price
	}

	kept := make(map[int64]int, len(wanted))
	tickets := make([]Ticket, 0, len(requested))
	for _, t := range o.Tickets {
		if kept[t.EventID] >= wanted[t.EventID] {
			continue
		}
		kept[t.EventID]++
		t.Price = prices[t.EventID]
		tickets = append(tickets, t)
	}

	for _, eventID := range eventIDs {
		for i := kept[eventID]; i < wanted[eventID]; i++ {
			tickets = append(tickets, Ticket{
				EventID: eventID,
				OrderID: o.ID,
				Price:   prices[eventID],
			})
		}
	}

	o.Tickets = tickets

	return nil
}

// RefundTickets marks the order's tickets for the given events as refunded
// and returns how many tickets changed. Orders that were never checked out
// are left alone.
func (o *Order) RefundTickets(eventIDs []int64) int {
	if o.Status != OrderStatusDone && o.Status != OrderStatusPaymentPending {
		return 0
	}

	refund := make(map[int64]bool, len(eventIDs))
	for _, id := range eventIDs {
		refund[id] = true
	}

	var refunded int
	for i := range o.Tickets {
		t := &o.Tickets[i]
		if refund[t.EventID] && !t.Refunded {
			t.Refund()
			refunded++
		}
	}

	return refunded
}
