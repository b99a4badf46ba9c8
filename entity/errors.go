package entity

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type NotEnoughTicketsError struct {
	TicketsAvailable int
	TicketsRequested int
}

func (e NotEnoughTicketsError) Error() string {
	return fmt.Sprintf("not enough tickets: tickets available %d, tickets requested %d", e.TicketsAvailable, e.TicketsRequested)
}

// IsValidation reports whether err was raised by an aggregate rejecting its
// input, as opposed to a lookup or infrastructure failure.
func IsValidation(err error) bool {
	var validationErr ValidationError
	var notEnoughErr NotEnoughTicketsError
	return errors.As(err, &validationErr) || errors.As(err, &notEnoughErr)
}
