package message

import (
	"errors"
	"fmt"

	"ticketing/entity"
)

type InvalidIDError struct {
	ID int64
}

func (e InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %d", e.ID)
}

type OrderNotFoundError struct {
	OrderID int64
	UserID  entity.UserID
}

func (e OrderNotFoundError) Error() string {
	if e.OrderID == 0 {
		return fmt.Sprintf("basket not found for user: %s", e.UserID)
	}
	return fmt.Sprintf("order with id %d not found", e.OrderID)
}

type OrderNotBelongUserError struct {
	OrderID int64
	UserID  entity.UserID
}

func (e OrderNotBelongUserError) Error() string {
	return fmt.Sprintf("order %d does not belong to this user: %s", e.OrderID, e.UserID)
}

func IsNotFound(err error) bool {
	var invalidIDErr InvalidIDError
	var orderNotFoundErr OrderNotFoundError
	return errors.As(err, &invalidIDErr) || errors.As(err, &orderNotFoundErr)
}

func IsForbidden(err error) bool {
	var notBelongErr OrderNotBelongUserError
	return errors.As(err, &notBelongErr)
}

// isExpected reports whether err is an outcome the caller is meant to handle
// rather than a failure of the service itself.
func isExpected(err error) bool {
	return IsNotFound(err) || IsForbidden(err) || entity.IsValidation(err)
}
