package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"ticketing/entity"
	"ticketing/message"
)

// dispatch hands msg to the bus and converts its result to T.
func dispatch[T any](ctx context.Context, bus Dispatcher, msg message.Message) (T, error) {
	var zero T

	result, err := bus.Handle(ctx, msg)
	if err != nil {
		return zero, handlingError(err)
	}

	typed, ok := result.(T)
	if !ok {
		return zero, &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  http.StatusText(http.StatusInternalServerError),
			Internal: fmt.Errorf("unexpected result %T of %s", result, msg.MessageName()),
		}
	}

	return typed, nil
}

func handlingError(err error) *echo.HTTPError {
	switch {
	case message.IsNotFound(err):
		return &echo.HTTPError{Code: http.StatusNotFound, Message: err.Error(), Internal: err}
	case message.IsForbidden(err):
		return &echo.HTTPError{Code: http.StatusForbidden, Message: err.Error(), Internal: err}
	case entity.IsValidation(err):
		return &echo.HTTPError{Code: http.StatusUnprocessableEntity, Message: err.Error(), Internal: err}
	default:
		return &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  http.StatusText(http.StatusInternalServerError),
			Internal: err,
		}
	}
}

func badRequest(msg string, err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusBadRequest,
		Message:  msg,
		Internal: err,
	}
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid id", fmt.Errorf("parsing id: %w", err))
	}
	return id, nil
}
