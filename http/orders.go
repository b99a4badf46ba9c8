package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"ticketing/command"
	"ticketing/entity"
)

// headerKeyUserID carries the id of the user authenticated upstream.
const headerKeyUserID = "X-User-ID"

type ordersHandler struct {
	bus Dispatcher
}

func (h ordersHandler) CreateBasket(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return err
	}

	basket, err := dispatch[entity.Order](c.Request().Context(), h.bus, command.CreateBasket{UserID: userID})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, basket)
}

func (h ordersHandler) UpdateBasket(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return err
	}

	var tickets []entity.TicketRequest
	if err := c.Bind(&tickets); err != nil {
		return badRequest("failed to parse request", fmt.Errorf("failed to bind request: %w", err))
	}

	basket, err := dispatch[entity.Order](c.Request().Context(), h.bus, command.UpdateBasket{
		UserID:  userID,
		Tickets: tickets,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, basket)
}

func (h ordersHandler) DeleteOrder(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return err
	}

	orderID, err := pathID(c)
	if err != nil {
		return err
	}

	if _, err := h.bus.Handle(c.Request().Context(), command.DeleteOrder{OrderID: orderID, UserID: userID}); err != nil {
		return handlingError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func requestUserID(c echo.Context) (entity.UserID, error) {
	userID := c.Request().Header.Get(headerKeyUserID)
	if userID == "" {
		return "", &echo.HTTPError{Code: http.StatusUnauthorized, Message: "missing " + headerKeyUserID + " header"}
	}
	return entity.UserID(userID), nil
}
