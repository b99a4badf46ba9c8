package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"ticketing/command"
	"ticketing/db"
	"ticketing/entity"
)

type eventsHandler struct {
	bus   Dispatcher
	views EventViews
}

type createEventRequest struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	EventDatetime    time.Time       `json:"event_datetime"`
	AvailableTickets int             `json:"available_tickets"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
}

type updateEventRequest struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	EventDatetime    *time.Time       `json:"event_datetime"`
	AvailableTickets *int             `json:"available_tickets"`
	TicketPrice      *decimal.Decimal `json:"ticket_price"`
}

func (h eventsHandler) CreateEvent(c echo.Context) error {
	var request createEventRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", fmt.Errorf("failed to bind request: %w", err))
	}

	e, err := dispatch[entity.Event](c.Request().Context(), h.bus, command.CreateEvent{
		Name:             request.Name,
		Description:      request.Description,
		EventDatetime:    request.EventDatetime,
		AvailableTickets: request.AvailableTickets,
		TicketPrice:      request.TicketPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, e)
}

func (h eventsHandler) UpdateEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var request updateEventRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &request); err != nil {
		return badRequest("failed to parse request", fmt.Errorf("failed to bind request: %w", err))
	}

	e, err := dispatch[entity.Event](c.Request().Context(), h.bus, command.UpdateEvent{
		EventID:          id,
		Name:             request.Name,
		Description:      request.Description,
		EventDatetime:    request.EventDatetime,
		AvailableTickets: request.AvailableTickets,
		TicketPrice:      request.TicketPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, e)
}

func (h eventsHandler) DeleteEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if _, err := h.bus.Handle(c.Request().Context(), command.DeleteEvent{EventID: id}); err != nil {
		return handlingError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h eventsHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	e, found, err := h.views.Get(c.Request().Context(), id)
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  http.StatusText(http.StatusInternalServerError),
			Internal: fmt.Errorf("getting event: %w", err),
		}
	}
	if !found {
		return &echo.HTTPError{Code: http.StatusNotFound, Message: fmt.Sprintf("event %d not found", id)}
	}

	return c.JSON(http.StatusOK, e)
}

func (h eventsHandler) ListEvents(c echo.Context) error {
	filter, err := parseEventFilter(c)
	if err != nil {
		return err
	}

	events, err := h.views.List(c.Request().Context(), filter)
	if err != nil {
		return &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  http.StatusText(http.StatusInternalServerError),
			Internal: fmt.Errorf("listing events: %w", err),
		}
	}
	if len(events) == 0 {
		return &echo.HTTPError{Code: http.StatusNotFound, Message: "no events found"}
	}

	return c.JSON(http.StatusOK, events)
}

func parseEventFilter(c echo.Context) (db.EventFilter, error) {
	var filter db.EventFilter

	for param, dst := range map[string]**time.Time{
		"date_from": &filter.DateFrom,
		"date_to":   &filter.DateTo,
	} {
		v := c.QueryParam(param)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return db.EventFilter{}, badRequest("invalid "+param, err)
		}
		*dst = &t
	}

	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return db.EventFilter{}, badRequest("date_from must not be after date_to", nil)
	}

	for param, dst := range map[string]*int{
		"page":        &filter.Page,
		"items_count": &filter.ItemsCount,
	} {
		v := c.QueryParam(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return db.EventFilter{}, badRequest("invalid "+param, err)
		}
		*dst = n
	}

	return filter, nil
}
