package http

import (
	"context"
	"net/http"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"

	"ticketing/db"
	"ticketing/entity"
	"ticketing/message"
)

var ErrServerClosed = http.ErrServerClosed

type Dispatcher interface {
	Handle(ctx context.Context, msg message.Message) (any, error)
}

type EventViews interface {
	Get(ctx context.Context, eventID int64) (entity.Event, bool, error)
	List(ctx context.Context, f db.EventFilter) ([]entity.Event, error)
}

func NewEventsRouter(bus Dispatcher, views EventViews) *echo.Echo {
	server := newServer()

	handler := eventsHandler{
		bus:   bus,
		views: views,
	}

	server.POST("/events", handler.CreateEvent)
	server.PUT("/events/:id", handler.UpdateEvent)
	server.DELETE("/events/:id", handler.DeleteEvent)
	server.GET("/events/:id", handler.GetEvent)
	server.GET("/events", handler.ListEvents)

	return server
}

func NewOrdersRouter(bus Dispatcher) *echo.Echo {
	server := newServer()

	handler := ordersHandler{
		bus: bus,
	}

	server.POST("/order", handler.CreateBasket)
	server.PUT("/order", handler.UpdateBasket)
	server.DELETE("/order/:id", handler.DeleteOrder)

	return server
}

func newServer() *echo.Echo {
	server := commonHTTP.NewEcho()

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	return server
}
