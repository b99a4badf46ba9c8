package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ticketing/config"
	"ticketing/db"
	"ticketing/http"
	"ticketing/message"
)

type Deps struct {
	Config      config.Config
	DB          *sqlx.DB
	RedisClient *redis.Client
	Logger      watermill.LoggerAdapter
}

type Service struct {
	cfg        config.Config
	msgRouter  *message.Router
	forwarder  *message.Forwarder
	httpRouter *echo.Echo
}

// New wires a deployable. The events service stages the events it publishes
// in the outbox table and runs the forwarder relaying them to redis; the
// orders service publishes nothing.
func New(deps Deps) (*Service, error) {
	s := &Service{cfg: deps.Config}

	var handlers []cqrs.EventHandler
	switch deps.Config.Service {
	case config.Events:
		uow := db.NewUnitOfWork(deps.DB, func(tx *sql.Tx) (message.Publisher, error) {
			return message.NewOutboxPublisher(tx, deps.Logger)
		})
		bus := message.NewBus(uow, nil)

		f, err := message.NewForwarder(message.ForwarderDeps{
			DB:          deps.DB,
			RedisClient: deps.RedisClient,
			Logger:      deps.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating forwarder: %w", err)
		}

		s.forwarder = f
		s.httpRouter = http.NewEventsRouter(bus, db.NewEventViews(deps.DB))
		handlers = message.EventsServiceHandlers(bus)
	case config.Orders:
		bus := message.NewBus(db.NewUnitOfWork(deps.DB, nil), nil)

		s.httpRouter = http.NewOrdersRouter(bus)
		handlers = message.OrdersServiceHandlers(bus)
	default:
		return nil, fmt.Errorf("unknown service %q", deps.Config.Service)
	}

	msgRouter, err := message.NewRouter(message.RouterDeps{
		ConsumerGroup: "svc-" + string(deps.Config.Service),
		Handlers:      handlers,
		Logger:        deps.Logger,
		RedisClient:   deps.RedisClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}
	s.msgRouter = msgRouter

	return s, nil
}

// InitialiseDB creates the tables the service owns.
func InitialiseDB(ctx context.Context, service config.Service, dbConn *sqlx.DB) error {
	switch service {
	case config.Events:
		return db.InitialiseEventsDB(ctx, dbConn)
	case config.Orders:
		return db.InitialiseOrdersDB(ctx, dbConn)
	default:
		return fmt.Errorf("unknown service %q", service)
	}
}

// component is a long-running part of the service. ready is closed once it
// accepts work.
type component struct {
	name  string
	run   func(ctx context.Context) error
	ready <-chan struct{}
}

func (s Service) components() []component {
	components := []component{
		{name: "message router", run: s.msgRouter.Run, ready: s.msgRouter.Running()},
	}
	if s.forwarder != nil {
		components = append(components, component{name: "outbox forwarder", run: s.forwarder.Run, ready: s.forwarder.Running()})
	}
	return components
}

// Run starts the consumers, then serves HTTP once they are all running, until
// ctx is done or any of them fails.
func (s Service) Run(ctx context.Context) error {
	logger := logrus.WithField("service", s.cfg.Service)
	g, runCtx := errgroup.WithContext(ctx)

	components := s.components()
	for _, c := range components {
		c := c
		g.Go(func() error {
			if err := c.run(runCtx); err != nil {
				return fmt.Errorf("running %s: %w", c.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		for _, c := range components {
			select {
			case <-c.ready:
			case <-runCtx.Done():
				return nil
			}
		}

		logger.WithField("addr", s.cfg.HTTPAddr).Info("Starting HTTP server")
		if err := s.httpRouter.Start(s.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("Shutting down HTTP server")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("running %s service: %w", s.cfg.Service, err)
	}
	logger.Info("Shutdown complete")

	return nil
}
