package message

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"ticketing/event"
)

type RouterDeps struct {
	ConsumerGroup string
	Handlers      []cqrs.EventHandler
	Logger        watermill.LoggerAdapter
	RedisClient   *redis.Client
}

// Router consumes events from redis streams. A delivery is acked only after
// its handler returned without error.
type Router struct {
	*message.Router
}

func NewRouter(deps RouterDeps) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	router.AddMiddleware(consumerMiddlewares(deps.Logger)...)

	config := cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        deps.RedisClient,
				ConsumerGroup: deps.ConsumerGroup + "." + params.HandlerName,
			}, deps.Logger)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: NameMarshaler{},
		Logger:    deps.Logger,
	}

	ep, err := cqrs.NewEventProcessorWithConfig(router, config)
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	if err := ep.AddHandlers(deps.Handlers...); err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	return &Router{router}, nil
}

// EventsServiceHandlers are the broker events consumed by the events service.
func EventsServiceHandlers(d Dispatcher) []cqrs.EventHandler {
	return []cqrs.EventHandler{
		cqrs.NewEventHandler("apply-tickets-sold", dispatchTo[event.TicketsSold](d)),
	}
}

// OrdersServiceHandlers are the broker events consumed by the orders service.
func OrdersServiceHandlers(d Dispatcher) []cqrs.EventHandler {
	return []cqrs.EventHandler{
		cqrs.NewEventHandler("refund-deleted-event-tickets", dispatchTo[event.Deleted](d)),
	}
}

func dispatchTo[T Message](d Dispatcher) func(ctx context.Context, e *T) error {
	return func(ctx context.Context, e *T) error {
		_, err := d.Handle(ctx, *e)
		return err
	}
}
