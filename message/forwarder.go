package message

import (
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const outboxTopic = "events_to_forward"

type ForwarderDeps struct {
	DB          *sqlx.DB
	RedisClient *redis.Client
	Logger      watermill.LoggerAdapter
}

// Forwarder relays events staged in the outbox table to redis streams, each
// to the topic it was published on.
type Forwarder struct {
	*forwarder.Forwarder
}

func NewForwarder(deps ForwarderDeps) (*Forwarder, error) {
	outbox, err := watermillSQL.NewSubscriber(deps.DB, watermillSQL.SubscriberConfig{
		SchemaAdapter:  watermillSQL.DefaultPostgreSQLSchema{},
		OffsetsAdapter: watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
	}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating outbox subscriber: %w", err)
	}

	// The outbox tables must exist before the first transaction publishes.
	if err := outbox.SubscribeInitialize(outboxTopic); err != nil {
		return nil, fmt.Errorf("initialising outbox tables: %w", err)
	}

	streams, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: deps.RedisClient,
	}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating redis streams publisher: %w", err)
	}

	f, err := forwarder.NewForwarder(outbox, log.CorrelationPublisherDecorator{Publisher: streams}, deps.Logger, forwarder.Config{
		ForwarderTopic: outboxTopic,
		Middlewares:    forwarderMiddlewares(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating forwarder: %w", err)
	}

	return &Forwarder{f}, nil
}

// NewOutboxPublisher returns a publisher that stores events in the outbox
// table within tx, so they reach the broker only if tx commits.
func NewOutboxPublisher(tx *sql.Tx, logger watermill.LoggerAdapter) (Publisher, error) {
	sqlPublisher, err := watermillSQL.NewPublisher(
		tx,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("creating sql publisher: %w", err)
	}

	publisher := forwarder.NewPublisher(sqlPublisher, forwarder.PublisherConfig{
		ForwarderTopic: outboxTopic,
	})

	decoratedPublisher := log.CorrelationPublisherDecorator{Publisher: publisher}

	eventBus, err := cqrs.NewEventBusWithConfig(decoratedPublisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: NameMarshaler{},
	})
	if err != nil {
		return nil, fmt.Errorf("creating sql event bus: %w", err)
	}

	return eventBus, nil
}
