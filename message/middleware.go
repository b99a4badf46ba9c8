package message

import (
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

// consumerMiddlewares wrap every broker handler, outermost first. The skip
// runs inside Retry so unrecoverable errors are acked without retrying.
func consumerMiddlewares(logger watermill.LoggerAdapter) []message.HandlerMiddleware {
	return []message.HandlerMiddleware{
		correlationIDMiddleware,
		loggerMiddleware,
		handlerLogMiddleware,
		middleware.Retry{
			MaxRetries:      10,
			InitialInterval: time.Millisecond * 100,
			MaxInterval:     time.Second,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
		skipUnrecoverableMiddleware,
	}
}

// forwarderMiddlewares wrap the outbox relay.
func forwarderMiddlewares() []message.HandlerMiddleware {
	return []message.HandlerMiddleware{
		correlationIDMiddleware,
		loggerMiddleware,
	}
}

func correlationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		msg.SetContext(log.ContextWithCorrelationID(msg.Context(), correlationID))

		return next(msg)
	}
}

// loggerMiddleware puts a logger describing the delivery into the message
// context: message uuid, correlation id, handler and message name.
func loggerMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		fields := logrus.Fields{
			"message_uuid":   msg.UUID,
			"correlation_id": log.CorrelationIDFromContext(msg.Context()),
		}
		if handler := message.HandlerNameFromCtx(msg.Context()); handler != "" {
			fields["handler"] = handler
		}
		if name := (NameMarshaler{}).NameFromMessage(msg); name != "" {
			fields["message_name"] = name
		}

		msg.SetContext(log.ToContext(msg.Context(), logrus.WithFields(fields)))

		return next(msg)
	}
}

func handlerLogMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(msg.Context())
		logger.Debug("Consuming message")

		start := time.Now()
		msgs, err := next(msg)
		logger = logger.WithField("duration", time.Since(start))

		if err != nil {
			logger.WithError(err).Error("Message consumption failed")
		} else {
			logger.Info("Message consumed")
		}

		return msgs, err
	}
}

// skipUnrecoverableMiddleware acks deliveries that failed for a reason a
// redelivery cannot fix, such as an unknown event id or an oversell.
func skipUnrecoverableMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)
		if err != nil && isExpected(err) {
			log.FromContext(msg.Context()).WithError(err).Warn("Skipping message that cannot be handled")
			return nil, nil
		}

		return msgs, err
	}
}
