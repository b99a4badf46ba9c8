package message

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/entity"
	"ticketing/event"
)

func TestSkipUnrecoverableMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		handlerErr error
		wantErr    bool
	}{
		{name: "success"},
		{name: "unknown id", handlerErr: InvalidIDError{ID: 1}},
		{name: "oversell", handlerErr: entity.NotEnoughTicketsError{TicketsAvailable: 1, TicketsRequested: 2}},
		{name: "infrastructure failure", handlerErr: errors.New("connection refused"), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := skipUnrecoverableMiddleware(func(*message.Message) ([]*message.Message, error) {
				return nil, tc.handlerErr
			})

			_, err := handler(message.NewMessage("1", nil))

			if tc.wantErr {
				assert.ErrorIs(t, err, tc.handlerErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggerMiddleware_describesDelivery(t *testing.T) {
	msg, err := NameMarshaler{}.Marshal(event.NewDeleted("delete-7", 7))
	require.NoError(t, err)
	middleware.SetCorrelationID("corr-1", msg)

	var fields map[string]any
	handler := correlationIDMiddleware(loggerMiddleware(func(msg *message.Message) ([]*message.Message, error) {
		fields = log.FromContext(msg.Context()).Data
		return nil, nil
	}))

	_, err = handler(msg)
	require.NoError(t, err)

	assert.Equal(t, msg.UUID, fields["message_uuid"])
	assert.Equal(t, "corr-1", fields["correlation_id"])
	assert.Equal(t, "Deleted", fields["message_name"])
}
