package message

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

const nameField = "name"

// NameMarshaler encodes messages as flat JSON objects carrying their
// MessageName under "name", e.g. {"name":"Deleted","event_id":7}.
type NameMarshaler struct{}

func (m NameMarshaler) Marshal(v any) (*message.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling %T: %w", v, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%T does not marshal to a JSON object: %w", v, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("cannot marshal nil %T", v)
	}

	name := m.Name(v)
	fields[nameField], err = json.Marshal(name)
	if err != nil {
		return nil, fmt.Errorf("marshalling name: %w", err)
	}

	payload, err = json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(nameField, name)

	return msg, nil
}

func (NameMarshaler) Unmarshal(msg *message.Message, v any) error {
	return json.Unmarshal(msg.Payload, v)
}

func (NameMarshaler) Name(v any) string {
	if m, ok := v.(Message); ok {
		return m.MessageName()
	}
	return cqrs.StructName(v)
}

func (NameMarshaler) NameFromMessage(msg *message.Message) string {
	if name := msg.Metadata.Get(nameField); name != "" {
		return name
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		return ""
	}

	return body.Name
}
