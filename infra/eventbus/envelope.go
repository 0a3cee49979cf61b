package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/gamewallet/wallet/pkg/domain/events"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: data})
}

// decode rebuilds the concrete event from an envelope using the registered constructors.
func decode(raw []byte, types map[string]func() events.Event) (events.Event, string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	constructor, ok := types[env.Type]
	if !ok {
		return nil, env.Type, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, env.Type, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return evt, env.Type, nil
}
