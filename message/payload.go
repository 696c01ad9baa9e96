package message

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns the payload of ev as a value of type P.
//
// The payload is used directly if it is already a P (or *P). Otherwise it is
// converted via its JSON representation.
func DecodePayload[P any](ev Event) (P, error) {
	var p P

	switch v := ev.Payload.(type) {
	case P:
		return v, nil
	case *P:
		if v != nil {
			return *v, nil
		}
		return p, nil
	case nil:
		return p, nil
	case json.RawMessage:
		if err := json.Unmarshal(v, &p); err != nil {
			return p, fmt.Errorf("unable to decode %s payload: %w", ev.Type, err)
		}
		return p, nil
	}

	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return p, fmt.Errorf("unable to encode %s payload: %w", ev.Type, err)
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("unable to decode %s payload: %w", ev.Type, err)
	}

	return p, nil
}
