package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxFrameBytes caps inbound frame size before decoding.
const MaxFrameBytes = 4096

// ErrUnknownType marks a frame whose type the server does not handle.
// Callers ignore these without closing the connection.
var ErrUnknownType = errors.New("unknown message type")

type envelope struct {
	Type string `json:"type"`
}

// Decode parses a raw client frame into one of the typed client messages
// (Join, Input, SelectClass, Ping). Malformed JSON, oversized frames,
// missing type fields, and bad payloads all return an error; unknown but
// well-formed types return ErrUnknownType.
func Decode(frame []byte) (interface{}, error) {
	if len(frame) > MaxFrameBytes {
		return nil, fmt.Errorf("frame too large: %d bytes", len(frame))
	}

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if env.Type == "" {
		return nil, errors.New("frame missing type field")
	}

	switch env.Type {
	case TypeJoin:
		var msg Join
		if err := json.Unmarshal(frame, &msg); err != nil {
			return nil, fmt.Errorf("bad join payload: %w", err)
		}
		return msg, nil

	case TypeInput:
		var msg Input
		if err := json.Unmarshal(frame, &msg); err != nil {
			return nil, fmt.Errorf("bad input payload: %w", err)
		}
		return msg, nil

	case TypeSelectClass:
		var msg SelectClass
		if err := json.Unmarshal(frame, &msg); err != nil {
			return nil, fmt.Errorf("bad selectClass payload: %w", err)
		}
		return msg, nil

	case TypePing:
		var msg Ping
		if err := json.Unmarshal(frame, &msg); err != nil {
			return nil, fmt.Errorf("bad ping payload: %w", err)
		}
		return msg, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

// Encode serializes a server frame. Server frame structs are plain data, so
// a marshal failure indicates a programming error; callers may treat the
// error as fatal for that frame only.
func Encode(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

// MustEncode serializes a server frame built entirely from internal state.
// It panics on failure, which cannot happen for the frame types above.
func MustEncode(msg interface{}) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(fmt.Sprintf("protocol: encode %T: %v", msg, err))
	}
	return data
}
