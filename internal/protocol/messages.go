package protocol

import (
	"encoding/json"
)

// Envelope is used for initial type discrimination when parsing relay messages.
type Envelope struct {
	Type string `json:"type"`
}

// LogMessage carries one raw log line from a relay.
type LogMessage struct {
	Type   string `json:"type"`
	Line   string `json:"line"`
	Source string `json:"source,omitempty"`
}

// PingMsg is a keep-alive ping message.
type PingMsg struct {
	Type string `json:"type"`
}

// PongMsg is a keep-alive pong response message.
type PongMsg struct {
	Type string `json:"type"`
}

// ErrorMessage is sent by the relay to indicate an error.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ParseTextMessage parses a raw JSON message into its concrete message struct.
// It returns (nil, nil) for unknown message types.
// It returns (nil, error) for malformed JSON.
func ParseTextMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case RelayLogType:
		var msg LogMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case RelayPingType:
		var msg PingMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case RelayPongType:
		var msg PongMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case RelayErrorType:
		var msg ErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return &msg, nil
	}

	return nil, nil
}

// IsRelayMessage checks whether the given data looks like a relay envelope
// rather than a plain log line by verifying it contains a "type" field.
func IsRelayMessage(data []byte) bool {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return env.Type != ""
}
