package server

import (
	"encoding/json"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
)

// Message types.
const (
	MessageEvent  = "event"
	MessageHash   = "hash"
	MessageRender = "render"
	MessageError  = "error"
)

// ClientMessage is sent by the browser.
type ClientMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Value string `json:"value,omitempty"`
	Hash  string `json:"hash,omitempty"`
}

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type      string `json:"type"`
	HTML      string `json:"html,omitempty"`
	Mutations int    `json:"mutations,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// DecodeMessage parses and validates a client message.
func DecodeMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, tnterrors.New("E011").WithDetail("message is not valid JSON").Wrap(err)
	}
	switch msg.Type {
	case MessageEvent:
		if msg.ID == "" || msg.Event == "" {
			return msg, tnterrors.New("E011").WithDetail("event messages need an id and an event")
		}
	case MessageHash:
	default:
		return msg, tnterrors.New("E011").WithDetailf("unknown message type %q", msg.Type)
	}
	return msg, nil
}

func errorMessage(err error) ServerMessage {
	msg := err.Error()
	if te, ok := err.(*tnterrors.TNTError); ok {
		msg = te.FormatCompact()
	}
	return ServerMessage{
		Type:    MessageError,
		Code:    tnterrors.Code(err),
		Message: msg,
	}
}
