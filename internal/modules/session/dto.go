package session

import (
	"time"

	"suryawash/internal/modules/auth"
)

const (
	MessageState = "state"
	MessagePong  = "pong"
	MessageError = "error"

	// messageClose tells the writer to close the stream; it is never sent.
	messageClose = "close"
)

// Message is what the server writes to a session stream.
type Message struct {
	Type  string             `json:"type"`
	State *auth.SessionState `json:"state,omitempty"`
	Error *WSError           `json:"error,omitempty"`
	At    time.Time          `json:"at"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClientMessage is what a client may send; only pings are understood.
type ClientMessage struct {
	Type string `json:"type"`
}

func stateMessage(s auth.SessionState) Message {
	return Message{Type: MessageState, State: &s, At: time.Now().UTC()}
}

func errorMessage(code, msg string) Message {
	return Message{Type: MessageError, Error: &WSError{Code: code, Message: msg}, At: time.Now().UTC()}
}
