package protocol

import "encoding/json"

// Envelope is the wrapper shared by every store API response.
// Result must only be trusted after checking Success (see Err).
type Envelope[T any] struct {
	ID      int    `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// QueueEnvelope is the response to a queue fetch.
type QueueEnvelope = Envelope[[]QueueItem]

// AckEnvelope is the response to a markComplete request. Its result is not used.
type AckEnvelope = Envelope[json.RawMessage]

// QueueItem is one pending command delivered by the store.
type QueueItem struct {
	ID          int    `json:"id"`
	Command     string `json:"command"`
	PackageName string `json:"packageName"`
}

// Err returns an *ApplicationError when the store reported a failure.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	return &ApplicationError{ID: e.ID, Message: msg, Code: e.Error}
}

// RCONMessage is the frame exchanged with a WebRCON endpoint, in both directions.
type RCONMessage struct {
	Identifier int    `json:"Identifier"`
	Message    string `json:"Message"`
	Name       string `json:"Name,omitempty"`
	Type       string `json:"Type,omitempty"`
	Stacktrace string `json:"Stacktrace,omitempty"`
}
