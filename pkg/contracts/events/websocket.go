// Package events contains the event contracts pushed to dashboard clients
// over WebSocket.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset messages
	MessageTypeDataUpdate MessageType = "data:update"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope for everything sent to a dashboard client.
type Message struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// DataUpdate announces that the in-memory dataset has been swapped.
// Open dashboards are expected to re-run their current queries.
type DataUpdate struct {
	Rows      int       `json:"rows"`
	MinDate   time.Time `json:"min_date"`
	MaxDate   time.Time `json:"max_date"`
	Countries int       `json:"countries"`
	Products  int       `json:"products"`
	LoadedAt  time.Time `json:"loaded_at"`
}
