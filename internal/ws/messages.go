package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "start_timer"
	Body  json.RawMessage `json:"body,omitempty"` // event payload
}

// Reply is a direct response to the sending connection only. Handlers that
// have nothing to say to the sender return nil.
type Reply struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}
