package hub

import (
	"time"

	"github.com/soar/ovrinput/internal/monitor"
)

// Message types sent from server to client.
const (
	TypeFull               = "full"
	TypeDelta              = "delta"
	TypeControllerSelected = "controller_selected"
	TypeError              = "error"
)

// Message types sent from client to server.
const (
	TypeSelectController = "select_controller"
	TypeVibrate          = "vibrate"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type       string         `json:"type"`                 // Message type: "full", "delta", "controller_selected", "error"
	Seq        int64          `json:"seq"`                  // Sequence number for ordering
	Timestamp  int64          `json:"timestamp"`            // Unix timestamp in milliseconds
	Data       *monitor.Frame `json:"data,omitempty"`       // Full frame for type "full"
	Changes    *monitor.Delta `json:"changes,omitempty"`    // Delta changes for type "delta"
	Controller string         `json:"controller,omitempty"` // Selection for type "controller_selected"
	Error      string         `json:"error,omitempty"`      // Reason for type "error"
}

// NewFullMessage creates a "full" type message containing a complete frame.
func NewFullMessage(seq int64, frame *monitor.Frame) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      frame,
	}
}

// NewDeltaMessage creates a "delta" type message containing only changed fields.
func NewDeltaMessage(seq int64, changes *monitor.Delta) *WSMessage {
	return &WSMessage{
		Type:      TypeDelta,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// NewControllerSelectedMessage confirms a "select_controller" request.
func NewControllerSelectedMessage(controller string) *WSMessage {
	return &WSMessage{
		Type:       TypeControllerSelected,
		Timestamp:  time.Now().UnixMilli(),
		Controller: controller,
	}
}

// NewErrorMessage reports a rejected client request.
func NewErrorMessage(err error) *WSMessage {
	return &WSMessage{
		Type:      TypeError,
		Timestamp: time.Now().UnixMilli(),
		Error:     err.Error(),
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type       string `json:"type"`
	Controller string `json:"controller,omitempty"`

	// vibrate: either a constant vibration or a run of samples (0..255)
	Frequency float32 `json:"frequency,omitempty"`
	Amplitude float32 `json:"amplitude,omitempty"`
	Samples   []int   `json:"samples,omitempty"`
}
