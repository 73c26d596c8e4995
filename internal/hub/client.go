package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soar/ovrinput/internal/monitor"
	"github.com/soar/ovrinput/internal/ovr"
)

// commandTimeout bounds how long a client waits for the frame loop to run
// its vibration request.
const commandTimeout = time.Second

// Commander accepts vibration commands for the frame loop.
type Commander interface {
	Submit(monitor.Command) error
}

// Client represents a connected WebSocket client.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closed    bool          // guarded by hub.mu
	selection atomic.Uint32 // controller types this client is watching
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	c.selection.Store(uint32(ovr.ControllerTypeActive)) // Default to every controller
	return c
}

// Selection returns the controller types this client is watching.
func (c *Client) Selection() ovr.ControllerType {
	return ovr.ControllerType(c.selection.Load())
}

// SetSelection sets the controller types this client is watching.
func (c *Client) SetSelection(ct ovr.ControllerType) {
	c.selection.Store(uint32(ct))
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

func (c *Client) reply(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling reply: %v", err)
		return
	}
	c.hub.SendTo(c, data)
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPumpWithHandler(commander Commander, b *Broadcaster) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		// Parse client message
		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Error parsing client message: %v", err)
			continue
		}

		switch clientMsg.Type {
		case TypeSelectController:
			ct, ok := ovr.ParseControllerType(clientMsg.Controller)
			if !ok {
				c.reply(NewErrorMessage(fmt.Errorf("unknown controller %q", clientMsg.Controller)))
				continue
			}
			c.SetSelection(ct)
			c.reply(NewControllerSelectedMessage(ct.String()))
			b.SendInitialState(c)
			log.Printf("Client switched to controller %s", ct)

		case TypeVibrate:
			if err := vibrate(commander, clientMsg); err != nil {
				c.reply(NewErrorMessage(err))
			}

		default:
			c.reply(NewErrorMessage(fmt.Errorf("unknown message type %q", clientMsg.Type)))
		}
	}
}

// vibrate turns a client request into a frame loop command and waits for
// its result.
func vibrate(commander Commander, msg ClientMessage) error {
	ct, ok := ovr.ParseControllerType(msg.Controller)
	if !ok {
		return fmt.Errorf("unknown controller %q", msg.Controller)
	}

	done := make(chan error, 1)
	cmd := monitor.Command{
		Kind:       monitor.SetVibration,
		Controller: ct,
		Frequency:  msg.Frequency,
		Amplitude:  msg.Amplitude,
		Done:       done,
	}
	if len(msg.Samples) > 0 {
		cmd.Kind = monitor.SubmitVibration
		cmd.Samples = make([]byte, len(msg.Samples))
		for i, s := range msg.Samples {
			cmd.Samples[i] = byte(min(max(s, 0), 255))
		}
	}

	if err := commander.Submit(cmd); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-time.After(commandTimeout):
		return errors.New("vibration command timed out")
	}
}
