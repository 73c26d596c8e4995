package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/soar/ovrinput/internal/monitor"
	"github.com/soar/ovrinput/internal/ovr"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster listens for frames and broadcasts them to the hub. Each
// controller selection gets its own view of the frame and its own delta
// stream.
type Broadcaster struct {
	hub    *Hub
	frames <-chan monitor.Frame

	mu         sync.Mutex
	lastFrame  monitor.Frame
	last       map[ovr.ControllerType]monitor.Frame // last view sent per selection
	seq        int64
	deltaCount int
}

func NewBroadcaster(h *Hub, frames <-chan monitor.Frame) *Broadcaster {
	return &Broadcaster{
		hub:    h,
		frames: frames,
		last:   make(map[ovr.ControllerType]monitor.Frame),
	}
}

// Run starts the broadcaster loop. It returns when ctx is cancelled or the
// frame channel is closed.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case frame, ok := <-b.frames:
			if !ok {
				return
			}
			b.handleFrame(frame)

		case <-ticker.C:
			b.mu.Lock()
			if b.lastFrame.Connected != ovr.ControllerTypeNone {
				b.syncAll(b.hub.Selections())
			}
			b.mu.Unlock()
		}
	}
}

func (b *Broadcaster) handleFrame(frame monitor.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFrame = frame
	selections := b.hub.Selections()

	// forget selections nobody watches any more
	active := make(map[ovr.ControllerType]bool, len(selections))
	for _, sel := range selections {
		active[sel] = true
	}
	for sel := range b.last {
		if !active[sel] {
			delete(b.last, sel)
		}
	}

	if b.deltaCount >= deltaCountSync {
		b.syncAll(selections)
		b.deltaCount = 0
		return
	}

	sent := false
	for _, sel := range selections {
		view := frame.Filter(sel)
		prev, ok := b.last[sel]
		if !ok {
			b.sendFull(view, sel)
			continue
		}
		delta := monitor.ComputeDelta(prev, view)
		b.last[sel] = view
		if delta.IsEmpty() {
			continue
		}
		b.sendDelta(delta, sel)
		sent = true
	}
	if sent {
		b.deltaCount++
	}
}

// syncAll must be called with mu held.
func (b *Broadcaster) syncAll(selections []ovr.ControllerType) {
	for _, sel := range selections {
		b.sendFull(b.lastFrame.Filter(sel), sel)
	}
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	view := b.lastFrame.Filter(c.Selection())
	data, err := json.Marshal(NewFullMessage(b.seq, &view))
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	b.hub.SendTo(c, data)
}

// sendFull must be called with mu held.
func (b *Broadcaster) sendFull(view monitor.Frame, sel ovr.ControllerType) {
	b.seq++
	b.last[sel] = view
	data, err := json.Marshal(NewFullMessage(b.seq, &view))
	if err != nil {
		log.Printf("Error marshaling full message: %v", err)
		return
	}
	b.hub.BroadcastToSelection(data, sel)
}

// sendDelta must be called with mu held.
func (b *Broadcaster) sendDelta(delta *monitor.Delta, sel ovr.ControllerType) {
	b.seq++
	data, err := json.Marshal(NewDeltaMessage(b.seq, delta))
	if err != nil {
		log.Printf("Error marshaling delta message: %v", err)
		return
	}
	b.hub.BroadcastToSelection(data, sel)
}
