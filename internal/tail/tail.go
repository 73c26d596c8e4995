// Package tail follows a running server over its WebSocket endpoint and
// prints one line per frame it reconstructs.
package tail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lxzan/gws"

	"github.com/soar/ovrinput/internal/hub"
	"github.com/soar/ovrinput/internal/monitor"
	"github.com/soar/ovrinput/internal/ovr"
)

// Options configures a tail session.
type Options struct {
	// Addr is the ws:// URL of the server endpoint.
	Addr string
	// Controller is sent as a select_controller request when not empty.
	Controller string
	Out        io.Writer
}

type handler struct {
	gws.BuiltinEventHandler

	opts  Options
	frame monitor.Frame
	err   error
}

func (h *handler) OnOpen(socket *gws.Conn) {
	if h.opts.Controller == "" {
		return
	}
	data, _ := json.Marshal(hub.ClientMessage{Type: hub.TypeSelectController, Controller: h.opts.Controller})
	if err := socket.WriteMessage(gws.OpcodeText, data); err != nil {
		log.Printf("Error sending selection: %v", err)
	}
}

func (h *handler) OnClose(socket *gws.Conn, err error) {
	h.err = err
}

func (h *handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var msg hub.WSMessage
	if err := json.Unmarshal(message.Bytes(), &msg); err != nil {
		log.Printf("Error parsing server message: %v", err)
		return
	}
	if line, ok := h.handle(&msg); ok {
		fmt.Fprintln(h.opts.Out, line)
	}
}

// handle folds msg into the tracked frame and returns the line to print.
func (h *handler) handle(msg *hub.WSMessage) (string, bool) {
	switch msg.Type {
	case hub.TypeFull:
		if msg.Data == nil {
			return "", false
		}
		h.frame = *msg.Data
		return fmt.Sprintf("#%d full %s", msg.Seq, FormatFrame(&h.frame)), true
	case hub.TypeDelta:
		if msg.Changes == nil {
			return "", false
		}
		h.frame.Apply(msg.Changes)
		return fmt.Sprintf("#%d %s", msg.Seq, FormatFrame(&h.frame)), true
	case hub.TypeControllerSelected:
		return "selected " + msg.Controller, true
	case hub.TypeError:
		return "error: " + msg.Error, true
	}
	return "", false
}

// FormatFrame renders the controllers of f on a single line.
func FormatFrame(f *monitor.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "connected=%s", connectedNames(f.Connected))
	for _, c := range f.Controllers {
		in := &c.Input
		fmt.Fprintf(&sb, " | %s buttons=%#x touches=%#x", c.Name, in.Buttons, in.Touches)
		if in.ButtonsPressed != 0 {
			fmt.Fprintf(&sb, " +%#x", in.ButtonsPressed)
		}
		if in.ButtonsReleased != 0 {
			fmt.Fprintf(&sb, " -%#x", in.ButtonsReleased)
		}
		for hand := ovr.HandLeft; hand < ovr.HandCount; hand++ {
			fmt.Fprintf(&sb, " %c[%.2f %.2f %+.2f,%+.2f]", hand.String()[0],
				in.IndexTrigger[hand], in.HandTrigger[hand],
				in.Thumbstick[hand].X, in.Thumbstick[hand].Y)
		}
	}
	return sb.String()
}

func connectedNames(ct ovr.ControllerType) string {
	var names []string
	for _, bit := range []ovr.ControllerType{
		ovr.ControllerTypeLTouch, ovr.ControllerTypeRTouch,
		ovr.ControllerTypeRemote, ovr.ControllerTypeXBox,
	} {
		if ct&bit != 0 {
			names = append(names, bit.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Run connects to the server and prints frames until ctx is cancelled or the
// server closes the connection.
func Run(ctx context.Context, opts Options) error {
	h := &handler{opts: opts}
	socket, _, err := gws.NewClient(h, &gws.ClientOption{Addr: opts.Addr})
	if err != nil {
		return fmt.Errorf("connect %s: %w", opts.Addr, err)
	}
	log.Printf("Connected to %s", opts.Addr)

	stop := context.AfterFunc(ctx, func() {
		socket.WriteClose(1000, nil)
	})
	defer stop()

	socket.ReadLoop()

	if ctx.Err() != nil {
		return nil
	}
	var ce *gws.CloseError
	if errors.As(h.err, &ce) && ce.Code == 1000 {
		return nil
	}
	return h.err
}
