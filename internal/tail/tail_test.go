package tail

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/soar/ovrinput/internal/hub"
	"github.com/soar/ovrinput/internal/monitor"
	"github.com/soar/ovrinput/internal/ovr"
)

func testFrame() *monitor.Frame {
	f := &monitor.Frame{
		Connected: ovr.ControllerTypeXBox,
		Controllers: []monitor.ControllerFrame{
			{Type: ovr.ControllerTypeXBox, Name: "xbox"},
		},
	}
	f.Controllers[0].Input.IndexTrigger[ovr.HandRight] = 0.5
	return f
}

func TestFormatFrame(t *testing.T) {
	f := testFrame()
	f.Controllers[0].Input.Buttons = ovr.ButtonA
	f.Controllers[0].Input.ButtonsPressed = ovr.ButtonA

	want := "connected=xbox | xbox buttons=0x1 touches=0x0 +0x1 l[0.00 0.00 +0.00,+0.00] r[0.50 0.00 +0.00,+0.00]"
	if got := FormatFrame(f); got != want {
		t.Errorf("FormatFrame:\n got %q\nwant %q", got, want)
	}

	if got := FormatFrame(&monitor.Frame{}); got != "connected=none" {
		t.Errorf("empty frame: %q", got)
	}
	if got := connectedNames(ovr.ControllerTypeTouch | ovr.ControllerTypeRemote); got != "ltouch,rtouch,remote" {
		t.Errorf("connectedNames: %q", got)
	}
}

func TestHandle(t *testing.T) {
	h := &handler{}

	line, ok := h.handle(hub.NewFullMessage(1, testFrame()))
	if !ok || !strings.HasPrefix(line, "#1 full connected=xbox") {
		t.Errorf("full: %q", line)
	}

	buttons := ovr.ButtonB
	d := &monitor.Delta{Controllers: []monitor.ControllerDelta{
		{Type: ovr.ControllerTypeXBox, Buttons: &buttons, Pressed: ovr.ButtonB},
	}}
	line, ok = h.handle(hub.NewDeltaMessage(2, d))
	if !ok || !strings.Contains(line, "buttons=0x2") || !strings.Contains(line, "+0x2") {
		t.Errorf("delta: %q", line)
	}

	if _, ok := h.handle(&hub.WSMessage{Type: hub.TypeDelta}); ok {
		t.Error("delta without changes printed")
	}
	if line, _ := h.handle(hub.NewControllerSelectedMessage("xbox")); line != "selected xbox" {
		t.Errorf("selected: %q", line)
	}
	if _, ok := h.handle(&hub.WSMessage{Type: "bogus"}); ok {
		t.Error("unknown type printed")
	}
}

func TestRun(t *testing.T) {
	selected := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req hub.ClientMessage
		if err := conn.ReadJSON(&req); err == nil {
			selected <- req.Controller
		}
		conn.WriteJSON(hub.NewFullMessage(1, testFrame()))
		buttons := ovr.ButtonA
		conn.WriteJSON(hub.NewDeltaMessage(2, &monitor.Delta{Controllers: []monitor.ControllerDelta{
			{Type: ovr.ControllerTypeXBox, Buttons: &buttons},
		}}))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		// wait for the client to answer the close
		conn.SetReadDeadline(time.Now().Add(time.Second))
		conn.ReadMessage()
	}))
	defer srv.Close()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), Options{
			Addr:       "ws" + strings.TrimPrefix(srv.URL, "http"),
			Controller: "xbox",
			Out:        &out,
		})
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after the server closed")
	}

	select {
	case got := <-selected:
		if got != "xbox" {
			t.Errorf("selection %q", got)
		}
	default:
		t.Error("no selection request received")
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "#1 full") || !strings.Contains(lines[1], "buttons=0x1") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRunDialError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	if err := Run(context.Background(), Options{Addr: addr, Out: &bytes.Buffer{}}); err == nil {
		t.Error("expected a connection error")
	}
}
