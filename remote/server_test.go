package remote

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) Reply {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var r Reply
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return r
}

func TestServerDeliversCommands(t *testing.T) {
	srv := NewServer(4, nil)
	conn := dial(t, srv)

	r := roundTrip(t, conn, `{"type":"splat","splats":[{"x":1,"y":2,"dx":0,"dy":0,"color":[1,1,1]},{"x":5}]}`)
	if !r.OK || r.Dropped != 1 {
		t.Fatalf("reply = %+v", r)
	}

	select {
	case cmd := <-srv.Commands():
		if cmd.Kind != KindSplat || len(cmd.Splats) != 1 {
			t.Errorf("command = %+v", cmd)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no command delivered")
	}
}

func TestServerRejectsInvalid(t *testing.T) {
	srv := NewServer(4, nil)
	conn := dial(t, srv)

	r := roundTrip(t, conn, `{"type":"explode"}`)
	if r.OK || r.Error == "" {
		t.Errorf("reply = %+v, want error", r)
	}
	if len(srv.Commands()) != 0 {
		t.Error("invalid message queued a command")
	}

	// the connection survives a bad message
	if r := roundTrip(t, conn, `{"type":"random","count":2}`); !r.OK {
		t.Errorf("reply = %+v", r)
	}
}

func TestServerBufferFull(t *testing.T) {
	srv := NewServer(1, nil)
	conn := dial(t, srv)

	if r := roundTrip(t, conn, `{"type":"random"}`); !r.OK {
		t.Fatalf("first reply = %+v", r)
	}
	r := roundTrip(t, conn, `{"type":"random"}`)
	if r.OK || r.Error != ErrBusy.Error() {
		t.Errorf("second reply = %+v, want busy", r)
	}
}

func TestServerClose(t *testing.T) {
	srv := NewServer(1, nil)
	conn := dial(t, srv)
	roundTrip(t, conn, `{"type":"random"}`)

	srv.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
}

func TestServerRejectsOversizedMessage(t *testing.T) {
	srv := NewServer(4, nil)
	conn := dial(t, srv)

	var b strings.Builder
	b.WriteString(`{"type":"splat","splats":[`)
	for i := 0; b.Len() <= MaxMessageSize; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"x":1,"y":2,"dx":0,"dy":0,"color":[1,1,1]}`)
	}
	b.WriteString(`]}`)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(b.String())); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseMessageTooBig) {
		t.Errorf("read error = %v, want close 1009", err)
	}
	if len(srv.Commands()) != 0 {
		t.Error("oversized message queued a command")
	}
}
