package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrBusy is reported to a client when the command buffer is full.
var ErrBusy = errors.New("remote: command buffer full")

// Server upgrades HTTP requests to websockets and decodes their messages into
// commands. It implements http.Handler.
type Server struct {
	upgrader websocket.Upgrader
	commands chan Command
	log      *slog.Logger

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// NewServer returns a server buffering up to buffer pending commands.
// A nil logger discards.
func NewServer(buffer int, log *slog.Logger) *Server {
	if buffer < 1 {
		buffer = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		commands: make(chan Command, buffer),
		log:      log,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Commands returns the channel decoded commands arrive on.
func (s *Server) Commands() <-chan Command {
	return s.commands
}

// ServeHTTP upgrades the connection and reads messages until the client leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		var herr websocket.HandshakeError
		if !errors.As(err, &herr) {
			s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		}
		return
	}
	if !s.track(conn) {
		conn.Close()
		return
	}
	defer s.untrack(conn)
	conn.SetReadLimit(MaxMessageSize)

	s.log.Info("remote client connected", "remote", r.RemoteAddr)
	s.read(conn)
	s.log.Info("remote client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) read(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				s.log.Warn("message too large", "limit", MaxMessageSize)
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "error", err)
			}
			return
		}

		reply := s.handle(data)
		if err := conn.WriteJSON(reply); err != nil {
			s.log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) handle(data []byte) Reply {
	cmd, err := Decode(data)
	if err != nil {
		s.log.Debug("rejecting message", "error", err)
		return Reply{Dropped: cmd.Dropped, Error: err.Error()}
	}
	select {
	case s.commands <- cmd:
	default:
		s.log.Warn("dropping command", "type", string(cmd.Kind), "error", ErrBusy)
		return Reply{Error: ErrBusy.Error()}
	}
	return Reply{OK: true, Dropped: cmd.Dropped}
}

func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// Close disconnects every client and refuses new ones.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
}

// ListenAndServe serves the websocket on addr at /ws until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("remote control listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
