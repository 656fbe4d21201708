// Package remote accepts synthetic UI events over WebSocket and injects
// them into a running instance.
//
// Each text message carries one event-script record (the JSON Lines format
// of package replay). Every message is answered with an Ack:
//
//	-> {"seq":7,"target":"btn","type":"click","kind":"mouse","cancelable":true}
//	<- {"seq":7,"default_prevented":true}
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wasmdom/wasmdom-go/internal/script"
	"github.com/wasmdom/wasmdom-go/pkg/wasmdom/replay"
)

// Path is the WebSocket endpoint registered by Handler.
const Path = "/events"

// ErrServerClosed is returned by Serve after Close.
var ErrServerClosed = errors.New("remote server closed")

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Ack answers one message. Seq echoes the record's seq, or counts messages
// on the connection when the record has none or could not be parsed.
type Ack struct {
	Seq              int64  `json:"seq"`
	DefaultPrevented bool   `json:"default_prevented"`
	Error            string `json:"error,omitempty"`
}

// Server injects events received over WebSocket into a Dispatcher.
type Server struct {
	d        replay.Dispatcher
	cfg      config
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer creates a server for d.
func NewServer(d replay.Dispatcher, opts ...Option) (*Server, error) {
	if d == nil {
		return nil, errors.New("remote: nil dispatcher")
	}
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	s := &Server{
		d:     d,
		cfg:   *cfg,
		log:   log,
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.checkOrigin,
		},
	}
	return s, nil
}

// Handler returns a mux serving the endpoint at Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, s)
	return mux
}

// ServeHTTP upgrades the request and handles the connection until it
// closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	if !s.track(conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closed"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	defer s.untrack(conn)

	s.log.Info("remote client connected", "remote", r.RemoteAddr)
	s.handle(r.Context(), conn)
	s.log.Info("remote client disconnected", "remote", r.RemoteAddr)
}

// Serve accepts connections on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	stop := context.AfterFunc(ctx, func() {
		s.Close()
		_ = srv.Close()
	})
	defer stop()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return ErrServerClosed
	}
	return err
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Info("remote event feed listening", "addr", ln.Addr().String(), "path", Path)
	return s.Serve(ctx, ln)
}

// Close disconnects every client and waits for their handlers to return.
// Later connections are refused.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closed"),
			time.Now().Add(time.Second))
		c.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Server) track(c *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.Close()
	s.wg.Done()
}

func (s *Server) handle(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(s.cfg.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
	})

	done := make(chan struct{})
	defer close(done)
	go s.ping(conn, done)

	var count int64
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Warn("remote read failed", "error", err)
			}
			return
		}
		count++

		ack := s.process(ctx, count, msgType, data)
		if ack == nil {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.writeWait))
		if err := conn.WriteJSON(ack); err != nil {
			s.log.Warn("remote write failed", "error", err)
			return
		}
	}
}

// process handles one message. Blank and comment messages get no ack.
func (s *Server) process(ctx context.Context, count int64, msgType int, data []byte) *Ack {
	if msgType != websocket.TextMessage {
		return &Ack{Seq: count, Error: "only text messages are supported"}
	}
	rec, err := script.Parse(string(data))
	if err != nil {
		return &Ack{Seq: count, Error: err.Error()}
	}
	if rec == nil {
		return nil
	}

	seq := rec.Seq
	if seq == 0 {
		seq = count
	}
	prevented, err := replay.Apply(ctx, s.d, rec)
	ack := &Ack{Seq: seq, DefaultPrevented: prevented}
	if err != nil {
		ack.Error = err.Error()
		s.log.Debug("remote event failed", "seq", seq, "type", rec.Type, "target", rec.Target, "error", err)
	}
	return ack
}

// ping keeps the connection alive. WriteControl may run concurrently with
// the reader's writes.
func (s *Server) ping(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.writeWait)); err != nil {
				return
			}
		}
	}
}
