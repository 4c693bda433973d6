// Package server streams traversal frames to websocket viewers.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/systems/traversal"
	"github.com/zeusync/lanepath/pkg/concurrent"
)

const writeTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer.
	mu sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// close sends a normal-closure frame before dropping the connection.
func (c *client) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "telemetry stopped")
	werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	return errors.Join(werr, c.conn.Close())
}

// Telemetry fans traversal frames out to every connected websocket client.
type Telemetry struct {
	logger log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	server  *http.Server
	addr    net.Addr
}

func NewTelemetry(logger log.Log) *Telemetry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Telemetry{
		logger:  logger.With(log.String("component", "telemetry")),
		clients: make(map[*client]struct{}),
	}
}

// Handler serves /ws and /healthz.
func (t *Telemetry) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", t.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on addr and serves in the background.
func (t *Telemetry) Start(ctx context.Context, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.server != nil {
		return ErrServerAlreadyRunning
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	t.addr = ln.Addr()
	t.server = &http.Server{Handler: t.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("telemetry server stopped", log.Error(err))
		}
	}(t.server)

	t.logger.Info("telemetry listening", log.String("addr", t.addr.String()))
	return nil
}

// Addr is the bound address once started.
func (t *Telemetry) Addr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.addr == nil {
		return ""
	}
	return t.addr.String()
}

// Stop closes every client and shuts the HTTP server down.
func (t *Telemetry) Stop(ctx context.Context) error {
	t.mu.Lock()
	srv := t.server
	t.server = nil
	clients := t.clients
	t.clients = make(map[*client]struct{})
	t.mu.Unlock()

	if srv == nil {
		return ErrServerNotRunning
	}
	targets := make([]*client, 0, len(clients))
	for c := range clients {
		targets = append(targets, c)
	}
	if err := concurrent.Each(ctx, targets, func(_ context.Context, c *client) error {
		return c.close()
	}); err != nil {
		t.logger.Debug("telemetry client close failed", log.Error(err))
	}
	return srv.Shutdown(ctx)
}

// Clients is the number of connected viewers.
func (t *Telemetry) Clients() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// Broadcast sends frames to every client as one JSON array. Clients whose write
// fails are dropped.
func (t *Telemetry) Broadcast(frames []traversal.Frame) {
	t.mu.Lock()
	targets := make([]*client, 0, len(t.clients))
	for c := range t.clients {
		targets = append(targets, c)
	}
	t.mu.Unlock()

	concurrent.ParallelMust(targets, func(c *client) {
		if err := c.writeJSON(frames); err != nil {
			t.logger.Debug("dropping telemetry client", log.String("remote", c.conn.RemoteAddr().String()), log.Error(err))
			t.remove(c)
		}
	})
}

func (t *Telemetry) remove(c *client) {
	t.mu.Lock()
	_, ok := t.clients[c]
	delete(t.clients, c)
	t.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

func (t *Telemetry) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn}
	t.mu.Lock()
	t.clients[c] = struct{}{}
	t.mu.Unlock()
	t.logger.Debug("telemetry client connected", log.String("remote", conn.RemoteAddr().String()))

	// Viewers only listen; reading detects the close.
	go func() {
		defer t.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
