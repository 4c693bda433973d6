package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lanepath/internal/core/systems/physics"
	"github.com/zeusync/lanepath/internal/core/systems/traversal"
)

func waitClients(t *testing.T, tel *Telemetry, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return tel.Clients() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestBroadcastReachesClients(t *testing.T) {
	tel := NewTelemetry(nil)
	s := httptest.NewServer(tel.Handler())
	defer s.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitClients(t, tel, 1)

	frames := []traversal.Frame{{
		Tick:     3,
		AgentID:  "a1",
		Name:     "seeder",
		Position: physics.V3(1, 0, -7),
		Phase:    "moving",
		Row:      2,
	}}
	tel.Broadcast(frames)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got []traversal.Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, frames, got)
}

func TestClosedClientIsDropped(t *testing.T) {
	tel := NewTelemetry(nil)
	s := httptest.NewServer(tel.Handler())
	defer s.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	waitClients(t, tel, 1)

	require.NoError(t, conn.Close())
	waitClients(t, tel, 0)
}

func TestHealthz(t *testing.T) {
	tel := NewTelemetry(nil)
	s := httptest.NewServer(tel.Handler())
	defer s.Close()

	resp, err := http.Get(s.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestStartStop(t *testing.T) {
	tel := NewTelemetry(nil)
	ctx := context.Background()

	require.NoError(t, tel.Start(ctx, "127.0.0.1:0"))
	assert.ErrorIs(t, tel.Start(ctx, "127.0.0.1:0"), ErrServerAlreadyRunning)
	assert.NotEmpty(t, tel.Addr())

	resp, err := http.Get("http://" + tel.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, tel.Stop(ctx))
	assert.ErrorIs(t, tel.Stop(ctx), ErrServerNotRunning)
}

func TestStopClosesClientsNormally(t *testing.T) {
	tel := NewTelemetry(nil)
	ctx := context.Background()
	require.NoError(t, tel.Start(ctx, "127.0.0.1:0"))

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+tel.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	waitClients(t, tel, 1)

	require.NoError(t, tel.Stop(ctx))
	assert.Equal(t, 0, tel.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
