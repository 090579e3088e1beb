package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, m *Manager) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.Serve(w, r, r.URL.Query().Get("user")); err != nil {
			t.Logf("serve: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestSendToUserReachesOnlyThatUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(nil)
	go m.Start(ctx)
	srv := startServer(t, m)

	alice := dial(t, srv, "alice", nil)
	bob := dial(t, srv, "bob", nil)

	assert.Equal(t, "connected", readEvent(t, alice).Type)
	assert.Equal(t, "connected", readEvent(t, bob).Type)

	m.SendToUser("alice", "notification", map[string]string{"type": "like"})

	ev := readEvent(t, alice)
	assert.Equal(t, "notification", ev.Type)
	assert.Equal(t, map[string]interface{}{"type": "like"}, ev.Payload)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)

	assert.Equal(t, 1, m.Connections("alice"))
}

func TestRejectsForeignOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager([]string{"http://localhost:3000"})
	go m.Start(ctx)
	srv := startServer(t, m)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=alice"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ok := dial(t, srv, "alice", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "connected", readEvent(t, ok).Type)
}

func TestStopClosesConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewManager(nil)
	stopped := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(stopped)
	}()
	srv := startServer(t, m)

	conn := dial(t, srv, "alice", nil)
	readEvent(t, conn)

	cancel()
	<-stopped

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, m.Connections("alice"))
}
