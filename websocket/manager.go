// Package websocket pushes live events to the connected sessions of a user.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"socialapp/metrics"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var ErrStopped = errors.New("websocket manager stopped")

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type delivery struct {
	userID string
	msg    []byte
}

type Manager struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager
}

// NewManager accepts upgrades from the given origins. Requests without an
// Origin header (non-browser clients) are always accepted.
func NewManager(allowedOrigins []string) *Manager {
	m := &Manager{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, sendBuffer),
		done:       make(chan struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || lo.Contains(allowedOrigins, origin)
		},
	}
	return m
}

// Start runs the registry loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
				metrics.ConnectionClosed()
			}
			m.mu.Unlock()
			return

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			m.mu.Unlock()
			metrics.ConnectionOpened()
			slog.Debug("websocket client registered", "userId", client.userID)

		case client := <-m.unregister:
			m.remove(client)

		case d := <-m.deliver:
			var slow []*Client
			m.mu.RLock()
			for client := range m.clients {
				if client.userID != d.userID {
					continue
				}
				select {
				case client.send <- d.msg:
				default:
					slow = append(slow, client)
				}
			}
			m.mu.RUnlock()
			for _, client := range slow {
				m.remove(client)
			}
		}
	}
}

func (m *Manager) remove(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[client]; ok {
		delete(m.clients, client)
		close(client.send)
		metrics.ConnectionClosed()
		slog.Debug("websocket client unregistered", "userId", client.userID)
	}
}

// SendToUser queues an event for every open connection of userID. Delivery is
// best-effort: the event is dropped when the queue is full.
func (m *Manager) SendToUser(userID, eventType string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		slog.Error("marshaling websocket event", "type", eventType, "error", err)
		return
	}

	select {
	case m.deliver <- delivery{userID: userID, msg: msg}:
	default:
		slog.Warn("websocket delivery queue full, dropping event", "type", eventType, "userId", userID)
	}
}

// Connections returns the number of open connections of userID.
func (m *Manager) Connections(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.CountBy(lo.Keys(m.clients), func(c *Client) bool { return c.userID == userID })
}

// Serve upgrades the request and attaches the connection to userID, who must
// already be authenticated.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, sendBuffer),
		manager: m,
	}

	welcome, _ := json.Marshal(Event{
		Type: "connected",
		Payload: map[string]interface{}{
			"userId": userID,
			"time":   time.Now().Unix(),
		},
	})
	client.send <- welcome

	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return ErrStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The connection is push-only; inbound frames are read to process control
	// messages and detect disconnects.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "userId", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
