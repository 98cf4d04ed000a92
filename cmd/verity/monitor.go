package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientSendBuffer   = 16
	clientWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// monitorEvent is the wire format pushed to dashboard clients
type monitorEvent struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// monitorClient is one connected dashboard. Writes go through the buffered
// send channel; a dedicated goroutine drains it onto the connection.
type monitorClient struct {
	conn *websocket.Conn
	send chan []byte
}

// MonitorHub broadcasts completed verdicts to connected websocket clients.
// It implements VerdictSink; publishing never blocks the orchestrator. A
// client whose send buffer fills up is dropped instead of slowing anyone.
type MonitorHub struct {
	mu      sync.Mutex
	clients map[*monitorClient]struct{}
}

// NewMonitorHub creates an empty hub
func NewMonitorHub() *MonitorHub {
	return &MonitorHub{clients: make(map[*monitorClient]struct{})}
}

// HandleWS upgrades an HTTP request and registers the client
func (h *MonitorHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger().Warning("Websocket upgrade failed: %v", err)
		return
	}

	client := &monitorClient{
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	Logger().Debug("Monitor client connected, total %d", h.ClientCount())

	go h.writeLoop(client)
	go h.readLoop(client)
}

// writeLoop drains the client's send channel onto the connection
func (h *MonitorHub) writeLoop(client *monitorClient) {
	for data := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(clientWriteTimeout))
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	h.drop(client)
}

// readLoop drains reads so close frames are processed; clients are push-only
func (h *MonitorHub) readLoop(client *monitorClient) {
	defer h.drop(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// PublishVerdict implements VerdictSink
func (h *MonitorHub) PublishVerdict(v *AggregateVerdict) {
	h.broadcast(monitorEvent{
		Type:      "verdict",
		Payload:   v,
		Timestamp: time.Now(),
	})
}

// broadcast queues an event for every client. The send is non-blocking; a
// client that cannot keep up loses its slot, not the hub.
func (h *MonitorHub) broadcast(event monitorEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		Logger().Error("Failed to marshal monitor event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var stalled []*monitorClient
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		Logger().Warning("Dropping stalled monitor client")
		h.dropLocked(client)
	}
}

// drop unregisters and closes one client
func (h *MonitorHub) drop(client *monitorClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

// dropLocked removes a client while the hub lock is held. Closing the send
// channel stops the write loop; duplicate drops are no-ops.
func (h *MonitorHub) dropLocked(client *monitorClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	if client.conn != nil {
		client.conn.Close()
	}
}

// ClientCount returns the number of connected clients
func (h *MonitorHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *MonitorHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.dropLocked(client)
	}
}
