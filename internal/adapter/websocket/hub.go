package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/guiltyguilty/disturb/internal/adapter/metrics"
	"github.com/guiltyguilty/disturb/internal/domain"
)

const (
	sendBufferSize = 16
	writeTimeout   = 5 * time.Second
)

var (
	ErrHubFull    = errors.New("websocket hub at capacity")
	ErrHubStopped = errors.New("websocket hub stopped")
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type registerResult struct {
	id  uuid.UUID
	err error
}

type cmdRegister struct {
	conn    *websocket.Conn
	replyCh chan registerResult
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	id uuid.UUID
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdGetClientCount struct {
	replyCh chan int
}

func (cmdGetClientCount) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg := <-cw.sendCh:
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	_ = cw.conn.Close()
}

// --- Hub ---

// Hub pushes text changes to every connected browser. All client state is
// owned by a single goroutine and mutated only through commands.
type Hub struct {
	cmdCh    chan hubCmd
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	clients    map[uuid.UUID]*clientWriter
	snapshot   func() []domain.TextChange
	maxClients int
	metrics    *metrics.WebSocketMetrics
}

// NewHub starts a hub. snapshot supplies the full page state sent to each
// newly registered client. maxClients <= 0 means unlimited. m may be nil.
func NewHub(snapshot func() []domain.TextChange, maxClients int, m *metrics.WebSocketMetrics) *Hub {
	hub := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]*clientWriter),
		snapshot:   snapshot,
		maxClients: maxClients,
		metrics:    m,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case cmdRegister:
				c.replyCh <- h.handleRegister(c.conn)
			case cmdUnregister:
				h.handleUnregister(c.id)
			case cmdBroadcast:
				h.handleBroadcast(c.data)
			case cmdGetClientCount:
				c.replyCh <- len(h.clients)
			}
		case <-h.stopCh:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(conn *websocket.Conn) registerResult {
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting WebSocket client", "max_clients", h.maxClients)
		if h.metrics != nil {
			h.metrics.Rejected.Inc()
		}
		_ = conn.Close()
		return registerResult{err: fmt.Errorf("%w: %d clients", ErrHubFull, h.maxClients)}
	}

	var snapshot []domain.TextChange
	if h.snapshot != nil {
		snapshot = h.snapshot()
	}
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		_ = conn.Close()
		return registerResult{err: fmt.Errorf("failed to encode snapshot: %w", err)}
	}

	id := uuid.New()
	cw := newClientWriter(conn)
	cw.sendCh <- data
	h.clients[id] = cw

	if h.metrics != nil {
		h.metrics.ActiveConnections.Inc()
	}
	slog.Info("WebSocket client registered", "client_id", id, "total_clients", len(h.clients))
	return registerResult{id: id}
}

func (h *Hub) handleUnregister(id uuid.UUID) {
	cw, exists := h.clients[id]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, id)

	if h.metrics != nil {
		h.metrics.ActiveConnections.Dec()
	}
	slog.Info("WebSocket client unregistered", "client_id", id, "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(data []byte) {
	var slow []uuid.UUID
	for id, cw := range h.clients {
		select {
		case cw.sendCh <- data:
		default:
			slow = append(slow, id)
		}
	}

	if h.metrics != nil && len(h.clients) > 0 {
		h.metrics.MessagesPublished.Inc()
	}

	for _, id := range slow {
		slog.Warn("Disconnecting slow WebSocket client", "client_id", id)
		if h.metrics != nil {
			h.metrics.SlowDisconnects.Inc()
		}
		h.handleUnregister(id)
	}
}

func (h *Hub) handleStop() {
	for id := range h.clients {
		h.handleUnregister(id)
	}
}

// --- Public API ---

// Register adds conn and queues the current snapshot as its first frame.
func (h *Hub) Register(conn *websocket.Conn) (uuid.UUID, error) {
	replyCh := make(chan registerResult, 1)
	if !h.send(cmdRegister{conn: conn, replyCh: replyCh}) {
		_ = conn.Close()
		return uuid.Nil, ErrHubStopped
	}
	select {
	case res := <-replyCh:
		return res.id, res.err
	case <-h.done:
		_ = conn.Close()
		return uuid.Nil, ErrHubStopped
	}
}

func (h *Hub) Unregister(id uuid.UUID) {
	h.send(cmdUnregister{id: id})
}

// PublishTextChanged broadcasts one element change. It implements
// domain.ChangePublisher and is a no-op once the hub is stopped.
func (h *Hub) PublishTextChanged(change domain.TextChange) {
	data, err := encodeText(change)
	if err != nil {
		slog.Error("Failed to encode text frame", "element", change.ID, "error", err)
		return
	}
	h.send(cmdBroadcast{data: data})
}

func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	if !h.send(cmdGetClientCount{replyCh: replyCh}) {
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.done:
		return 0
	}
}

// Stop disconnects every client and waits for the hub goroutine to exit.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
}

func (h *Hub) send(cmd hubCmd) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.cmdCh <- cmd:
		return true
	case <-h.done:
		return false
	}
}
