package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 512
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
)

// NewHandler upgrades requests to WebSocket connections served by hub.
// Clients only receive; anything they send is discarded.
func NewHandler(hub *Hub, checkOrigin func(r *http.Request) bool) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
			return
		}

		id, err := hub.Register(conn)
		if err != nil {
			slog.Warn("WebSocket registration failed", "remote_addr", r.RemoteAddr, "error", err)
			return
		}
		defer hub.Unregister(id)

		readLoop(conn)
	})
}

// readLoop keeps the connection alive until the peer goes away.
func readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			case <-stopPing:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
