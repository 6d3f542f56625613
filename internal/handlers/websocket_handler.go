package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/events"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// WebSocketHandler streams audit events to connected clients. Clients
// are read-only consumers; anything they send is discarded.
type WebSocketHandler struct {
	stream   *events.Stream
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewWebSocketHandler creates the handler.
func NewWebSocketHandler(stream *events.Stream, logger *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		stream: stream,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// StreamEvents upgrades the connection and forwards audit events until
// the client goes away.
// GET /api/ws/events
func (h *WebSocketHandler) StreamEvents(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	ch, cancel := h.stream.Subscribe()
	metrics.WebSocketClients.Inc()
	defer func() {
		cancel()
		metrics.WebSocketClients.Dec()
		conn.Close()
	}()

	// Reader goroutine: detect disconnects, drop inbound frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
