package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"match-service/internal/observability"
)

// Hub is the live connection registry. Connections are keyed by user id so a
// message for a user reaches every open device at once. It is the only
// shared mutable structure in the process and is safe for concurrent use.
type Hub struct {
	conns map[int64]map[*Conn]ConnInfo
	mu    sync.RWMutex
	log   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		conns: make(map[int64]map[*Conn]ConnInfo),
		log:   log,
	}
}

// Register adds one websocket connection for the user. A user may hold any
// number of concurrent connections.
func (h *Hub) Register(userID int64, conn *Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[userID]; !ok {
		h.conns[userID] = make(map[*Conn]ConnInfo)
	}
	h.conns[userID][conn] = info
}

// Unregister removes exactly the given connection, never the user's others.
func (h *Hub) Unregister(userID int64, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if infos, ok := h.conns[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.conns, userID)
		}
	}
}

// HandleCount reports how many live connections the user currently holds.
func (h *Hub) HandleCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// SendToUser pushes the payload to every live connection of the user and
// returns how many writes succeeded. A write failure closes and unregisters
// that one connection; remaining connections still receive the payload.
// No live connection is not an error; the caller has already persisted.
func (h *Hub) SendToUser(userID int64, payload interface{}) int {
	h.mu.RLock()
	targets := make(map[*Conn]ConnInfo, len(h.conns[userID]))
	for conn, info := range h.conns[userID] {
		targets[conn] = info
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return 0
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshal ws payload", zap.Error(err))
		return 0
	}

	delivered := 0
	for conn, info := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			h.log.Warn("websocket write failed", zap.Int64("user_id", userID), zap.Error(err))
			conn.Close()
			h.Unregister(userID, conn)
			h.publishWSError(info, err)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) publishWSError(info ConnInfo, cause error) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      cause.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}
