package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"match-service/internal/auth"
	"match-service/internal/models"
	"match-service/internal/observability"
	"match-service/internal/relay"
	"match-service/internal/repositories"
)

// RelayWebSocketHandler owns the chat websocket endpoint: it authenticates
// the connection, registers it with the hub and feeds inbound frames into
// the relay.
type RelayWebSocketHandler struct {
	hub      *Hub
	relay    *relay.Service
	verifier *auth.Verifier
	log      *zap.Logger
}

// NewRelayWebSocketHandler constructs a RelayWebSocketHandler.
func NewRelayWebSocketHandler(hub *Hub, relaySvc *relay.Service, verifier *auth.Verifier, log *zap.Logger) *RelayWebSocketHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelayWebSocketHandler{hub: hub, relay: relaySvc, verifier: verifier, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsError struct {
	Error string `json:"error"`
}

// Handle upgrades the connection, registers it for the authenticated user
// and runs the read loop until the client goes away.
func (h *RelayWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("match-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := NewConn(raw)

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.Register(userID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, "ws_connect", info, "")

	// The request context is canceled as soon as this handler returns on the
	// hijacked connection; the read loop lives as long as the socket does.
	go h.readLoop(context.WithoutCancel(ctx), conn, info)
}

func (h *RelayWebSocketHandler) readLoop(ctx context.Context, conn *Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		// Registry cleanup must land before anyone looks this user up again.
		h.hub.Unregister(info.UserID, conn)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(ctx, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishLifecycle(ctx, "ws_error", info, closeReason)
			}
			return
		}

		var inbound models.InboundMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			h.writeError(conn, "invalid message format")
			continue
		}
		if inbound.SenderID != 0 && inbound.SenderID != info.UserID {
			h.writeError(conn, "sender does not match connection")
			continue
		}

		if _, err := h.relay.Relay(ctx, info.UserID, inbound.MatchID, inbound.Content); err != nil {
			h.writeError(conn, relayErrorText(err))
		}
	}
}

// writeError reports a failure on the originating connection only.
func (h *RelayWebSocketHandler) writeError(conn *Conn, text string) {
	payload, _ := json.Marshal(wsError{Error: text})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Warn("websocket error write failed", zap.Error(err))
	}
}

func relayErrorText(err error) string {
	switch {
	case errors.Is(err, relay.ErrEmptyBody):
		return "message body is required"
	case errors.Is(err, repositories.ErrMatchNotFound):
		return "match not found"
	case errors.Is(err, relay.ErrNotParticipant):
		return "not a participant of this match"
	default:
		return "failed to send message"
	}
}

func (h *RelayWebSocketHandler) publishLifecycle(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
