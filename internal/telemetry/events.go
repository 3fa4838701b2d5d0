package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"match-service/internal/models"
	"match-service/internal/observability"
)

const (
	routingKeyMatchCreated = "match_events.match_created"
	routingKeyMessageSent  = "match_events.message_sent"
)

// Emitter publishes domain events to the message broker so downstream
// consumers (notifications, analytics) see swipe-to-match transitions
// without polling the database.
type Emitter struct {
	service     string
	environment string
	log         *zap.Logger
}

type envelope struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	OccurredAt    string      `json:"occurred_at"`
	Service       string      `json:"service"`
	Environment   string      `json:"environment"`
	Payload       interface{} `json:"payload"`
}

// NewEmitter constructs an Emitter.
func NewEmitter(service, environment string, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{service: service, environment: environment, log: log}
}

// EmitMatchCreated publishes the match_created event. Publish failures are
// logged and dropped; eventing never blocks the request path.
func (e *Emitter) EmitMatchCreated(ctx context.Context, match models.Match) {
	if e == nil {
		return
	}
	err := observability.PublishEvent(ctx, routingKeyMatchCreated, e.envelope("match_created", map[string]interface{}{
		"match_id":   match.ID,
		"user1_id":   match.User1ID,
		"user2_id":   match.User2ID,
		"created_at": match.CreatedAt.UTC().Format(time.RFC3339Nano),
	}), nil)
	if err != nil {
		e.log.Warn("publish match_created failed", zap.Error(err), zap.Int64("match_id", match.ID))
	}
}

// EmitMessageSent publishes the message_sent event.
func (e *Emitter) EmitMessageSent(ctx context.Context, msg models.Message, receiverID int64) {
	if e == nil {
		return
	}
	err := observability.PublishEvent(ctx, routingKeyMessageSent, e.envelope("message_sent", map[string]interface{}{
		"message_id":  msg.ID,
		"match_id":    msg.MatchID,
		"sender_id":   msg.SenderID,
		"receiver_id": receiverID,
		"created_at":  msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}), nil)
	if err != nil {
		e.log.Warn("publish message_sent failed", zap.Error(err), zap.Int64("message_id", msg.ID))
	}
}

func (e *Emitter) envelope(eventType string, payload interface{}) envelope {
	return envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		Payload:       payload,
	}
}
