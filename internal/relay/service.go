package relay

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"match-service/internal/models"
	"match-service/internal/observability"
	"match-service/internal/repositories"
)

var (
	// ErrEmptyBody rejects a message with no content.
	ErrEmptyBody = errors.New("message body is empty")
	// ErrNotParticipant rejects a sender that does not belong to the match.
	ErrNotParticipant = errors.New("sender is not a match participant")
)

// Registry is the live-connection lookup the relay pushes through.
type Registry interface {
	SendToUser(userID int64, payload interface{}) int
}

// EventEmitter publishes a message_sent event after the write commits.
type EventEmitter interface {
	EmitMessageSent(ctx context.Context, msg models.Message, receiverID int64)
}

// Service authorizes, persists and fans out chat messages. Persistence
// always precedes delivery: a message that failed to store is never pushed.
type Service struct {
	matches  repositories.MatchRepository
	messages repositories.MessageRepository
	registry Registry
	events   EventEmitter
	log      *zap.Logger
}

// NewService constructs the relay. events may be nil.
func NewService(matches repositories.MatchRepository, messages repositories.MessageRepository, registry Registry, events EventEmitter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{matches: matches, messages: messages, registry: registry, events: events, log: log}
}

// Relay stores one message and delivers it to every live connection of both
// participants, so the sender's other devices see their own message echoed.
// An offline receiver is not an error; history retains the message.
func (s *Service) Relay(ctx context.Context, senderID, matchID int64, content string) (models.DeliveredMessage, error) {
	if strings.TrimSpace(content) == "" {
		observability.IncMessageRelayed("invalid_body")
		return models.DeliveredMessage{}, ErrEmptyBody
	}

	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			observability.IncMessageRelayed("match_not_found")
		}
		return models.DeliveredMessage{}, err
	}
	if !match.HasParticipant(senderID) {
		observability.IncMessageRelayed("unauthorized")
		return models.DeliveredMessage{}, ErrNotParticipant
	}

	msg, err := s.messages.CreateMessage(ctx, matchID, senderID, content)
	if err != nil {
		observability.IncMessageRelayed("persist_failed")
		return models.DeliveredMessage{}, err
	}

	receiverID := match.Counterpart(senderID)
	delivered := models.DeliveredMessage{
		ID:         msg.ID,
		MatchID:    msg.MatchID,
		SenderID:   msg.SenderID,
		ReceiverID: receiverID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}

	sent := s.registry.SendToUser(senderID, delivered)
	sent += s.registry.SendToUser(receiverID, delivered)
	s.log.Debug("message relayed",
		zap.Int64("match_id", matchID),
		zap.Int64("sender_id", senderID),
		zap.Int64("receiver_id", receiverID),
		zap.Int("live_deliveries", sent))
	observability.IncMessageRelayed("delivered")

	if s.events != nil {
		s.events.EmitMessageSent(ctx, msg, receiverID)
	}
	return delivered, nil
}
