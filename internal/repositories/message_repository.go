package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"match-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, matchID, senderID int64, content string) (models.Message, error)
	ListMessages(ctx context.Context, matchID int64) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message in a match conversation.
func (r *MessageRepo) CreateMessage(ctx context.Context, matchID, senderID int64, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (match_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, match_id, sender_id, content, created_at`,
		matchID, senderID, content).
		Scan(&msg.ID, &msg.MatchID, &msg.SenderID, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// ListMessages returns the full history of a match ordered by time, with the
// insertion id breaking timestamp ties.
func (r *MessageRepo) ListMessages(ctx context.Context, matchID int64) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, match_id, sender_id, content, created_at FROM messages
         WHERE match_id=$1
         ORDER BY created_at ASC, id ASC`, matchID)
	return msgs, err
}
