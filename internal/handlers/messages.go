package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-service/internal/repositories"
)

// MessageHandler serves chat history for a match.
type MessageHandler struct {
	matchRepo   repositories.MatchRepository
	messageRepo repositories.MessageRepository
	log         *zap.Logger
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(matchRepo repositories.MatchRepository, messageRepo repositories.MessageRepository, log *zap.Logger) *MessageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageHandler{matchRepo: matchRepo, messageRepo: messageRepo, log: log}
}

type messageRow struct {
	ID         int64     `json:"id"`
	MatchID    int64     `json:"match_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// GetMessages returns the full history of a match in insertion order,
// restricted to its two participants.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	matchID, err := strconv.ParseInt(c.Param("match_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	userID := userIDFromContext(c)
	match, err := h.matchRepo.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		h.log.Error("load match failed", zap.Error(err), zap.Int64("match_id", matchID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
		return
	}
	if !match.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this match"})
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), matchID)
	if err != nil {
		h.log.Error("load messages failed", zap.Error(err), zap.Int64("match_id", matchID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	rows := make([]messageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, messageRow{
			ID:         m.ID,
			MatchID:    m.MatchID,
			SenderID:   m.SenderID,
			ReceiverID: match.Counterpart(m.SenderID),
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": rows})
}
