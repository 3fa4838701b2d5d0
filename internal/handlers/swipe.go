package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-service/internal/matching"
	"match-service/internal/models"
	"match-service/internal/rate"
)

// SwipeRecorder is the slice of the matching service the handler needs.
type SwipeRecorder interface {
	RecordSwipe(ctx context.Context, actorID, targetID int64, direction models.Direction) (matching.SwipeResult, error)
}

// SwipeHandler exposes the swipe decision engine over HTTP.
type SwipeHandler struct {
	matcher SwipeRecorder
	log     *zap.Logger
}

// NewSwipeHandler builds a SwipeHandler.
func NewSwipeHandler(matcher SwipeRecorder, log *zap.Logger) *SwipeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SwipeHandler{matcher: matcher, log: log}
}

// PostSwipe records one swipe and reports whether it completed a match.
// The second swiper of a mutual pair gets the matched status synchronously;
// the first learns about the match through the listing endpoint.
func (h *SwipeHandler) PostSwipe(c *gin.Context) {
	var req struct {
		TargetUserID int64  `json:"target_user_id" binding:"required"`
		Direction    string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_user_id and direction are required"})
		return
	}

	userID := userIDFromContext(c)
	result, err := h.matcher.RecordSwipe(c.Request.Context(), userID, req.TargetUserID, models.Direction(req.Direction))
	if err != nil {
		var tooFast rate.TooFastError
		switch {
		case errors.Is(err, matching.ErrSelfSwipe):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot swipe on yourself"})
		case errors.Is(err, matching.ErrInvalidDirection):
			c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be interested or passed"})
		case errors.Is(err, matching.ErrInvalidTarget):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target user"})
		case errors.As(err, &tooFast):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many swipes", "retry_after": tooFast.RetryAfterSec})
		default:
			h.log.Error("record swipe failed",
				zap.Error(err),
				zap.Int64("user_id", userID),
				zap.String("request_id", requestIDFromContext(c)))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record swipe"})
		}
		return
	}

	switch result.Outcome {
	case matching.OutcomeAlreadySwiped:
		c.JSON(http.StatusConflict, gin.H{"error": "already swiped this user"})
	case matching.OutcomeMatched:
		c.JSON(http.StatusCreated, gin.H{"status": "matched", "match_id": result.Match.ID})
	default:
		c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
	}
}
