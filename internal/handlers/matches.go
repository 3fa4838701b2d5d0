package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-service/internal/models"
	"match-service/internal/repositories"
)

// MatchHandler serves the match listing.
type MatchHandler struct {
	matchRepo   repositories.MatchRepository
	profileRepo repositories.ProfileRepository
	log         *zap.Logger
}

// NewMatchHandler builds a MatchHandler.
func NewMatchHandler(matchRepo repositories.MatchRepository, profileRepo repositories.ProfileRepository, log *zap.Logger) *MatchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchHandler{matchRepo: matchRepo, profileRepo: profileRepo, log: log}
}

type matchRow struct {
	MatchID   int64          `json:"match_id"`
	MatchedAt time.Time      `json:"matched_at"`
	Profile   models.Profile `json:"profile"`
}

// ListMatches returns the caller's matches joined with the counterpart's
// profile summary. A match whose counterpart profile cannot be resolved is
// dropped from the result rather than returned with placeholder data.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID := userIDFromContext(c)

	matches, err := h.matchRepo.ListMatches(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list matches failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}

	counterpartIDs := make([]int64, 0, len(matches))
	for _, m := range matches {
		counterpartIDs = append(counterpartIDs, m.Counterpart(userID))
	}

	profiles, err := h.profileRepo.GetProfiles(c.Request.Context(), counterpartIDs)
	if err != nil {
		h.log.Error("load counterpart profiles failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}

	profileByUser := make(map[int64]models.Profile, len(profiles))
	for _, p := range profiles {
		profileByUser[p.UserID] = p
	}

	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		profile, ok := profileByUser[m.Counterpart(userID)]
		if !ok {
			continue
		}
		rows = append(rows, matchRow{MatchID: m.ID, MatchedAt: m.CreatedAt, Profile: profile})
	}

	c.JSON(http.StatusOK, gin.H{"matches": rows})
}
