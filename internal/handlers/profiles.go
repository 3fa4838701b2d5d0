package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-service/internal/models"
	"match-service/internal/repositories"
)

// ProfileHandler owns profile CRUD and the discovery feed.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
	log         *zap.Logger
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{profileRepo: profileRepo, log: log}
}

// ListCandidates returns discovery candidates for the caller: everyone
// except themselves and every target already in their swipe ledger, narrowed
// by the optional query predicates.
func (h *ProfileHandler) ListCandidates(c *gin.Context) {
	userID := userIDFromContext(c)

	filter := models.CandidateFilter{
		Gender: c.Query("gender"),
		Region: c.Query("region"),
		City:   c.Query("city"),
	}
	if raw := c.Query("min_age"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_age"})
			return
		}
		filter.MinAge = v
	}
	if raw := c.Query("max_age"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_age"})
			return
		}
		filter.MaxAge = v
	}

	profiles, err := h.profileRepo.ListCandidates(c.Request.Context(), userID, filter)
	if err != nil {
		h.log.Error("list candidates failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// UpsertProfile creates or replaces the caller's profile.
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	var req struct {
		FirstName string  `json:"first_name" binding:"required"`
		LastName  string  `json:"last_name" binding:"required"`
		Nickname  *string `json:"nickname"`
		Age       int     `json:"age" binding:"required"`
		Gender    *string `json:"gender"`
		Bio       *string `json:"bio"`
		Region    string  `json:"region" binding:"required"`
		City      string  `json:"city" binding:"required"`
		PfpPath   *string `json:"pfp_path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required fields missing"})
		return
	}

	profile := models.Profile{
		UserID:    userIDFromContext(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Nickname:  req.Nickname,
		Age:       req.Age,
		Gender:    req.Gender,
		Bio:       req.Bio,
		Region:    req.Region,
		City:      req.City,
		PfpPath:   req.PfpPath,
	}

	saved, err := h.profileRepo.UpsertProfile(c.Request.Context(), profile)
	if err != nil {
		h.log.Error("upsert profile failed", zap.Error(err), zap.Int64("user_id", profile.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// GetOwnProfile returns the caller's profile.
func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	userID := userIDFromContext(c)

	profile, err := h.profileRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.log.Error("load own profile failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CheckProfile reports whether the caller already has a profile.
func (h *ProfileHandler) CheckProfile(c *gin.Context) {
	userID := userIDFromContext(c)

	_, err := h.profileRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusOK, gin.H{"has_profile": false})
			return
		}
		h.log.Error("check profile failed", zap.Error(err), zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"has_profile": true})
}
