package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"match-service/internal/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRepository abstracts match persistence.
type MatchRepository interface {
	CreateMatchIfAbsent(ctx context.Context, userA, userB int64) (models.Match, bool, error)
	GetMatch(ctx context.Context, matchID int64) (models.Match, error)
	IsParticipant(ctx context.Context, matchID, userID int64) (bool, error)
	ListMatches(ctx context.Context, userID int64) ([]models.Match, error)
}

// MatchRepo is a sqlx implementation of MatchRepository.
type MatchRepo struct {
	db *sqlx.DB
}

// NewMatchRepo constructs a MatchRepo.
func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateMatchIfAbsent inserts the canonical (lo, hi) match row if it does not
// exist yet and reports whether this call created it. Two users completing
// the pair concurrently race on the same unique key, so exactly one insert
// wins and the loser reads the surviving row back.
func (r *MatchRepo) CreateMatchIfAbsent(ctx context.Context, userA, userB int64) (models.Match, bool, error) {
	lo, hi := models.CanonicalPair(userA, userB)

	var match models.Match
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO matches (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING id, user1_id, user2_id, created_at`,
		lo, hi).
		Scan(&match.ID, &match.User1ID, &match.User2ID, &match.CreatedAt)
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, false, err
	}

	// Conflict: the row already exists, created here earlier or by the
	// concurrent counterpart swipe. Either way it is the same match.
	err = r.db.GetContext(ctx, &match,
		`SELECT id, user1_id, user2_id, created_at FROM matches WHERE user1_id=$1 AND user2_id=$2`,
		lo, hi)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, false, ErrMatchNotFound
	}
	return match, false, err
}

// GetMatch fetches a match by id.
func (r *MatchRepo) GetMatch(ctx context.Context, matchID int64) (models.Match, error) {
	var match models.Match
	err := r.db.GetContext(ctx, &match,
		`SELECT id, user1_id, user2_id, created_at FROM matches WHERE id=$1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrMatchNotFound
	}
	return match, err
}

// IsParticipant checks whether a user belongs to the match.
func (r *MatchRepo) IsParticipant(ctx context.Context, matchID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM matches WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`,
		matchID, userID)
	return exists, err
}

// ListMatches returns every match the user participates in, newest first.
func (r *MatchRepo) ListMatches(ctx context.Context, userID int64) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.SelectContext(ctx, &matches,
		`SELECT id, user1_id, user2_id, created_at FROM matches
         WHERE user1_id=$1 OR user2_id=$1
         ORDER BY created_at DESC`, userID)
	return matches, err
}
