package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"match-service/internal/models"
)

// ErrSwipeExists signals that the actor already swiped this target. The
// earlier verdict is kept; a repeat attempt is rejected, not overwritten.
var ErrSwipeExists = errors.New("swipe already recorded")

// SwipeRepository abstracts the append-only swipe ledger.
type SwipeRepository interface {
	CreateSwipe(ctx context.Context, actorID, targetID int64, direction models.Direction) (models.Swipe, error)
	SwipeExists(ctx context.Context, actorID, targetID int64, direction models.Direction) (bool, error)
	SwipedTargets(ctx context.Context, actorID int64) ([]int64, error)
}

// SwipeRepo is a sqlx implementation of SwipeRepository.
type SwipeRepo struct {
	db *sqlx.DB
}

// NewSwipeRepo constructs a SwipeRepo.
func NewSwipeRepo(db *sqlx.DB) *SwipeRepo {
	return &SwipeRepo{db: db}
}

// CreateSwipe appends one swipe event. The UNIQUE(actor_id, target_id)
// constraint is the sole duplicate guard; a conflict maps to ErrSwipeExists.
func (r *SwipeRepo) CreateSwipe(ctx context.Context, actorID, targetID int64, direction models.Direction) (models.Swipe, error) {
	var swipe models.Swipe
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO swipes (actor_id, target_id, direction) VALUES ($1, $2, $3)
         RETURNING id, actor_id, target_id, direction, created_at`,
		actorID, targetID, direction).
		Scan(&swipe.ID, &swipe.ActorID, &swipe.TargetID, &swipe.Direction, &swipe.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return models.Swipe{}, ErrSwipeExists
		}
		return models.Swipe{}, err
	}
	return swipe, nil
}

// SwipeExists reports whether actor has swiped target with the given direction.
func (r *SwipeRepo) SwipeExists(ctx context.Context, actorID, targetID int64, direction models.Direction) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM swipes WHERE actor_id=$1 AND target_id=$2 AND direction=$3)`,
		actorID, targetID, direction)
	return exists, err
}

// SwipedTargets returns every target the actor has already acted on, in
// either direction. Discovery uses it so acted-on profiles never resurface.
func (r *SwipeRepo) SwipedTargets(ctx context.Context, actorID int64) ([]int64, error) {
	var targets []int64
	err := r.db.SelectContext(ctx, &targets,
		`SELECT target_id FROM swipes WHERE actor_id=$1`, actorID)
	return targets, err
}
