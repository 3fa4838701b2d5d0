package matching

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"match-service/internal/models"
	"match-service/internal/observability"
	"match-service/internal/rate"
	"match-service/internal/repositories"
)

// Outcome is the client-visible result of one swipe request.
type Outcome string

const (
	OutcomeRecorded      Outcome = "recorded"
	OutcomeAlreadySwiped Outcome = "already_swiped"
	OutcomeMatched       Outcome = "matched"
)

var (
	ErrSelfSwipe        = errors.New("cannot swipe on yourself")
	ErrInvalidDirection = errors.New("invalid swipe direction")
	ErrInvalidTarget    = errors.New("invalid swipe target")
)

// SwipeResult carries the outcome plus the match record when one exists.
type SwipeResult struct {
	Outcome Outcome
	Swipe   models.Swipe
	Match   *models.Match
}

// RateLimiter bounds swipe throughput; a nil limiter disables the check.
type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (retryAfterSec int64, allowed bool, err error)
}

// EventEmitter publishes domain events after state transitions commit.
type EventEmitter interface {
	EmitMatchCreated(ctx context.Context, match models.Match)
}

// Service turns one-directional swipes into symmetric match records.
type Service struct {
	swipes  repositories.SwipeRepository
	matches repositories.MatchRepository
	limiter RateLimiter
	events  EventEmitter
	log     *zap.Logger
}

// NewService constructs the matching service. limiter and events may be nil.
func NewService(swipes repositories.SwipeRepository, matches repositories.MatchRepository, limiter RateLimiter, events EventEmitter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{swipes: swipes, matches: matches, limiter: limiter, events: events, log: log}
}

// RecordSwipe appends the swipe and, for an interested verdict, resolves
// whether the pair is now mutual. A duplicate attempt yields
// OutcomeAlreadySwiped without touching the earlier event.
func (s *Service) RecordSwipe(ctx context.Context, actorID, targetID int64, direction models.Direction) (SwipeResult, error) {
	if targetID <= 0 {
		return SwipeResult{}, ErrInvalidTarget
	}
	if actorID == targetID {
		return SwipeResult{}, ErrSelfSwipe
	}
	if !direction.Valid() {
		return SwipeResult{}, ErrInvalidDirection
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowSwipe(ctx, actorID)
		if err != nil {
			// The cache tier must never take the ledger down with it.
			s.log.Warn("swipe rate limiter unavailable, failing open", zap.Error(err))
		} else if !allowed {
			return SwipeResult{}, rate.TooFastError{RetryAfterSec: retryAfter}
		}
	}

	swipe, err := s.swipes.CreateSwipe(ctx, actorID, targetID, direction)
	if err != nil {
		if errors.Is(err, repositories.ErrSwipeExists) {
			return SwipeResult{Outcome: OutcomeAlreadySwiped}, nil
		}
		return SwipeResult{}, err
	}
	observability.IncSwipe(string(direction))

	// A pass can never complete a pair.
	if direction != models.DirectionInterested {
		return SwipeResult{Outcome: OutcomeRecorded, Swipe: swipe}, nil
	}

	match, matched, err := s.tryResolveMatch(ctx, actorID, targetID)
	if err != nil {
		return SwipeResult{}, err
	}
	if !matched {
		return SwipeResult{Outcome: OutcomeRecorded, Swipe: swipe}, nil
	}
	return SwipeResult{Outcome: OutcomeMatched, Swipe: swipe, Match: &match}, nil
}

// tryResolveMatch checks for reverse interest and materializes the canonical
// match row. The unique constraint on (user1_id, user2_id) arbitrates the
// concurrent double-swipe: one insert creates, the other reads the winner
// and reports the same match. Once created a match is never re-evaluated.
func (s *Service) tryResolveMatch(ctx context.Context, actorID, targetID int64) (models.Match, bool, error) {
	mutual, err := s.swipes.SwipeExists(ctx, targetID, actorID, models.DirectionInterested)
	if err != nil {
		return models.Match{}, false, err
	}
	if !mutual {
		return models.Match{}, false, nil
	}

	match, created, err := s.matches.CreateMatchIfAbsent(ctx, actorID, targetID)
	if err != nil {
		return models.Match{}, false, err
	}
	if created {
		observability.IncMatchCreated()
		s.log.Info("match created",
			zap.Int64("match_id", match.ID),
			zap.Int64("user1_id", match.User1ID),
			zap.Int64("user2_id", match.User2ID))
		if s.events != nil {
			s.events.EmitMatchCreated(ctx, match)
		}
	}
	return match, true, nil
}
