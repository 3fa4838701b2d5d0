package matching_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"match-service/internal/matching"
	"match-service/internal/mocks"
	"match-service/internal/models"
	"match-service/internal/rate"
	"match-service/internal/repositories"
)

func TestRecordSwipeRejectsSelfSwipe(t *testing.T) {
	svc := matching.NewService(new(mocks.SwipeRepositoryMock), new(mocks.MatchRepositoryMock), nil, nil, nil)

	_, err := svc.RecordSwipe(context.Background(), 7, 7, models.DirectionInterested)
	require.ErrorIs(t, err, matching.ErrSelfSwipe)
}

func TestRecordSwipeRejectsBadDirection(t *testing.T) {
	svc := matching.NewService(new(mocks.SwipeRepositoryMock), new(mocks.MatchRepositoryMock), nil, nil, nil)

	_, err := svc.RecordSwipe(context.Background(), 1, 2, models.Direction("maybe"))
	require.ErrorIs(t, err, matching.ErrInvalidDirection)
}

func TestRecordSwipeDuplicateYieldsAlreadySwiped(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	svc := matching.NewService(swipeRepo, new(mocks.MatchRepositoryMock), nil, nil, nil)

	swipeRepo.On("CreateSwipe", mock.Anything, int64(1), int64(2), models.DirectionInterested).
		Return(models.Swipe{}, repositories.ErrSwipeExists).Once()

	result, err := svc.RecordSwipe(context.Background(), 1, 2, models.DirectionInterested)
	require.NoError(t, err)
	require.Equal(t, matching.OutcomeAlreadySwiped, result.Outcome)
	swipeRepo.AssertExpectations(t)
}

func TestRecordSwipePassedShortCircuitsResolver(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	svc := matching.NewService(swipeRepo, matchRepo, nil, nil, nil)

	swipeRepo.On("CreateSwipe", mock.Anything, int64(1), int64(2), models.DirectionPassed).
		Return(models.Swipe{ID: 11, ActorID: 1, TargetID: 2, Direction: models.DirectionPassed}, nil).Once()

	result, err := svc.RecordSwipe(context.Background(), 1, 2, models.DirectionPassed)
	require.NoError(t, err)
	require.Equal(t, matching.OutcomeRecorded, result.Outcome)
	require.Nil(t, result.Match)

	// A pass never consults the reverse direction or the match store, even
	// when the counterpart already swiped interested.
	swipeRepo.AssertNotCalled(t, "SwipeExists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	matchRepo.AssertNotCalled(t, "CreateMatchIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSwipeNoReverseInterestIsRecorded(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	svc := matching.NewService(swipeRepo, matchRepo, nil, nil, nil)

	swipeRepo.On("CreateSwipe", mock.Anything, int64(1), int64(2), models.DirectionInterested).
		Return(models.Swipe{ID: 12, ActorID: 1, TargetID: 2, Direction: models.DirectionInterested}, nil).Once()
	swipeRepo.On("SwipeExists", mock.Anything, int64(2), int64(1), models.DirectionInterested).
		Return(false, nil).Once()

	result, err := svc.RecordSwipe(context.Background(), 1, 2, models.DirectionInterested)
	require.NoError(t, err)
	require.Equal(t, matching.OutcomeRecorded, result.Outcome)
	matchRepo.AssertNotCalled(t, "CreateMatchIfAbsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSwipeMutualInterestCreatesMatch(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	svc := matching.NewService(swipeRepo, matchRepo, nil, nil, nil)

	swipeRepo.On("CreateSwipe", mock.Anything, int64(5), int64(3), models.DirectionInterested).
		Return(models.Swipe{ID: 13, ActorID: 5, TargetID: 3, Direction: models.DirectionInterested}, nil).Once()
	swipeRepo.On("SwipeExists", mock.Anything, int64(3), int64(5), models.DirectionInterested).
		Return(true, nil).Once()
	matchRepo.On("CreateMatchIfAbsent", mock.Anything, int64(5), int64(3)).
		Return(models.Match{ID: 9, User1ID: 3, User2ID: 5}, true, nil).Once()

	result, err := svc.RecordSwipe(context.Background(), 5, 3, models.DirectionInterested)
	require.NoError(t, err)
	require.Equal(t, matching.OutcomeMatched, result.Outcome)
	require.NotNil(t, result.Match)
	require.Equal(t, int64(9), result.Match.ID)
	matchRepo.AssertExpectations(t)
}

func TestRecordSwipeExistingMatchStillReportsMatched(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	matchRepo := new(mocks.MatchRepositoryMock)
	svc := matching.NewService(swipeRepo, matchRepo, nil, nil, nil)

	swipeRepo.On("CreateSwipe", mock.Anything, int64(2), int64(1), models.DirectionInterested).
		Return(models.Swipe{ID: 14, ActorID: 2, TargetID: 1, Direction: models.DirectionInterested}, nil).Once()
	swipeRepo.On("SwipeExists", mock.Anything, int64(1), int64(2), models.DirectionInterested).
		Return(true, nil).Once()
	// The concurrent counterpart won the insert race; created=false is still
	// a match from the caller's point of view.
	matchRepo.On("CreateMatchIfAbsent", mock.Anything, int64(2), int64(1)).
		Return(models.Match{ID: 4, User1ID: 1, User2ID: 2}, false, nil).Once()

	result, err := svc.RecordSwipe(context.Background(), 2, 1, models.DirectionInterested)
	require.NoError(t, err)
	require.Equal(t, matching.OutcomeMatched, result.Outcome)
	require.Equal(t, int64(4), result.Match.ID)
}

// memStores is an in-memory persistence gateway with the same atomicity
// semantics as the SQL layer: unique swipe pairs, unique canonical matches.
type memStores struct {
	mu      sync.Mutex
	swipes  map[[2]int64]models.Direction
	matches map[[2]int64]models.Match
	nextID  int64
}

func newMemStores() *memStores {
	return &memStores{
		swipes:  make(map[[2]int64]models.Direction),
		matches: make(map[[2]int64]models.Match),
	}
}

func (s *memStores) CreateSwipe(_ context.Context, actorID, targetID int64, direction models.Direction) (models.Swipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{actorID, targetID}
	if _, ok := s.swipes[key]; ok {
		return models.Swipe{}, repositories.ErrSwipeExists
	}
	s.swipes[key] = direction
	s.nextID++
	return models.Swipe{ID: s.nextID, ActorID: actorID, TargetID: targetID, Direction: direction}, nil
}

func (s *memStores) SwipeExists(_ context.Context, actorID, targetID int64, direction models.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	got, ok := s.swipes[[2]int64{actorID, targetID}]
	return ok && got == direction, nil
}

func (s *memStores) SwipedTargets(_ context.Context, actorID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var targets []int64
	for key := range s.swipes {
		if key[0] == actorID {
			targets = append(targets, key[1])
		}
	}
	return targets, nil
}

func (s *memStores) CreateMatchIfAbsent(_ context.Context, userA, userB int64) (models.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := models.CanonicalPair(userA, userB)
	key := [2]int64{lo, hi}
	if existing, ok := s.matches[key]; ok {
		return existing, false, nil
	}
	s.nextID++
	match := models.Match{ID: s.nextID, User1ID: lo, User2ID: hi}
	s.matches[key] = match
	return match, true, nil
}

func (s *memStores) GetMatch(_ context.Context, matchID int64) (models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == matchID {
			return m, nil
		}
	}
	return models.Match{}, repositories.ErrMatchNotFound
}

func (s *memStores) IsParticipant(_ context.Context, matchID, userID int64) (bool, error) {
	match, err := s.GetMatch(context.Background(), matchID)
	if err != nil {
		return false, nil
	}
	return match.HasParticipant(userID), nil
}

func (s *memStores) ListMatches(_ context.Context, userID int64) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.Match
	for _, m := range s.matches {
		if m.HasParticipant(userID) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func TestMutualInterestEitherOrderYieldsOneCanonicalMatch(t *testing.T) {
	for _, order := range []string{"low_first", "high_first"} {
		t.Run(order, func(t *testing.T) {
			stores := newMemStores()
			svc := matching.NewService(stores, stores, nil, nil, nil)
			ctx := context.Background()

			first, second := int64(1), int64(2)
			if order == "high_first" {
				first, second = second, first
			}

			resultA, err := svc.RecordSwipe(ctx, first, second, models.DirectionInterested)
			require.NoError(t, err)
			require.Equal(t, matching.OutcomeRecorded, resultA.Outcome)

			resultB, err := svc.RecordSwipe(ctx, second, first, models.DirectionInterested)
			require.NoError(t, err)
			require.Equal(t, matching.OutcomeMatched, resultB.Outcome)
			require.Equal(t, int64(1), resultB.Match.User1ID)
			require.Equal(t, int64(2), resultB.Match.User2ID)
			require.Len(t, stores.matches, 1)
		})
	}
}

func TestConcurrentMutualSwipesCreateExactlyOneMatch(t *testing.T) {
	const pairs = 100
	stores := newMemStores()
	svc := matching.NewService(stores, stores, nil, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]matching.SwipeResult, pairs*2)
	errs := make([]error, pairs*2)
	for i := 0; i < pairs; i++ {
		a := int64(1000 + i*2)
		b := a + 1
		wg.Add(2)
		go func(slot int, actor, target int64) {
			defer wg.Done()
			results[slot], errs[slot] = svc.RecordSwipe(ctx, actor, target, models.DirectionInterested)
		}(i*2, a, b)
		go func(slot int, actor, target int64) {
			defer wg.Done()
			results[slot], errs[slot] = svc.RecordSwipe(ctx, actor, target, models.DirectionInterested)
		}(i*2+1, b, a)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, stores.matches, pairs)

	for i := 0; i < pairs; i++ {
		left, right := results[i*2], results[i*2+1]
		outcomes := []matching.Outcome{left.Outcome, right.Outcome}
		require.Contains(t, outcomes, matching.OutcomeMatched, "at least one side must observe the match")
		if left.Outcome == matching.OutcomeMatched && right.Outcome == matching.OutcomeMatched {
			require.Equal(t, left.Match.ID, right.Match.ID, "both racers must resolve the same match")
		}
	}
}

type blockedLimiter struct{}

func (blockedLimiter) AllowSwipe(context.Context, int64) (int64, bool, error) {
	return 7, false, nil
}

func TestRecordSwipeRateLimited(t *testing.T) {
	svc := matching.NewService(new(mocks.SwipeRepositoryMock), new(mocks.MatchRepositoryMock), blockedLimiter{}, nil, nil)

	_, err := svc.RecordSwipe(context.Background(), 1, 2, models.DirectionInterested)

	var tooFast rate.TooFastError
	require.ErrorAs(t, err, &tooFast)
	require.Equal(t, int64(7), tooFast.RetryAfterSec)
}

type brokenLimiter struct{}

func (brokenLimiter) AllowSwipe(context.Context, int64) (int64, bool, error) {
	return 0, false, errors.New("redis gone")
}

func TestRecordSwipeFailsOpenWhenLimiterErrors(t *testing.T) {
	swipeRepo := new(mocks.SwipeRepositoryMock)
	svc := matching.NewService(swipeRepo, new(mocks.MatchRepositoryMock), brokenLimiter{}, nil, nil)

	swipeRepo.On("CreateSwipe", mock.Anything, int64(1), int64(2), models.DirectionPassed).
		Return(models.Swipe{ID: 20, ActorID: 1, TargetID: 2, Direction: models.DirectionPassed}, nil).Once()

	result, err := svc.RecordSwipe(context.Background(), 1, 2, models.DirectionPassed)
	require.NoError(t, err)
	require.Equal(t, matching.OutcomeRecorded, result.Outcome)
}
