package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"match-service/internal/matching"
	"match-service/internal/models"
)

type SwipeRepositoryMock struct {
	mock.Mock
}

func (m *SwipeRepositoryMock) CreateSwipe(ctx context.Context, actorID, targetID int64, direction models.Direction) (models.Swipe, error) {
	args := m.Called(ctx, actorID, targetID, direction)
	var swipe models.Swipe
	if val := args.Get(0); val != nil {
		swipe = val.(models.Swipe)
	}
	return swipe, args.Error(1)
}

func (m *SwipeRepositoryMock) SwipeExists(ctx context.Context, actorID, targetID int64, direction models.Direction) (bool, error) {
	args := m.Called(ctx, actorID, targetID, direction)
	return args.Bool(0), args.Error(1)
}

func (m *SwipeRepositoryMock) SwipedTargets(ctx context.Context, actorID int64) ([]int64, error) {
	args := m.Called(ctx, actorID)
	var targets []int64
	if val := args.Get(0); val != nil {
		targets = val.([]int64)
	}
	return targets, args.Error(1)
}

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) CreateMatchIfAbsent(ctx context.Context, userA, userB int64) (models.Match, bool, error) {
	args := m.Called(ctx, userA, userB)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Bool(1), args.Error(2)
}

func (m *MatchRepositoryMock) GetMatch(ctx context.Context, matchID int64) (models.Match, error) {
	args := m.Called(ctx, matchID)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) IsParticipant(ctx context.Context, matchID, userID int64) (bool, error) {
	args := m.Called(ctx, matchID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MatchRepositoryMock) ListMatches(ctx context.Context, userID int64) ([]models.Match, error) {
	args := m.Called(ctx, userID)
	var matches []models.Match
	if val := args.Get(0); val != nil {
		matches = val.([]models.Match)
	}
	return matches, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, matchID, senderID int64, content string) (models.Message, error) {
	args := m.Called(ctx, matchID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, matchID int64) ([]models.Message, error) {
	args := m.Called(ctx, matchID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	args := m.Called(ctx, profile)
	var saved models.Profile
	if val := args.Get(0); val != nil {
		saved = val.(models.Profile)
	}
	return saved, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfiles(ctx context.Context, userIDs []int64) ([]models.Profile, error) {
	args := m.Called(ctx, userIDs)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *ProfileRepositoryMock) ListCandidates(ctx context.Context, viewerID int64, filter models.CandidateFilter) ([]models.Profile, error) {
	args := m.Called(ctx, viewerID, filter)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

type SwipeRecorderMock struct {
	mock.Mock
}

func (m *SwipeRecorderMock) RecordSwipe(ctx context.Context, actorID, targetID int64, direction models.Direction) (matching.SwipeResult, error) {
	args := m.Called(ctx, actorID, targetID, direction)
	var result matching.SwipeResult
	if val := args.Get(0); val != nil {
		result = val.(matching.SwipeResult)
	}
	return result, args.Error(1)
}
