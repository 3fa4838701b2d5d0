package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"match-service/internal/mocks"
	"match-service/internal/models"
	"match-service/internal/repositories"
)

func newMessageRouter(matchRepo *mocks.MatchRepositoryMock, messageRepo *mocks.MessageRepositoryMock, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/matches/:match_id/messages", NewMessageHandler(matchRepo, messageRepo, nil).GetMessages)
	return r
}

func TestGetMessagesHistoryInOrder(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)

	now := time.Now().UTC().Truncate(time.Second)
	matchRepo.On("GetMatch", mock.Anything, int64(5)).
		Return(models.Match{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	messageRepo.On("ListMessages", mock.Anything, int64(5)).Return([]models.Message{
		{ID: 1, MatchID: 5, SenderID: 1, Content: "hey", CreatedAt: now},
		{ID: 2, MatchID: 5, SenderID: 2, Content: "hi", CreatedAt: now.Add(time.Second)},
	}, nil).Once()

	w := httptest.NewRecorder()
	newMessageRouter(matchRepo, messageRepo, 1).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/matches/5/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []messageRow `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	require.Equal(t, int64(1), resp.Messages[0].ID)
	// receiver_id is derived from the match, not stored per row.
	require.Equal(t, int64(2), resp.Messages[0].ReceiverID)
	require.Equal(t, int64(1), resp.Messages[1].ReceiverID)
}

func TestGetMessagesBadMatchID(t *testing.T) {
	w := httptest.NewRecorder()
	newMessageRouter(new(mocks.MatchRepositoryMock), new(mocks.MessageRepositoryMock), 1).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/matches/abc/messages", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessagesMatchNotFound(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	matchRepo.On("GetMatch", mock.Anything, int64(5)).
		Return(models.Match{}, repositories.ErrMatchNotFound).Once()

	w := httptest.NewRecorder()
	newMessageRouter(matchRepo, new(mocks.MessageRepositoryMock), 1).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/matches/5/messages", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMessagesForbiddenForOutsider(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	matchRepo.On("GetMatch", mock.Anything, int64(5)).
		Return(models.Match{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()

	w := httptest.NewRecorder()
	newMessageRouter(matchRepo, messageRepo, 9).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/matches/5/messages", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	messageRepo.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestGetMessagesEmptyHistory(t *testing.T) {
	matchRepo := new(mocks.MatchRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	matchRepo.On("GetMatch", mock.Anything, int64(5)).
		Return(models.Match{ID: 5, User1ID: 1, User2ID: 2}, nil).Once()
	messageRepo.On("ListMessages", mock.Anything, int64(5)).Return([]models.Message{}, nil).Once()

	w := httptest.NewRecorder()
	newMessageRouter(matchRepo, messageRepo, 2).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/matches/5/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"messages":[]}`, w.Body.String())
}
