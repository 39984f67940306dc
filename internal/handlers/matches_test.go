package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"placechat/internal/mocks"
	"placechat/internal/models"
	"placechat/internal/repositories"
)

func setupMatchRouter(handler *MatchHandler, userID string) http.Handler {
	r := newTestRouter(userID)
	r.GET("/matches", handler.ListMatches)
	r.DELETE("/matches/:id", handler.Unmatch)
	return r
}

func TestListMatches(t *testing.T) {
	matches := new(mocks.MatchRepositoryMock)
	router := setupMatchRouter(NewMatchHandler(matches), userA)

	matches.On("ListActiveMatches", mock.Anything, userA).
		Return([]models.MatchView{{ID: matchID, Partner: models.ProfileSummary{ID: userB}}}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/matches", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["matches"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, userB, list[0].(map[string]any)["partner"].(map[string]any)["id"])
	matches.AssertExpectations(t)
}

func TestUnmatchByParticipant(t *testing.T) {
	matches := new(mocks.MatchRepositoryMock)
	router := setupMatchRouter(NewMatchHandler(matches), userB)

	matches.On("GetMatch", mock.Anything, matchID).
		Return(models.Match{ID: matchID, User1ID: userA, User2ID: userB, Status: models.MatchActive}, nil).Once()
	matches.On("Unmatch", mock.Anything, matchID).
		Return(models.Match{ID: matchID, User1ID: userA, User2ID: userB, Status: models.MatchUnmatched}, nil).Once()

	rec := doRequest(router, http.MethodDelete, "/matches/"+matchID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	matches.AssertExpectations(t)
}

func TestUnmatchHiddenFromOutsiders(t *testing.T) {
	matches := new(mocks.MatchRepositoryMock)
	router := setupMatchRouter(NewMatchHandler(matches), "44444444-4444-4444-4444-444444444444")

	matches.On("GetMatch", mock.Anything, matchID).
		Return(models.Match{ID: matchID, User1ID: userA, User2ID: userB}, nil).Once()
	matches.On("GetMatch", mock.Anything, missingID).Return(nil, repositories.ErrMatchNotFound).Once()

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, "/matches/"+matchID, "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, "/matches/"+missingID, "").Code)
	matches.AssertNotCalled(t, "Unmatch", mock.Anything, mock.Anything)
	matches.AssertExpectations(t)
}

func TestUnmatchRejectsMalformedID(t *testing.T) {
	matches := new(mocks.MatchRepositoryMock)
	router := setupMatchRouter(NewMatchHandler(matches), userA)

	rec := doRequest(router, http.MethodDelete, "/matches/match-1", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	matches.AssertNotCalled(t, "GetMatch", mock.Anything, mock.Anything)
}
