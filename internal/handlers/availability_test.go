package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hangout-service/internal/mocks"
	"hangout-service/internal/models"
	"hangout-service/internal/repositories"
	"hangout-service/internal/scheduling"
)

func setupAvailabilityRouter(handler *AvailabilityHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/availability", handler.ListMine)
	r.GET("/availability/:user_id", handler.ListForUser)
	r.POST("/availability", handler.Add)
	r.DELETE("/availability/:window_id", handler.Delete)
	r.GET("/overlaps/:user_id", handler.Overlaps)
	return r
}

func newAvailabilityHandler(repo *mocks.AvailabilityRepositoryMock) *AvailabilityHandler {
	engine := scheduling.NewOverlapEngine(repo, nil)
	return NewAvailabilityHandler(repo, engine, nil, nil)
}

func TestListMineSuccess(t *testing.T) {
	repo := new(mocks.AvailabilityRepositoryMock)
	router := setupAvailabilityRouter(newAvailabilityHandler(repo))

	repo.On("ListWindows", mock.Anything, 1).Return([]models.AvailabilityWindow{
		{ID: 5, UserID: 1, DayOfWeek: 1, StartTime: "09:00:00", EndTime: "11:00:00"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestAddWindowSuccess(t *testing.T) {
	repo := new(mocks.AvailabilityRepositoryMock)
	router := setupAvailabilityRouter(newAvailabilityHandler(repo))

	repo.On("AddWindow", mock.Anything, mock.MatchedBy(func(w models.AvailabilityWindow) bool {
		return w.UserID == 1 && w.DayOfWeek == 1 && w.StartTime == "09:00:00"
	})).Return(models.AvailabilityWindow{ID: 7, UserID: 1, DayOfWeek: 1, StartTime: "09:00:00", EndTime: "11:00:00"}, nil).Once()

	body := bytes.NewBufferString(`{"day_of_week":1,"start_time":"09:00:00","end_time":"11:00:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/availability", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AvailabilityWindow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 7, created.ID)
	repo.AssertExpectations(t)
}

func TestAddWindowRejectsInvalid(t *testing.T) {
	repo := new(mocks.AvailabilityRepositoryMock)
	router := setupAvailabilityRouter(newAvailabilityHandler(repo))

	body := bytes.NewBufferString(`{"day_of_week":1,"start_time":"11:00:00","end_time":"09:00:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/availability", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "AddWindow", mock.Anything, mock.Anything)
}

func TestDeleteWindowNotOwned(t *testing.T) {
	repo := new(mocks.AvailabilityRepositoryMock)
	router := setupAvailabilityRouter(newAvailabilityHandler(repo))

	repo.On("DeleteWindow", mock.Anything, 9, 1).Return(repositories.ErrWindowNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/availability/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestOverlapsEndpoint(t *testing.T) {
	repo := new(mocks.AvailabilityRepositoryMock)
	router := setupAvailabilityRouter(newAvailabilityHandler(repo))

	repo.On("ListWindows", mock.Anything, 1).Return([]models.AvailabilityWindow{
		{UserID: 1, DayOfWeek: 1, StartTime: "09:00:00", EndTime: "11:00:00"},
	}, nil).Once()
	repo.On("ListWindows", mock.Anything, 2).Return([]models.AvailabilityWindow{
		{UserID: 2, DayOfWeek: 1, StartTime: "10:00:00", EndTime: "12:00:00"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/overlaps/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Overlaps []models.AvailabilityWindow `json:"overlaps"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Overlaps, 1)
	assert.Equal(t, "10:00:00", resp.Overlaps[0].StartTime)
	assert.Equal(t, "11:00:00", resp.Overlaps[0].EndTime)
	repo.AssertExpectations(t)
}

func TestOverlapsSelfRejected(t *testing.T) {
	repo := new(mocks.AvailabilityRepositoryMock)
	router := setupAvailabilityRouter(newAvailabilityHandler(repo))

	req := httptest.NewRequest(http.MethodGet, "/overlaps/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
