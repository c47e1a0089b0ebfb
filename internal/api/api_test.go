package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pointdrop/leaderboard/internal/db"
	"github.com/pointdrop/leaderboard/internal/errors"
	"github.com/pointdrop/leaderboard/internal/leaderboard"
)

// MockLeaderboardService is a mock implementation of leaderboard.Service
type MockLeaderboardService struct {
	mock.Mock
}

func (m *MockLeaderboardService) CreateUser(name string) (db.User, error) {
	args := m.Called(name)
	return args.Get(0).(db.User), args.Error(1)
}

func (m *MockLeaderboardService) ListUsersRanked() ([]db.User, error) {
	args := m.Called()
	return args.Get(0).([]db.User), args.Error(1)
}

func (m *MockLeaderboardService) Claim(userID int) (leaderboard.ClaimResult, error) {
	args := m.Called(userID)
	return args.Get(0).(leaderboard.ClaimResult), args.Error(1)
}

func (m *MockLeaderboardService) GetPointsHistory(userID int) ([]db.PointsHistory, error) {
	args := m.Called(userID)
	return args.Get(0).([]db.PointsHistory), args.Error(1)
}

// Setup function to initialize a test Gin router with our handler
func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/api/users", h.ListUsers)
	r.POST("/api/users", h.CreateUser)
	r.POST("/api/users/:userId/claim", h.ClaimPoints)
	r.GET("/api/users/:userId/history", h.GetPointsHistory)
	return r
}

func TestListUsers(t *testing.T) {
	mockSvc := new(MockLeaderboardService)
	router := setupTestRouter(NewHandler(mockSvc))

	t.Run("Ranked list", func(t *testing.T) {
		mockSvc.On("ListUsersRanked").Return([]db.User{
			{ID: 2, Name: "Bob", TotalPoints: 30, Rank: 1},
			{ID: 1, Name: "Alice", TotalPoints: 10, Rank: 2},
		}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/users", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response []db.User
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		require.Len(t, response, 2)
		assert.Equal(t, "Bob", response[0].Name)
		assert.Equal(t, 1, response[0].Rank)
	})

	t.Run("Empty list", func(t *testing.T) {
		mockSvc.On("ListUsersRanked").Return([]db.User{}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/users", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateUser(t *testing.T) {
	mockSvc := new(MockLeaderboardService)
	router := setupTestRouter(NewHandler(mockSvc))

	t.Run("Successful creation", func(t *testing.T) {
		mockSvc.On("CreateUser", "Alice").Return(db.User{ID: 1, Name: "Alice"}, nil).Once()

		body := bytes.NewBufferString(`{"name": "Alice"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response db.User
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, "Alice", response.Name)
		assert.Equal(t, int64(0), response.TotalPoints)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		mockSvc.On("CreateUser", "Alice").
			Return(db.User{}, &errors.ConflictError{Resource: "user", Value: "Alice"}).Once()

		body := bytes.NewBufferString(`{"name": "Alice"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Empty name", func(t *testing.T) {
		mockSvc.On("CreateUser", "").
			Return(db.User{}, &errors.ValidationError{Field: "name", Reason: "must not be empty"}).Once()

		body := bytes.NewBufferString(`{"name": ""}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name": `)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users", body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestClaimPoints(t *testing.T) {
	mockSvc := new(MockLeaderboardService)
	router := setupTestRouter(NewHandler(mockSvc))

	t.Run("Successful claim", func(t *testing.T) {
		mockSvc.On("Claim", 1).
			Return(leaderboard.ClaimResult{Points: 7, TotalPoints: 10, Rank: 2}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users/1/claim", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response leaderboard.ClaimResult
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, 7, response.Points)
		assert.Equal(t, int64(10), response.TotalPoints)
		assert.Equal(t, 2, response.Rank)
	})

	t.Run("Unknown user", func(t *testing.T) {
		mockSvc.On("Claim", 99).
			Return(leaderboard.ClaimResult{}, &errors.NotFoundError{Resource: "user", Identifier: "99"}).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users/99/claim", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/users/abc/claim", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestGetPointsHistory(t *testing.T) {
	mockSvc := new(MockLeaderboardService)
	router := setupTestRouter(NewHandler(mockSvc))

	t.Run("History newest first", func(t *testing.T) {
		now := time.Now()
		mockSvc.On("GetPointsHistory", 1).Return([]db.PointsHistory{
			{ID: 2, UserID: 1, Points: 4, Timestamp: now},
			{ID: 1, UserID: 1, Points: 9, Timestamp: now.Add(-time.Hour)},
		}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/users/1/history", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response []db.PointsHistory
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		require.Len(t, response, 2)
		assert.Equal(t, 4, response[0].Points)
		assert.Equal(t, 9, response[1].Points)
	})

	t.Run("Unknown user", func(t *testing.T) {
		mockSvc.On("GetPointsHistory", 99).
			Return([]db.PointsHistory(nil), &errors.NotFoundError{Resource: "user", Identifier: "99"}).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/users/99/history", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestErrorMiddlewareUnexpectedError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		c.Error(assert.AnError)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
