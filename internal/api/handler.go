package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pointdrop/leaderboard/internal/errors"
	"github.com/pointdrop/leaderboard/internal/leaderboard"
)

// Handler holds the dependencies for the HTTP handlers
type Handler struct {
	svc leaderboard.Service
}

// NewHandler creates a new Handler
func NewHandler(svc leaderboard.Service) *Handler {
	return &Handler{svc: svc}
}

type createUserRequest struct {
	Name string `json:"name"`
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsersRanked()
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(&errors.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	user, err := h.svc.CreateUser(req.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ClaimPoints handles POST /api/users/:userId/claim
func (h *Handler) ClaimPoints(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.Error(&errors.ValidationError{Field: "userId", Reason: "must be an integer"})
		return
	}

	result, err := h.svc.Claim(userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPointsHistory handles GET /api/users/:userId/history
func (h *Handler) GetPointsHistory(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.Error(&errors.ValidationError{Field: "userId", Reason: "must be an integer"})
		return
	}

	history, err := h.svc.GetPointsHistory(userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
