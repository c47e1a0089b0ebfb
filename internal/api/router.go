package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pointdrop/leaderboard/internal/websocket"
)

// SetupRouter initializes the Gin router and sets up the routes
func SetupRouter(h *Handler, wsManager *websocket.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(ErrorMiddleware())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/users", h.ListUsers)
		api.POST("/users", h.CreateUser)
		api.POST("/users/:userId/claim", h.ClaimPoints)
		api.GET("/users/:userId/history", h.GetPointsHistory)
	}

	// WebSocket route
	r.GET("/ws", func(c *gin.Context) {
		wsManager.HandleWebSocket(c.Writer, c.Request)
	})

	return r
}
