package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pointdrop/leaderboard/internal/errors"
	"github.com/pointdrop/leaderboard/pkg/logger"
)

func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			switch e := err.(type) {
			case *errors.NotFoundError:
				c.JSON(404, gin.H{"error": e.Error()})
			case *errors.ConflictError:
				c.JSON(409, gin.H{"error": e.Error()})
			case *errors.ValidationError:
				c.JSON(400, gin.H{"error": e.Error()})
			case *errors.DatabaseError:
				logger.Error("Database error: %v", e)
				c.JSON(500, gin.H{"error": "Internal server error"})
			case *errors.APIError:
				logger.Error("API error: %v", e)
				c.JSON(e.StatusCode, gin.H{"error": e.Message})
			default:
				logger.Error("Unexpected error: %v", e)
				c.JSON(500, gin.H{"error": "Internal server error"})
			}
			c.Abort()
		}
	}
}
