package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/aptora/aptora-api/internal/middleware"
)

func userIDFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return ""
	}
	userID, ok := value.(string)
	if !ok {
		return ""
	}
	return userID
}
