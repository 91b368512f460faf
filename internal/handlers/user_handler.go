package handlers

import (
	"net/http"

	"task-secretary-api/internal/models"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser returns the authenticated account (protected)
// GET /api/me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":        models.PublicUser{Email: userID},
		"connections": h.connections(userID),
	})
}

func (h *Handler) connections(userID string) int {
	if h.Hub == nil {
		return 0
	}
	return h.Hub.Connections(userID)
}
