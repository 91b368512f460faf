package handlers

import (
	"context"
	"net/http"
	"time"

	"task-secretary-api/internal/auth"
	"task-secretary-api/internal/category"
	"task-secretary-api/internal/middleware"
	"task-secretary-api/internal/realtime"
	"task-secretary-api/internal/repository"
	"task-secretary-api/internal/views"

	"github.com/gin-gonic/gin"
)

// Assistant answers free-form questions about a task.
type Assistant interface {
	Assist(ctx context.Context, title, description string) (string, error)
}

// Handler carries the services behind the HTTP API.
type Handler struct {
	Tasks      *repository.Registry
	Categories *category.Manager
	Auth       *auth.Service
	Assistant  Assistant
	Hub        *realtime.Hub
	Rules      views.Rules
	Now        func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// currentUser aborts with 401 when the auth middleware did not run.
func currentUser(c *gin.Context) (string, bool) {
	userID := middleware.CurrentUser(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return "", false
	}
	return userID, true
}

func (h *Handler) repo(c *gin.Context) (*repository.Repository, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	return h.Tasks.ForUser(userID), true
}
