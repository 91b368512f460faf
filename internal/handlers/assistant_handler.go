package handlers

import (
	"errors"
	"log"
	"net/http"

	"task-secretary-api/internal/ai"

	"github.com/gin-gonic/gin"
)

// AssistantRequest asks for advice on a task, given inline or by id
type AssistantRequest struct {
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Assist handles POST /api/assistant
func (h *Handler) Assist(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TaskID != "" {
		task, found := repo.Get(req.TaskID)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		req.Title, req.Description = task.Title, task.Description
	}
	if req.Title == "" && req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title or description is required"})
		return
	}
	if h.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
		return
	}

	answer, err := h.Assistant.Assist(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
			return
		}
		log.Printf("assistant: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant is unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
