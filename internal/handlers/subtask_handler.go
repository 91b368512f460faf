package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// AddSubtaskRequest represents the payload for appending a subtask
type AddSubtaskRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date"`
}

// ReorderSubtasksRequest moves the subtask at From to position To
type ReorderSubtasksRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func subtaskIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subtask index must be a number"})
		return 0, false
	}
	return index, true
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, ok := dates.Parse(s)
	return ok
}

// AddSubtask handles POST /api/tasks/:id/subtasks
func (h *Handler) AddSubtask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	var req AddSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || !validDate(req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subtask needs a name and a valid date"})
		return
	}

	task, found, err := repo.AddSubtask(c.Param("id"), name, dates.Normalize(req.Date))
	writeTaskResult(c, task, found, err)
}

// UpdateSubtask handles PATCH /api/tasks/:id/subtasks/:index
func (h *Handler) UpdateSubtask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	index, ok := subtaskIndex(c)
	if !ok {
		return
	}
	var req repository.SubtaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Date != nil {
		if !validDate(*req.Date) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be a date"})
			return
		}
		normalized := dates.Normalize(*req.Date)
		req.Date = &normalized
	}

	task, found, err := repo.UpdateSubtask(c.Param("id"), index, req)
	writeTaskResult(c, task, found, err)
}

// ToggleSubtask handles POST /api/tasks/:id/subtasks/:index/toggle
func (h *Handler) ToggleSubtask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	index, ok := subtaskIndex(c)
	if !ok {
		return
	}
	task, found, err := repo.ToggleSubtask(c.Param("id"), index)
	writeTaskResult(c, task, found, err)
}

// DeleteSubtask handles DELETE /api/tasks/:id/subtasks/:index
// Deleting the last subtask deletes the task as well
func (h *Handler) DeleteSubtask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	index, ok := subtaskIndex(c)
	if !ok {
		return
	}
	task, removed, found, err := repo.DeleteSubtask(c.Param("id"), index)
	if found && err == nil && removed {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Task deleted with its last subtask",
			"taskId":      task.ID,
			"taskDeleted": true,
		})
		return
	}
	writeTaskResult(c, task, found, err)
}

// ReorderSubtasks handles PUT /api/tasks/:id/subtasks/order
func (h *Handler) ReorderSubtasks(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	var req ReorderSubtasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, found, err := repo.ReorderSubtask(c.Param("id"), *req.From, *req.To)
	writeTaskResult(c, task, found, err)
}
