package handlers

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"
	"task-secretary-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

/*
*
GetTasks handles GET /api/tasks
Returns the caller's tasks. Optional query params: status, category,
page (default 1), limit (default 20), sort (asc|desc on createdAt, default desc).
*/
func (h *Handler) GetTasks(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	sortParam := strings.ToLower(c.DefaultQuery("sort", "desc"))

	var status models.TaskStatus
	if s := c.Query("status"); s != "" {
		if status, err = models.ParseStatus(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}
	category := c.Query("category")

	tasks := []models.Task{}
	for _, t := range repo.List() {
		if status != "" && t.Status != status {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if sortParam == "asc" {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	total := len(tasks)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	tasks = tasks[start:end]

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks), // number of items in this page
		"total": total,      // total tasks (all pages) for current filter
		"page":  page,
		"limit": limit,
		"sort":  sortParam,
	})
}

// GetTaskByID handles GET /api/tasks/:id
func (h *Handler) GetTaskByID(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	task, found := repo.Get(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
Creates a task for the authenticated user. With useAI the task is
decomposed into dated subtasks before it is stored.
*/
func (h *Handler) CreateTask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}

	var req repository.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := repo.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrCreationInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "A task is already being created"})
			return
		}
		log.Printf("create task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

func validatePatch(p *repository.TaskPatch) error {
	if p.Status != nil {
		st, err := models.ParseStatus(string(*p.Status))
		if err != nil {
			return err
		}
		p.Status = &st
	}
	if p.Deadline != nil {
		if _, ok := dates.Parse(*p.Deadline); !ok {
			return errors.New("deadline must be a date")
		}
	}
	if p.StartDate != nil && *p.StartDate != "" {
		if _, ok := dates.Parse(*p.StartDate); !ok {
			return errors.New("startDate must be a date")
		}
	}
	return nil
}

// UpdateTask handles PATCH /api/tasks/:id
// Merges the provided fields into the task
func (h *Handler) UpdateTask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}

	var req repository.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePatch(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, found, err := repo.Edit(c.Param("id"), req)
	writeTaskResult(c, task, found, err)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	task, found, err := repo.SetStatus(c.Param("id"), status)
	writeTaskResult(c, task, found, err)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	if !repo.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// writeTaskResult maps the outcome of a repository mutation onto a response.
func writeTaskResult(c *gin.Context, task models.Task, found bool, err error) {
	switch {
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, repository.ErrSubtaskIndex),
		errors.Is(err, repository.ErrEmptySubtasks):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		log.Printf("update task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
	default:
		c.JSON(http.StatusOK, task)
	}
}
