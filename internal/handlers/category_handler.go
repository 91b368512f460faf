package handlers

import (
	"errors"
	"net/http"

	"task-secretary-api/internal/category"
	"task-secretary-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// CreateCategoryRequest represents the payload for a custom category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// GetCategories handles GET /api/categories
func (h *Handler) GetCategories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cats := h.Categories.ForUser(userID).List()
	c.JSON(http.StatusOK, gin.H{"categories": cats, "count": len(cats)})
}

// CreateCategory handles POST /api/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.Categories.ForUser(userID).Add(req.Name, req.Icon, req.Color)
	switch {
	case errors.Is(err, category.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.publish(userID, realtime.Event{Type: realtime.CategoriesChanged})
	c.JSON(http.StatusCreated, cat)
}

// DeleteCategory handles DELETE /api/categories/:id
// Tasks filed under the category are left as they are
func (h *Handler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Categories.ForUser(userID).Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	h.publish(userID, realtime.Event{Type: realtime.CategoriesChanged})
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *Handler) publish(userID string, evt realtime.Event) {
	if h.Hub != nil {
		h.Hub.Publish(userID, evt)
	}
}
