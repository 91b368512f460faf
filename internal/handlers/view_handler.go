package handlers

import (
	"net/http"
	"sort"

	"task-secretary-api/internal/category"
	"task-secretary-api/internal/dates"
	"task-secretary-api/internal/models"
	"task-secretary-api/internal/views"

	"github.com/gin-gonic/gin"
)

// CategoryGroup is one section of the category view
type CategoryGroup struct {
	Category string        `json:"category"`
	Icon     string        `json:"icon"`
	Color    string        `json:"color"`
	Known    bool          `json:"known"`
	Tasks    []models.Task `json:"tasks"`
}

// DailyView handles GET /api/views/daily?date=YYYY-MM-DD (default today)
func (h *Handler) DailyView(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	now := h.now()
	date := dates.Format(now)
	if q := c.Query("date"); q != "" {
		if date = dates.Normalize(q); date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}
	c.JSON(http.StatusOK, views.DailyView(repo.List(), date, now, h.Rules))
}

// ListView handles GET /api/views/list
func (h *Handler) ListView(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	now := h.now()
	rows := []views.DailyTask{}
	for _, t := range views.ActiveTasks(repo.List()) {
		rows = append(rows, views.DailyTask{
			Task:           t,
			Display:        views.DeriveDisplayStatus(t, now, h.Rules),
			DeadlineLabel:  views.FormatDate(t.Deadline),
			SubtasksForDay: []views.IndexedSubtask{},
		})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": rows, "count": len(rows)})
}

// CategoryView handles GET /api/views/categories
// Groups follow the category list order; names nobody defined come last,
// marked known=false.
func (h *Handler) CategoryView(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	svc := h.Categories.ForUser(userID)
	registry := svc.Registry()
	groups := views.GroupByCategory(h.Tasks.ForUser(userID).List())

	out := []CategoryGroup{}
	add := func(name string) {
		tasks, ok := groups[name]
		if !ok {
			return
		}
		style := registry.Resolve(name)
		out = append(out, CategoryGroup{
			Category: name,
			Icon:     style.Icon,
			Color:    style.Color,
			Known:    registry.Known(name),
			Tasks:    tasks,
		})
		delete(groups, name)
	}
	for _, cat := range svc.List() {
		add(cat.Name)
	}
	var unknown []string
	for name := range groups {
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		add(name)
	}

	c.JSON(http.StatusOK, gin.H{"groups": out, "defaultStyle": category.DefaultStyle})
}

// CalendarView handles GET /api/views/calendar?month=YYYY-MM (default this month)
func (h *Handler) CalendarView(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	year, month, ok := views.ParseMonth(c.Query("month"), h.now())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": int(month),
		"days":  views.CalendarMonth(repo.List(), year, month),
	})
}
