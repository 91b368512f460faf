package handlers

import (
	"net/http"
	"testing"

	"task-secretary-api/internal/category"
	"task-secretary-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCategoryEndpoints(t *testing.T) {
	env := newEnv(t)
	token := env.token(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/api/categories", token, map[string]string{"name": "hobby", "icon": "guitar", "color": "#FF00FF"})
	require.Equal(t, http.StatusCreated, w.Code)
	hobby := decode[models.Category](t, w)
	require.NotEmpty(t, hobby.ID)

	w = env.do(t, http.MethodPost, "/api/categories", token, map[string]string{"name": "hobby"})
	require.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodPost, "/api/categories", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Categories []models.Category `json:"categories"`
	}](t, w)
	require.Len(t, resp.Categories, len(category.Presets)+1)

	// a task filed under the category keeps its name after the category goes
	payload := paintPayload(false)
	payload["category"] = "hobby"
	task := env.createTask(t, token, payload)

	w = env.do(t, http.MethodDelete, "/api/categories/"+hobby.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/categories/"+hobby.ID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/tasks/"+task.ID, token, nil)
	require.Equal(t, "hobby", decode[models.Task](t, w).Category)
}
