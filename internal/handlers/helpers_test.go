package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"task-secretary-api/internal/ai"
	"task-secretary-api/internal/auth"
	"task-secretary-api/internal/category"
	"task-secretary-api/internal/middleware"
	"task-secretary-api/internal/models"
	"task-secretary-api/internal/realtime"
	"task-secretary-api/internal/repository"
	"task-secretary-api/internal/storage"
	"task-secretary-api/internal/testutil"
	"task-secretary-api/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type stepsPlanner struct{ steps []string }

func (p stepsPlanner) Decompose(context.Context, ai.Brief) ai.Decomposition {
	return ai.Decomposition{Steps: p.steps, Type: models.TypeOneOff, Complexity: models.ComplexitySimple}
}

func (stepsPlanner) Schedule(context.Context, ai.Brief, ai.Decomposition) []models.Subtask {
	return nil
}

type fakeAssistant struct {
	answer string
	err    error
}

func (a fakeAssistant) Assist(context.Context, string, string) (string, error) {
	return a.answer, a.err
}

type testEnv struct {
	router *gin.Engine
	h      *Handler
	tokens *auth.TokenIssuer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	kv := storage.NewGormKV(db)

	hub := realtime.NewHub()
	tokens := auth.NewTokenIssuer("secret", "issuer", "audience", time.Hour)
	clock := func() time.Time { return today }
	h := &Handler{
		Tasks: repository.NewRegistry(kv, repository.Deps{
			Planner: stepsPlanner{steps: []string{"buy paint", "sand", "paint"}},
			Events:  hub,
			Now:     clock,
		}),
		Categories: category.NewManager(kv),
		Auth:       auth.NewService(auth.NewUserStore(filepath.Join(t.TempDir(), "users.json")), tokens),
		Assistant:  fakeAssistant{answer: "Start with the paint."},
		Hub:        hub,
		Rules:      views.Rules{LegacyEmptyIsCompleted: true},
		Now:        clock,
	}

	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	p := r.Group("/api")
	p.Use(middleware.JWTAuthMiddleware(tokens))
	p.GET("/tasks", h.GetTasks)
	p.GET("/tasks/:id", h.GetTaskByID)
	p.POST("/tasks", h.CreateTask)
	p.PATCH("/tasks/:id", h.UpdateTask)
	p.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	p.DELETE("/tasks/:id", h.DeleteTask)
	p.POST("/tasks/:id/subtasks", h.AddSubtask)
	p.PUT("/tasks/:id/subtasks/order", h.ReorderSubtasks)
	p.PATCH("/tasks/:id/subtasks/:index", h.UpdateSubtask)
	p.POST("/tasks/:id/subtasks/:index/toggle", h.ToggleSubtask)
	p.DELETE("/tasks/:id/subtasks/:index", h.DeleteSubtask)
	p.GET("/views/daily", h.DailyView)
	p.GET("/views/list", h.ListView)
	p.GET("/views/categories", h.CategoryView)
	p.GET("/views/calendar", h.CalendarView)
	p.GET("/categories", h.GetCategories)
	p.POST("/categories", h.CreateCategory)
	p.DELETE("/categories/:id", h.DeleteCategory)
	p.POST("/assistant", h.Assist)
	p.GET("/me", h.GetCurrentUser)

	return &testEnv{router: r, h: h, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(email)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// createTask posts a task and returns it.
func (e *testEnv) createTask(t *testing.T, token string, payload map[string]any) models.Task {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/tasks", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Task](t, w)
}

var errBoom = errors.New("boom")
